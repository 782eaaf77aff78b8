package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/namedcache/namedcache/config"
	"github.com/namedcache/namedcache/log"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals
var (
	version   = "undefined"
	buildTime = "undefined"

	configPath string
	apiHost    string
	apiPort    uint16
	apiTimeout time.Duration
	cfg        *config.Config
)

const (
	defaultConfigPath = "./config.yml"
	configFileEnvVar  = "NAMEDCACHE_CONFIG_FILE"
	defaultAPITimeout = 10 * time.Second
)

// NewRootCommand creates new root command
func NewRootCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "namedcache",
		Short: "namedcache is an in-process named cache",
		Long: `A named-namespace cache with per entry and per container expiration,
exposed through an administrative HTTP API.`,
		PersistentPreRunE: initConfigPreRun,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd, args)
		},
	}

	c.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	c.PersistentFlags().StringVar(&apiHost, "apiHost", "", "host of namedcache (API). Default: from config")
	c.PersistentFlags().Uint16Var(&apiPort, "apiPort", 0, "port of namedcache (API). Default: from config")
	c.PersistentFlags().DurationVar(&apiTimeout, "apiTimeout", defaultAPITimeout, "timeout of API calls")

	c.AddCommand(
		newServeCommand(),
		newCacheCommand(),
		NewValidateCommand(),
		NewVersionCommand(),
	)

	return c
}

func apiURL(path string) string {
	return fmt.Sprintf("http://%s:%d%s", apiHost, apiPort, path)
}

func initConfigPreRun(cmd *cobra.Command, _ []string) error {
	// version and help need no configuration
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	return initConfig()
}

func initConfig() error {
	if configPath == defaultConfigPath {
		if val, ok := os.LookupEnv(configFileEnvVar); ok {
			configPath = val
		}
	}

	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}

	log.ConfigureLogger(loaded.Log)

	host, port, err := loaded.Ports.HostPort()
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}

	if apiHost == "" {
		apiHost = host
	}

	if apiPort == 0 {
		apiPort = port
	}

	cfg = loaded

	return nil
}

// Execute starts the command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
