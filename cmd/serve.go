package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/namedcache/namedcache/evt"
	"github.com/namedcache/namedcache/log"
	"github.com/namedcache/namedcache/server"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals
var signals = make(chan os.Signal, 1)

const shutdownTimeout = 5 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "start the cache HTTP API (default command)",
		RunE:  startServer,
	}
}

func startServer(_ *cobra.Command, _ []string) error {
	if cfg == nil {
		return errors.New("unable to load configuration: no configuration loaded")
	}

	printBanner()

	reg := defaultRegistry(&cfg.Cache)

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	srv, err := server.NewServer(cfg, reg)
	if err != nil {
		return fmt.Errorf("can't start server: %w", err)
	}

	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	errCh := make(chan error, 1)

	srv.Start(ctx, errCh)

	evt.Bus().Publish(evt.ApplicationStarted, version, buildTime)

	select {
	case <-signals:
		log.Log().Infof("Terminating...")

		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancel()

		err = srv.Stop(stopCtx)

		reg.Close()

		return err

	case err := <-errCh:
		log.Log().Error("server start failed: ", err)

		reg.Close()

		return err
	}
}

func printBanner() {
	log.Log().Info("_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/")
	log.Log().Info("_/                                                              _/")
	log.Log().Info("_/                       n a m e d c a c h e                    _/")
	log.Log().Info("_/                                                              _/")
	log.Log().Infof("_/  Version: %-18s Build time: %-18s  _/", version, buildTime)
	log.Log().Info("_/                                                              _/")
	log.Log().Info("_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/")
}
