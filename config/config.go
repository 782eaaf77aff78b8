package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/namedcache/namedcache/log"

	"github.com/creasty/defaults"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Configurable is implemented by every config section
type Configurable interface {
	// IsEnabled returns true when the section enables its feature
	IsEnabled() bool

	// LogConfig logs the section values
	LogConfig(*logrus.Entry)
}

// Config main configuration
type Config struct {
	Log     log.Config    `yaml:"log"`
	Cache   CacheConfig   `yaml:"cache"`
	Ports   PortsConfig   `yaml:"ports"`
	Metrics MetricsConfig `yaml:"prometheus"`
}

// NewDefaultConfig returns a config populated with default values only
func NewDefaultConfig() (*Config, error) {
	cfg := Config{}

	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("can't apply default values: %w", err)
	}

	return &cfg, nil
}

// LoadConfig reads the yaml file and applies default values for missing settings
func LoadConfig(path string) (*Config, error) {
	cfg, err := NewDefaultConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file '%s': %w", path, err)
	}

	if err := unmarshalConfig(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func unmarshalConfig(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("wrong file structure: %w", err)
	}

	return nil
}

// Validate returns every problem found in the config
func (cfg *Config) Validate() error {
	var result *multierror.Error

	if err := cfg.Cache.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if cfg.Ports.IsEnabled() {
		if _, _, err := cfg.Ports.HostPort(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if cfg.Metrics.IsEnabled() && cfg.Metrics.Path == "" {
		result = multierror.Append(result, errors.New("prometheus.path must not be empty"))
	}

	return result.ErrorOrNil()
}

// LogConfig logs every section of the config
func (cfg *Config) LogConfig(logger *logrus.Entry) {
	sections := []struct {
		name string
		c    Configurable
	}{
		{"cache", &cfg.Cache},
		{"ports", &cfg.Ports},
		{"prometheus", &cfg.Metrics},
	}

	for _, s := range sections {
		if !s.c.IsEnabled() {
			logger.Infof("%s: disabled", s.name)

			continue
		}

		logger.Infof("%s:", s.name)
		s.c.LogConfig(logger.WithField("section", s.name))
	}
}
