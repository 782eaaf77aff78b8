package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

const minSweepInterval = Duration(time.Second)

// CacheConfig configuration for the named cache registry
type CacheConfig struct {
	Enabled         bool     `yaml:"enabled" default:"true"`
	EntryTTL        Duration `yaml:"entryTTL" default:"720h"`
	ContainerTTL    Duration `yaml:"containerTTL" default:"24h"`
	SweepInterval   Duration `yaml:"sweepInterval" default:"10m"`
	RefreshInterval Duration `yaml:"refreshInterval" default:"24h"`
}

// IsEnabled implements `config.Configurable`.
func (c *CacheConfig) IsEnabled() bool {
	return c.Enabled
}

// LogConfig implements `config.Configurable`.
func (c *CacheConfig) LogConfig(logger *logrus.Entry) {
	logger.Infof("entryTTL = %s", c.EntryTTL)
	logger.Infof("containerTTL = %s", c.ContainerTTL)
	logger.Infof("sweepInterval = %s", c.SweepInterval)
	logger.Infof("refreshInterval = %s", c.RefreshInterval)
}

// Validate checks that every duration is usable
func (c *CacheConfig) Validate() error {
	var result *multierror.Error

	durations := []struct {
		name  string
		value Duration
	}{
		{"entryTTL", c.EntryTTL},
		{"containerTTL", c.ContainerTTL},
		{"sweepInterval", c.SweepInterval},
		{"refreshInterval", c.RefreshInterval},
	}

	for _, d := range durations {
		if !d.value.IsAboveZero() {
			result = multierror.Append(result, fmt.Errorf("cache.%s must be positive, got %s", d.name, d.value.ToDuration()))
		}
	}

	if c.SweepInterval.IsAboveZero() && c.SweepInterval < minSweepInterval {
		result = multierror.Append(result, fmt.Errorf("cache.sweepInterval must be at least %s", minSweepInterval))
	}

	return result.ErrorOrNil()
}
