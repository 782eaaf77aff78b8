package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/sirupsen/logrus"
)

// PortsConfig contains the listen addresses
type PortsConfig struct {
	HTTP string `yaml:"http" default:"127.0.0.1:4000"`
}

// IsEnabled implements `config.Configurable`.
func (c *PortsConfig) IsEnabled() bool {
	return c.HTTP != ""
}

// LogConfig implements `config.Configurable`.
func (c *PortsConfig) LogConfig(logger *logrus.Entry) {
	logger.Infof("http = %s", c.HTTP)
}

// HostPort splits the HTTP address. An empty host means localhost.
func (c *PortsConfig) HostPort() (host string, port uint16, err error) {
	h, p, err := net.SplitHostPort(c.HTTP)
	if err != nil {
		return "", 0, fmt.Errorf("invalid http address '%s': %w", c.HTTP, err)
	}

	portNr, err := strconv.ParseUint(p, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("can't convert port '%s' to number: %w", p, err)
	}

	if h == "" {
		h = "localhost"
	}

	return h, uint16(portNr), nil
}

// MetricsConfig contains the config values for prometheus
type MetricsConfig struct {
	Enable bool   `yaml:"enable" default:"false"`
	Path   string `yaml:"path" default:"/metrics"`
}

// IsEnabled implements `config.Configurable`.
func (c *MetricsConfig) IsEnabled() bool {
	return c.Enable
}

// LogConfig implements `config.Configurable`.
func (c *MetricsConfig) LogConfig(logger *logrus.Entry) {
	logger.Infof("url path: %s", c.Path)
}
