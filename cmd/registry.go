package cmd

import (
	"sync"

	"github.com/namedcache/namedcache/config"
	"github.com/namedcache/namedcache/registry"
)

//nolint:gochecknoglobals
var (
	processRegistry     *registry.Registry
	processRegistryOnce sync.Once
)

// defaultRegistry returns the registry of this process, created on first use
func defaultRegistry(cacheCfg *config.CacheConfig) *registry.Registry {
	processRegistryOnce.Do(func() {
		processRegistry = registry.New(registry.OptionsFromConfig(cacheCfg))
	})

	return processRegistry
}
