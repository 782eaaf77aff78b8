package evt

import (
	"github.com/asaskevich/EventBus"
)

const (
	// CacheEnabledEvent fires if the registry wide caching status changes. Parameter: boolean (enabled = true)
	CacheEnabledEvent = "cache:enabled"

	// StoreEnabledEvent fires if a single key/value store is enabled or disabled. Parameter: store name, enabled
	StoreEnabledEvent = "cache:storeEnabled"

	// ContainerCreated fires if the registry installs a new container. Parameter: container type, name
	ContainerCreated = "cache:containerCreated"

	// ContainerRemoved fires if a container is discarded (removed, replaced or flushed). Parameter: container type, name
	ContainerRemoved = "cache:containerRemoved"

	// ContainerCountChanged fires if the number of held containers changes. Parameter: container type, new count
	ContainerCountChanged = "cache:containerCountChanged"

	// CacheHit fires if a key was found in a store. Parameter: store name
	CacheHit = "cache:hit"

	// CacheMiss fires if a key was not found in a store. Parameter: store name
	CacheMiss = "cache:miss"

	// EntriesSwept fires after a periodic sweep removed expired entries. Parameter: store name, removed count
	EntriesSwept = "cache:swept"

	// RegistryRefreshed fires after the periodic registry refresh touched every container. Parameter: container count
	RegistryRefreshed = "cache:refreshed"

	// ApplicationStarted fires on start of the application. Parameter: version number, build time
	ApplicationStarted = "application:started"
)

// nolint
var evtBus = EventBus.New()

// Bus returns the global bus instance
func Bus() EventBus.Bus {
	return evtBus
}
