// Package api exposes the cache registry over HTTP.
//
// The describe endpoint answers the flush references contained in its own
// output: a GET on PathCache with "?flush=<name>[&entry=<key>]" removes the
// container or entry, "?flushAll=true" flushes the whole registry.
package api

const (
	PathCache        = "/api/cache"
	PathCacheStatus  = "/api/cache/status"
	PathCacheEnable  = "/api/cache/enable"
	PathCacheDisable = "/api/cache/disable"
	PathCacheRefresh = "/api/cache/refresh"
	PathStoreKeys    = "/api/cache/stores/{name}/keys"
	PathPrefixQuery  = "/api/cache/prefixes/{name}"

	// FlushAllParam is the query parameter to flush every container. It is kept
	// apart from the flush parameter, any string is a valid container name.
	FlushAllParam = "flushAll"
)

// CacheStatus is the global caching state
type CacheStatus struct {
	// True if caching is enabled
	Enabled bool `json:"enabled"`
	// Registry timestamp
	Timestamp string `json:"timestamp"`
	// Names of the held key/value stores
	Stores []string `json:"stores"`
	// Names of the held prefix stores
	PrefixStores []string `json:"prefixStores"`
}

// FlushResult is the answer to a flush request
type FlushResult struct {
	Container string `json:"container"`
	Entry     string `json:"entry,omitempty"`
}

// KeysResult lists the live keys of a key/value store
type KeysResult struct {
	Store string   `json:"store"`
	Keys  []string `json:"keys"`
}

// PrefixResult lists the strings of a prefix store sharing a prefix
type PrefixResult struct {
	Store  string   `json:"store"`
	Prefix string   `json:"prefix"`
	Values []string `json:"values"`
}
