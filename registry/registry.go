// Package registry owns the named cache containers of a process.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/namedcache/namedcache/cache"
	"github.com/namedcache/namedcache/cache/expirationcache"
	"github.com/namedcache/namedcache/cache/stringcache"
	"github.com/namedcache/namedcache/config"
	"github.com/namedcache/namedcache/evt"
	"github.com/namedcache/namedcache/instanceid"
	"github.com/namedcache/namedcache/log"
	"github.com/namedcache/namedcache/scheduler"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultStoreName is used by Store for an empty name
	DefaultStoreName = "defaultStore"

	// DefaultPrefixStoreName is used by PrefixStore for an empty name
	DefaultPrefixStoreName = "defaultPrefixStore"

	// DefaultRefreshInterval is the period of the registry refresh
	DefaultRefreshInterval = 24 * time.Hour

	refreshTaskName = "registry-refresh"
)

// Options configures a Registry and every container it creates
type Options struct {
	EntryTTL        time.Duration
	ContainerTTL    time.Duration
	SweepInterval   time.Duration
	RefreshInterval time.Duration

	// Disabled creates the registry in disabled state
	Disabled bool

	// Now is the time source, time.Now if nil
	Now func() time.Time
}

// OptionsFromConfig maps the cache configuration section
func OptionsFromConfig(cfg *config.CacheConfig) Options {
	return Options{
		EntryTTL:        cfg.EntryTTL.ToDuration(),
		ContainerTTL:    cfg.ContainerTTL.ToDuration(),
		SweepInterval:   cfg.SweepInterval.ToDuration(),
		RefreshInterval: cfg.RefreshInterval.ToDuration(),
		Disabled:        !cfg.IsEnabled(),
	}
}

// Description is the diagnostic record of the registry
type Description struct {
	InstanceID   string              `json:"instanceId"`
	Timestamp    string              `json:"timestamp"`
	Enabled      bool                `json:"enabled"`
	Stores       []cache.Description `json:"stores"`
	PrefixStores []cache.Description `json:"prefixStores"`
}

// Registry maps names to containers. A container whose lifetime has passed is
// replaced by a fresh, empty one on the next lookup of its name.
//
// Enable and Disable cascade to every held key/value store. Prefix stores have
// no gating and are not affected.
type Registry struct {
	opts Options
	now  func() time.Time

	lock         sync.RWMutex
	timestamp    time.Time
	stores       map[string]*expirationcache.Store
	prefixStores map[string]*stringcache.PrefixStore
	disabled     bool
	closed       bool

	refresh *scheduler.Task
	logger  *logrus.Entry
}

// New creates a registry and starts its refresh unless it is created disabled
func New(opts Options) *Registry {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Registry{
		opts:         opts,
		now:          opts.Now,
		timestamp:    opts.Now(),
		stores:       make(map[string]*expirationcache.Store),
		prefixStores: make(map[string]*stringcache.PrefixStore),
		disabled:     opts.Disabled,
		logger:       log.PrefixedLog("registry"),
	}

	r.refresh = scheduler.NewTask(refreshTaskName, opts.RefreshInterval, r.Refresh)

	if !r.disabled {
		r.refresh.Start()
	}

	return r
}

// Store returns the key/value store for name, creating it if it is missing or stale
func (r *Registry) Store(name string) *expirationcache.Store {
	if name == "" {
		name = DefaultStoreName
	}

	r.lock.RLock()
	s, found := r.stores[name]
	r.lock.RUnlock()

	if found && !s.IsExpired() {
		return s
	}

	r.lock.Lock()
	s, replaced, count := r.storeLocked(name)
	r.lock.Unlock()

	r.publishReplacement(expirationcache.TypeName, name, replaced, count)

	return s
}

// storeLocked swaps a missing or stale store for a new one. Callers hold the write lock.
func (r *Registry) storeLocked(name string) (s *expirationcache.Store, replaced cache.Container, count int) {
	old, found := r.stores[name]
	if found && !old.IsExpired() {
		return old, nil, -1
	}

	if found {
		old.Close()

		replaced = old
	}

	s = expirationcache.NewStore(name, expirationcache.Options{
		EntryTTL:      r.opts.EntryTTL,
		ContainerTTL:  r.opts.ContainerTTL,
		SweepInterval: r.opts.SweepInterval,
		Disabled:      r.disabled,
		Now:           r.now,
	})

	if r.closed {
		s.Close()
	}

	r.stores[name] = s

	return s, replaced, len(r.stores)
}

// PrefixStore returns the prefix store for name, creating it if it is missing or stale
func (r *Registry) PrefixStore(name string) *stringcache.PrefixStore {
	if name == "" {
		name = DefaultPrefixStoreName
	}

	r.lock.RLock()
	s, found := r.prefixStores[name]
	r.lock.RUnlock()

	if found && !s.IsExpired() {
		return s
	}

	r.lock.Lock()
	s, replaced, count := r.prefixStoreLocked(name)
	r.lock.Unlock()

	r.publishReplacement(stringcache.TypeName, name, replaced, count)

	return s
}

func (r *Registry) prefixStoreLocked(name string) (s *stringcache.PrefixStore, replaced cache.Container, count int) {
	old, found := r.prefixStores[name]
	if found && !old.IsExpired() {
		return old, nil, -1
	}

	if found {
		old.Close()

		replaced = old
	}

	s = stringcache.NewPrefixStore(name, stringcache.Options{
		ContainerTTL: r.opts.ContainerTTL,
		Now:          r.now,
	})
	r.prefixStores[name] = s

	return s, replaced, len(r.prefixStores)
}

// publishReplacement announces a container change. A negative count means nothing changed.
func (r *Registry) publishReplacement(typeName, name string, replaced cache.Container, count int) {
	if count < 0 {
		return
	}

	if replaced != nil {
		r.logger.Debugf("replacing expired %s '%s'", typeName, name)
		evt.Bus().Publish(evt.ContainerRemoved, typeName, name)
	}

	evt.Bus().Publish(evt.ContainerCreated, typeName, name)
	evt.Bus().Publish(evt.ContainerCountChanged, typeName, count)
}

// Get returns the held, not expired container for name. Key/value stores are
// looked up before prefix stores. Get never creates a container.
func (r *Registry) Get(name string) (cache.Container, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if s, found := r.stores[name]; found && !s.IsExpired() {
		return s, true
	}

	if s, found := r.prefixStores[name]; found && !s.IsExpired() {
		return s, true
	}

	return nil, false
}

// HasStore returns true if a key/value store is held for name. Always false while disabled.
func (r *Registry) HasStore(name string) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	_, found := r.stores[name]

	return !r.disabled && found
}

// HasPrefixStore returns true if a prefix store is held for name. Always false while disabled.
func (r *Registry) HasPrefixStore(name string) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	_, found := r.prefixStores[name]

	return !r.disabled && found
}

// RemoveStore discards the key/value store for name
func (r *Registry) RemoveStore(name string) bool {
	r.lock.Lock()
	s, found := r.stores[name]

	if found {
		delete(r.stores, name)
		s.Close()
	}

	count := len(r.stores)
	r.lock.Unlock()

	if found {
		r.publishRemoval(expirationcache.TypeName, name, count)
	}

	return found
}

// RemovePrefixStore discards the prefix store for name
func (r *Registry) RemovePrefixStore(name string) bool {
	r.lock.Lock()
	s, found := r.prefixStores[name]

	if found {
		delete(r.prefixStores, name)
		s.Close()
	}

	count := len(r.prefixStores)
	r.lock.Unlock()

	if found {
		r.publishRemoval(stringcache.TypeName, name, count)
	}

	return found
}

// Remove discards the container for name, trying key/value stores first
func (r *Registry) Remove(name string) bool {
	return r.RemoveStore(name) || r.RemovePrefixStore(name)
}

func (r *Registry) publishRemoval(typeName, name string, count int) {
	r.logger.Debugf("removed %s '%s'", typeName, name)

	evt.Bus().Publish(evt.ContainerRemoved, typeName, name)
	evt.Bus().Publish(evt.ContainerCountChanged, typeName, count)
}

// Flush discards every container. They are recreated on the next lookup.
func (r *Registry) Flush() {
	r.lock.Lock()
	stores := r.stores
	prefixStores := r.prefixStores

	r.stores = make(map[string]*expirationcache.Store)
	r.prefixStores = make(map[string]*stringcache.PrefixStore)
	r.lock.Unlock()

	for name, s := range stores {
		s.Close()
		evt.Bus().Publish(evt.ContainerRemoved, expirationcache.TypeName, name)
	}

	for name, s := range prefixStores {
		s.Close()
		evt.Bus().Publish(evt.ContainerRemoved, stringcache.TypeName, name)
	}

	evt.Bus().Publish(evt.ContainerCountChanged, expirationcache.TypeName, 0)
	evt.Bus().Publish(evt.ContainerCountChanged, stringcache.TypeName, 0)

	r.logger.Infof("flushed %d stores and %d prefix stores", len(stores), len(prefixStores))
}

// Enable enables every held key/value store and (re)starts the refresh.
// It has no effect on a closed registry.
func (r *Registry) Enable() {
	r.setEnabled(true)
}

// Disable disables every held key/value store and stops the refresh
func (r *Registry) Disable() {
	r.setEnabled(false)
}

func (r *Registry) setEnabled(enabled bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed && enabled {
		r.logger.Warn("registry is closed, can't enable caching")

		return
	}

	r.disabled = !enabled

	for _, s := range r.stores {
		if enabled {
			s.Enable()
		} else {
			s.Disable()
		}
	}

	if enabled {
		r.refresh.Start()
	} else {
		r.refresh.Stop()
	}

	r.logger.Infof("caching enabled = %t", enabled)
	evt.Bus().Publish(evt.CacheEnabledEvent, enabled)
}

// IsEnabled returns the global caching state
func (r *Registry) IsEnabled() bool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return !r.disabled
}

// Timestamp returns the registry timestamp
func (r *Registry) Timestamp() time.Time {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.timestamp
}

// SetTimestamp sets the registry timestamp. The zero time means now.
func (r *Registry) SetTimestamp(t time.Time) {
	if t.IsZero() {
		t = r.now()
	}

	r.lock.Lock()
	r.timestamp = t
	r.lock.Unlock()
}

// StoreNames returns the sorted names of all held key/value stores
func (r *Registry) StoreNames() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return sortedKeys(r.stores)
}

// PrefixStoreNames returns the sorted names of all held prefix stores
func (r *Registry) PrefixStoreNames() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return sortedKeys(r.prefixStores)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Describe returns the diagnostic record of the registry and all held containers
func (r *Registry) Describe() Description {
	r.lock.RLock()
	d := Description{
		InstanceID:   instanceid.String(),
		Timestamp:    cache.FormatTime(r.timestamp),
		Enabled:      !r.disabled,
		Stores:       make([]cache.Description, 0, len(r.stores)),
		PrefixStores: make([]cache.Description, 0, len(r.prefixStores)),
	}

	for _, name := range sortedKeys(r.stores) {
		d.Stores = append(d.Stores, r.stores[name].Describe())
	}

	for _, name := range sortedKeys(r.prefixStores) {
		d.PrefixStores = append(d.PrefixStores, r.prefixStores[name].Describe())
	}
	r.lock.RUnlock()

	return d
}

// Refresh re-checks every held container and replaces the expired ones
func (r *Registry) Refresh() {
	type replacement struct {
		typeName string
		name     string
		replaced cache.Container
		count    int
	}

	var changes []replacement

	r.lock.Lock()

	for _, name := range sortedKeys(r.stores) {
		_, replaced, count := r.storeLocked(name)
		changes = append(changes, replacement{expirationcache.TypeName, name, replaced, count})
	}

	for _, name := range sortedKeys(r.prefixStores) {
		_, replaced, count := r.prefixStoreLocked(name)
		changes = append(changes, replacement{stringcache.TypeName, name, replaced, count})
	}

	total := len(r.stores) + len(r.prefixStores)

	r.lock.Unlock()

	for _, c := range changes {
		r.publishReplacement(c.typeName, c.name, c.replaced, c.count)
	}

	r.logger.Debug("cache refreshed on all containers")
	evt.Bus().Publish(evt.RegistryRefreshed, total)
}

// Close stops the refresh and the background work of every held container.
// Containers created afterwards run no background work.
func (r *Registry) Close() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.closed = true
	r.refresh.Stop()

	for _, s := range r.stores {
		s.Close()
	}

	for _, s := range r.prefixStores {
		s.Close()
	}
}
