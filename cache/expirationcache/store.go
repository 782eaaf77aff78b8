package expirationcache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/namedcache/namedcache/cache"
	"github.com/namedcache/namedcache/evt"
	"github.com/namedcache/namedcache/log"
	"github.com/namedcache/namedcache/scheduler"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	// TypeName is the type tag of key/value stores in descriptions
	TypeName = "KeyValueStore"

	// DefaultContainerTTL is the lifetime of a whole store
	DefaultContainerTTL = 24 * time.Hour

	// DefaultSweepInterval is the period of the expired entry sweep
	DefaultSweepInterval = 10 * time.Minute
)

// ErrTypeMismatch is returned by FetchAs if the cached value has another type
var ErrTypeMismatch = errors.New("cached value has unexpected type")

// Supplier computes a value on a cache miss
type Supplier func(ctx context.Context) (any, error)

// Options configures a Store. Zero values fall back to the package defaults.
type Options struct {
	EntryTTL      time.Duration
	ContainerTTL  time.Duration
	SweepInterval time.Duration

	// Disabled creates the store in disabled state, without running sweep
	Disabled bool

	// Now is the time source, time.Now if nil
	Now func() time.Time
}

func (o *Options) applyDefaults() {
	if o.EntryTTL <= 0 {
		o.EntryTTL = DefaultEntryTTL
	}

	if o.ContainerTTL <= 0 {
		o.ContainerTTL = DefaultContainerTTL
	}

	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}

	if o.Now == nil {
		o.Now = time.Now
	}
}

// Store is a named key/value container with per entry expiration.
//
// Expired entries are removed lazily by Get and periodically by a sweep task
// which runs while the store is enabled. A disabled store hides its entries
// from reads but keeps them; writes always succeed.
type Store struct {
	name      string
	id        string
	createdAt time.Time
	expiresAt time.Time
	entryTTL  time.Duration
	now       func() time.Time

	lock     sync.RWMutex
	entries  map[string]*Entry
	disabled bool

	sweep  *scheduler.Task
	flight singleflight.Group
	logger *logrus.Entry
}

var _ cache.Container = (*Store)(nil)

// NewStore creates a store and starts its sweep unless it is created disabled
func NewStore(name string, opts Options) *Store {
	opts.applyDefaults()

	createdAt := opts.Now()

	s := &Store{
		name:      name,
		id:        uuid.NewString(),
		createdAt: createdAt,
		expiresAt: createdAt.Add(opts.ContainerTTL),
		entryTTL:  opts.EntryTTL,
		now:       opts.Now,
		entries:   make(map[string]*Entry),
		disabled:  opts.Disabled,
		logger:    log.PrefixedLog("expiration_cache").WithField("store", name),
	}

	s.sweep = scheduler.NewTask("sweep-"+name, opts.SweepInterval, s.cleanUp)

	if !s.disabled {
		s.sweep.Start()
	}

	return s
}

// Name implements `cache.Container`.
func (s *Store) Name() string {
	return s.name
}

// ID implements `cache.Container`.
func (s *Store) ID() string {
	return s.id
}

// Type implements `cache.Container`.
func (s *Store) Type() string {
	return TypeName
}

// CreatedAt implements `cache.Container`.
func (s *Store) CreatedAt() time.Time {
	return s.createdAt
}

// ExpiresAt implements `cache.Container`.
func (s *Store) ExpiresAt() time.Time {
	return s.expiresAt
}

// IsExpired implements `cache.Container`.
func (s *Store) IsExpired() bool {
	return s.now().After(s.expiresAt)
}

// Close implements `cache.Container`.
func (s *Store) Close() {
	s.sweep.Stop()
}

// IsSweepScheduled returns true while the periodic sweep is scheduled
func (s *Store) IsSweepScheduled() bool {
	return s.sweep.IsScheduled()
}

// Get returns the live value for key. An expired entry is removed.
// Returns false on a miss, on expiration or if the store is disabled.
func (s *Store) Get(key string) (any, bool) {
	s.lock.RLock()
	disabled := s.disabled
	e, found := s.entries[key]
	s.lock.RUnlock()

	if disabled || !found {
		s.publishMiss()

		return nil, false
	}

	if e.expiredAt(s.now()) {
		s.lock.Lock()
		// the entry may have been replaced in between
		if s.entries[key] == e {
			delete(s.entries, key)
		}
		s.lock.Unlock()

		s.publishMiss()

		return nil, false
	}

	evt.Bus().Publish(evt.CacheHit, s.name)

	return e.value, true
}

// GetOrDefault returns the live value for key or def
func (s *Store) GetOrDefault(key string, def any) any {
	if val, ok := s.Get(key); ok {
		return val
	}

	return def
}

func (s *Store) publishMiss() {
	evt.Bus().Publish(evt.CacheMiss, s.name)
}

// Add stores value under key, replacing any previous entry. If ttl <= 0 the
// configured entry TTL is used. Add works while the store is disabled.
func (s *Store) Add(key string, value any, ttl time.Duration) *Entry {
	e := newEntry(value, ttl, s.entryTTL, s.now())

	s.lock.Lock()
	s.entries[key] = e
	s.lock.Unlock()

	return e
}

// Remove deletes the entry and returns true if there was one
func (s *Store) Remove(key string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, found := s.entries[key]; !found {
		return false
	}

	delete(s.entries, key)

	return true
}

// Has returns true if key is present, not expired and the store is enabled
func (s *Store) Has(key string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.disabled {
		return false
	}

	e, found := s.entries[key]

	return found && !e.expiredAt(s.now())
}

// Keys returns the sorted live keys; empty while the store is disabled
func (s *Store) Keys() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	keys := make([]string, 0, len(s.entries))

	if s.disabled {
		return keys
	}

	now := s.now()

	for k, e := range s.entries {
		if !e.expiredAt(now) {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	return keys
}

// TotalCount returns the number of not expired entries, regardless of the enabled state
func (s *Store) TotalCount() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	now := s.now()
	count := 0

	for _, e := range s.entries {
		if !e.expiredAt(now) {
			count++
		}
	}

	return count
}

// Fetch returns the cached value for key, or calls supplier and caches its
// result under key with ttl. Concurrent misses on the same key share one
// supplier call. A supplier error is returned unchanged and nothing is cached.
func (s *Store) Fetch(ctx context.Context, key string, supplier Supplier, ttl time.Duration) (any, error) {
	if val, ok := s.Get(key); ok {
		return val, nil
	}

	val, err, shared := s.flight.Do(key, func() (any, error) {
		val, err := supplier(ctx)
		if err != nil {
			return nil, err
		}

		s.Add(key, val, ttl)

		return val, nil
	})
	if err != nil {
		log.FromCtx(ctx).WithFields(logrus.Fields{
			"prefix": "expiration_cache",
			"store":  s.name,
			"key":    log.EscapeInput(key),
		}).Debug("supplier failed: ", err)

		return nil, err
	}

	if shared {
		s.logger.Tracef("shared supplier result for key '%s'", log.EscapeInput(key))
	}

	return val, nil
}

// FetchAs is the typed variant of Store.Fetch
func FetchAs[T any](
	ctx context.Context, s *Store, key string, fn func(ctx context.Context) (T, error), ttl time.Duration,
) (T, error) {
	var zero T

	val, err := s.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}, ttl)
	if err != nil {
		return zero, err
	}

	res, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key '%s' holds %T, expected %T", ErrTypeMismatch, key, val, zero)
	}

	return res, nil
}

// Enable makes entries visible again and (re)starts the sweep
func (s *Store) Enable() {
	s.setEnabled(true)
	s.sweep.Start()
}

// Disable hides all entries from reads and stops the sweep. Entries are kept.
func (s *Store) Disable() {
	s.setEnabled(false)
	s.sweep.Stop()
}

func (s *Store) setEnabled(enabled bool) {
	s.lock.Lock()
	changed := s.disabled == enabled
	s.disabled = !enabled
	s.lock.Unlock()

	if changed {
		s.logger.Debugf("enabled = %t", enabled)
		evt.Bus().Publish(evt.StoreEnabledEvent, s.name, enabled)
	}
}

// IsEnabled returns the gating state
func (s *Store) IsEnabled() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return !s.disabled
}

// Flush removes all entries, regardless of the enabled state
func (s *Store) Flush() {
	s.lock.Lock()
	s.entries = make(map[string]*Entry)
	s.lock.Unlock()

	s.logger.Debug("flushed")
}

// Describe implements `cache.Container`.
func (s *Store) Describe() cache.Description {
	now := s.now()
	d := cache.NewDescription(s, now)

	s.lock.RLock()
	defer s.lock.RUnlock()

	d.Enabled = !s.disabled
	d.Entries = make(map[string]cache.EntryDescription, len(s.entries))

	for k, e := range s.entries {
		if e.expiredAt(now) {
			continue
		}

		size := cache.SizeOf(e.value)

		d.Entries[k] = cache.EntryDescription{
			Size:    size,
			Flush:   cache.EntryFlushRef(s.name, k),
			Expires: cache.FormatTime(e.expiresAt),
		}

		d.Size += size
	}

	d.Length = len(d.Entries)

	return d
}

// cleanUp removes all expired entries
func (s *Store) cleanUp() {
	now := s.now()
	removed := 0

	s.lock.Lock()

	for k, e := range s.entries {
		if e.expiredAt(now) {
			delete(s.entries, k)

			removed++
		}
	}

	s.lock.Unlock()

	s.logger.Debugf("cache swept on %s, %d expired entries removed", s.name, removed)

	if removed > 0 {
		evt.Bus().Publish(evt.EntriesSwept, s.name, removed)
	}
}
