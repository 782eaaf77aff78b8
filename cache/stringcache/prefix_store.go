package stringcache

import (
	"sync"
	"time"

	"github.com/namedcache/namedcache/cache"
	"github.com/namedcache/namedcache/log"
	"github.com/namedcache/namedcache/trie"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// TypeName is the type tag of prefix stores in descriptions
	TypeName = "PrefixStore"

	// DefaultContainerTTL is the lifetime of a whole store
	DefaultContainerTTL = 24 * time.Hour
)

// Options configures a PrefixStore
type Options struct {
	ContainerTTL time.Duration

	// Now is the time source, time.Now if nil
	Now func() time.Time
}

// PrefixStore is a named container of strings answering prefix queries.
// Strings have no own lifetime; the store expires as a whole.
type PrefixStore struct {
	name      string
	id        string
	createdAt time.Time
	expiresAt time.Time
	now       func() time.Time

	lock  sync.RWMutex
	index *trie.Trie

	logger *logrus.Entry
}

var _ cache.Container = (*PrefixStore)(nil)

// NewPrefixStore creates an empty prefix store expiring after the container TTL
func NewPrefixStore(name string, opts Options) *PrefixStore {
	if opts.ContainerTTL <= 0 {
		opts.ContainerTTL = DefaultContainerTTL
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	createdAt := opts.Now()

	return &PrefixStore{
		name:      name,
		id:        uuid.NewString(),
		createdAt: createdAt,
		expiresAt: createdAt.Add(opts.ContainerTTL),
		now:       opts.Now,
		index:     newIndex(),
		logger:    log.PrefixedLog("prefix_store").WithField("store", name),
	}
}

func newIndex() *trie.Trie {
	return trie.NewTrie(trie.SplitRune)
}

// Name implements `cache.Container`.
func (s *PrefixStore) Name() string {
	return s.name
}

// ID implements `cache.Container`.
func (s *PrefixStore) ID() string {
	return s.id
}

// Type implements `cache.Container`.
func (s *PrefixStore) Type() string {
	return TypeName
}

// CreatedAt implements `cache.Container`.
func (s *PrefixStore) CreatedAt() time.Time {
	return s.createdAt
}

// ExpiresAt implements `cache.Container`.
func (s *PrefixStore) ExpiresAt() time.Time {
	return s.expiresAt
}

// IsExpired implements `cache.Container`.
func (s *PrefixStore) IsExpired() bool {
	return s.now().After(s.expiresAt)
}

// Close implements `cache.Container`. A prefix store owns no background work.
func (s *PrefixStore) Close() {}

// Add inserts value, keyed by itself
func (s *PrefixStore) Add(value string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.index.Insert(value, value)
}

// Get returns all inserted strings starting with prefix, ordered
func (s *PrefixStore) Get(prefix string) []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.index.WithPrefix(prefix)
}

// Count returns the number of distinct strings
func (s *PrefixStore) Count() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.index.Count()
}

// Flush replaces the index with an empty one
func (s *PrefixStore) Flush() {
	s.lock.Lock()
	s.index = newIndex()
	s.lock.Unlock()

	s.logger.Debug("flushed")
}

// Describe implements `cache.Container`.
func (s *PrefixStore) Describe() cache.Description {
	d := cache.NewDescription(s, s.now())

	s.lock.RLock()
	defer s.lock.RUnlock()

	d.Length = s.index.Count()

	s.index.Walk(func(v string) {
		d.Size += len(v)
	})

	return d
}
