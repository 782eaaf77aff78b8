package expirationcache

import "time"

// DefaultEntryTTL is used for entries stored without an explicit lifetime
const DefaultEntryTTL = 30 * 24 * time.Hour

// Entry is an immutable cached value with its absolute expiration instant
type Entry struct {
	value     any
	expiresAt time.Time
}

// NewEntry creates an entry expiring after ttl. If ttl <= 0, DefaultEntryTTL is used.
func NewEntry(value any, ttl time.Duration) *Entry {
	return newEntry(value, ttl, DefaultEntryTTL, time.Now())
}

func newEntry(value any, ttl, defaultTTL time.Duration, now time.Time) *Entry {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &Entry{
		value:     value,
		expiresAt: now.Add(ttl),
	}
}

// Value returns the cached value
func (e *Entry) Value() any {
	return e.value
}

// ExpiresAt returns the expiration instant
func (e *Entry) ExpiresAt() time.Time {
	return e.expiresAt
}

// IsExpired returns true if the expiration instant has passed
func (e *Entry) IsExpired() bool {
	return e.expiredAt(time.Now())
}

// RemainingTTL returns the time left until expiration, 0 if expired
func (e *Entry) RemainingTTL() time.Duration {
	return e.remainingAt(time.Now())
}

func (e *Entry) expiredAt(now time.Time) bool {
	return now.After(e.expiresAt)
}

func (e *Entry) remainingAt(now time.Time) time.Duration {
	if remaining := e.expiresAt.Sub(now); remaining > 0 {
		return remaining
	}

	return 0
}
