// Package cache holds the contract shared by all named cache containers.
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/hako/durafmt"
)

const (
	// TimestampFormat is used for human readable instants in descriptions
	TimestampFormat = "2006-01-02 15:04:05"

	// FlushParam is the query parameter naming the container in a flush reference
	FlushParam = "flush"

	// EntryParam is the query parameter naming the entry in a flush reference
	EntryParam = "entry"

	// maxSizeDepth limits the nesting gob is asked to encode
	maxSizeDepth = 1000
)

// Container is a named cache container with its own lifetime
type Container interface {
	// Name returns the name the container was created for
	Name() string

	// ID identifies this container instance; a replacement gets a new id
	ID() string

	// Type returns the container type tag used in descriptions
	Type() string

	// CreatedAt returns the creation instant
	CreatedAt() time.Time

	// ExpiresAt returns the instant after which the whole container is stale
	ExpiresAt() time.Time

	// IsExpired returns true once the container lifetime has passed
	IsExpired() bool

	// Describe returns the diagnostic record of the container
	Describe() Description

	// Close stops background work owned by the container
	Close()
}

// Description is the diagnostic record of a container
type Description struct {
	Name      string                      `json:"name"`
	ID        string                      `json:"id"`
	Type      string                      `json:"type"`
	Enabled   bool                        `json:"enabled"`
	Expires   string                      `json:"expires"`
	ExpiresIn string                      `json:"expiresIn"`
	Size      int                         `json:"size"`
	Flush     string                      `json:"flush"`
	Length    int                         `json:"length"`
	Entries   map[string]EntryDescription `json:"entries,omitempty"`
}

// EntryDescription is the diagnostic record of a single entry
type EntryDescription struct {
	Size    int    `json:"size"`
	Flush   string `json:"flush"`
	Expires string `json:"expires"`
}

// NewDescription fills the container level fields of a description
func NewDescription(c Container, now time.Time) Description {
	return Description{
		Name:      c.Name(),
		ID:        c.ID(),
		Type:      c.Type(),
		Enabled:   true,
		Expires:   FormatTime(c.ExpiresAt()),
		ExpiresIn: FormatRemaining(c.ExpiresAt().Sub(now)),
		Flush:     FlushRef(c.Name()),
	}
}

// FlushRef returns the reference used to flush a whole container
func FlushRef(name string) string {
	return fmt.Sprintf("?%s=%s", FlushParam, url.QueryEscape(name))
}

// EntryFlushRef returns the reference used to flush one entry of a container
func EntryFlushRef(name, key string) string {
	return fmt.Sprintf("%s&%s=%s", FlushRef(name), EntryParam, url.QueryEscape(key))
}

// FormatTime formats an instant for descriptions
func FormatTime(t time.Time) string {
	return t.Format(TimestampFormat)
}

// FormatRemaining formats the time left until expiration
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}

	return durafmt.ParseShort(d).String()
}

// SizeOf estimates the encoded size of a value in bytes. Values gob can't
// encode are estimated by their printed form. Cyclic values and values nested
// deeper than maxSizeDepth are estimated by their in-memory size, counting
// every referenced value once.
func SizeOf(v any) int {
	rv := reflect.ValueOf(v)

	if !isGobSafe(rv, make(map[refKey]struct{}), 0) {
		return memSize(rv, make(map[refKey]struct{}), 0)
	}

	var buf bytes.Buffer

	if err := gob.NewEncoder(&buf).Encode(v); err == nil {
		return buf.Len()
	}

	return len(fmt.Sprint(v))
}

type refKey struct {
	addr uintptr
	typ  reflect.Type
}

// isGobSafe walks v and returns false if a reference points back to one of
// its ancestors or the nesting exceeds maxSizeDepth.
func isGobSafe(v reflect.Value, path map[refKey]struct{}, depth int) bool {
	if depth > maxSizeDepth {
		return false
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if v.IsNil() || (v.Kind() == reflect.Slice && v.Len() == 0) {
			return true
		}

		key := refKey{addr: v.Pointer(), typ: v.Type()}
		if _, found := path[key]; found {
			return false
		}

		path[key] = struct{}{}
		defer delete(path, key)

		return isGobSafeContent(v, path, depth)

	case reflect.Interface:
		if v.IsNil() {
			return true
		}

		return isGobSafe(v.Elem(), path, depth+1)

	case reflect.Struct, reflect.Array:
		return isGobSafeContent(v, path, depth)

	default:
		return true
	}
}

func isGobSafeContent(v reflect.Value, path map[refKey]struct{}, depth int) bool {
	switch v.Kind() {
	case reflect.Pointer:
		return isGobSafe(v.Elem(), path, depth+1)

	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !isGobSafe(iter.Key(), path, depth+1) || !isGobSafe(iter.Value(), path, depth+1) {
				return false
			}
		}

	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !isGobSafe(v.Field(i), path, depth+1) {
				return false
			}
		}

	case reflect.Slice, reflect.Array:
		if isScalar(v.Type().Elem().Kind()) {
			return true
		}

		for i := 0; i < v.Len(); i++ {
			if !isGobSafe(v.Index(i), path, depth+1) {
				return false
			}
		}
	}

	return true
}

func memSize(v reflect.Value, seen map[refKey]struct{}, depth int) int {
	if !v.IsValid() || depth > maxSizeDepth {
		return 0
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return 0
		}

		key := refKey{addr: v.Pointer(), typ: v.Type()}
		if _, found := seen[key]; found {
			return 0
		}

		seen[key] = struct{}{}

	case reflect.Interface:
		if v.IsNil() {
			return 0
		}

		return memSize(v.Elem(), seen, depth+1)

	case reflect.String:
		return v.Len()
	}

	switch v.Kind() {
	case reflect.Pointer:
		return memSize(v.Elem(), seen, depth+1)

	case reflect.Map:
		size := 0

		iter := v.MapRange()
		for iter.Next() {
			size += memSize(iter.Key(), seen, depth+1) + memSize(iter.Value(), seen, depth+1)
		}

		return size

	case reflect.Struct:
		size := 0

		for i := 0; i < v.NumField(); i++ {
			size += memSize(v.Field(i), seen, depth+1)
		}

		return size

	case reflect.Slice, reflect.Array:
		if isScalar(v.Type().Elem().Kind()) && v.Type().Elem().Kind() != reflect.String {
			return v.Len() * int(v.Type().Elem().Size())
		}

		size := 0

		for i := 0; i < v.Len(); i++ {
			size += memSize(v.Index(i), seen, depth+1)
		}

		return size

	default:
		return int(v.Type().Size())
	}
}

func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return false
	default:
		return true
	}
}
