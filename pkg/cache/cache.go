// Package cache provides the caching layer for the build core.
//
// Two families of caches live here:
//
//   - Lifecycle-scoped in-memory caches used during builds: the raw
//     content cache ([ContentCache]) and the compiled-template cache
//     ([CompileCache]). These subscribe to the build event bus for
//     selective invalidation.
//
//   - Persistent byte caches behind the [Cache] interface, used for the
//     uses-graph snapshot and other cross-run state. Backends: file,
//     redis, mongo, and a null cache for disabling persistence.
//
// Keys for the persistent layer are produced by a [Keyer] so callers never
// concatenate key strings by hand and multi-project setups can namespace
// entries with [ScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache is a persistent byte store with optional TTL expiry.
// Implementations must treat a missing key as (nil, false, nil).
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the persistent layer.
type Keyer interface {
	// ContentKey generates a key for cached raw document content.
	ContentKey(path string) string

	// UsesGraphKey generates a key for the uses-graph snapshot of a project.
	UsesGraphKey(project string) string
}

// DefaultKeyer is the standard key scheme: a short prefix plus a SHA-256
// hash of the identifying parts.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ContentKey generates a key for cached raw document content.
func (k *DefaultKeyer) ContentKey(path string) string {
	return hashKey("content", path)
}

// UsesGraphKey generates a key for the uses-graph snapshot of a project.
func (k *DefaultKeyer) UsesGraphKey(project string) string {
	return hashKey("usesgraph", project)
}

// ScopedKeyer wraps a Keyer with a prefix for multi-project isolation.
// Useful when several sites share one redis or mongo backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ContentKey generates a prefixed content key.
func (k *ScopedKeyer) ContentKey(path string) string {
	return k.prefix + k.inner.ContentKey(path)
}

// UsesGraphKey generates a prefixed uses-graph snapshot key.
func (k *ScopedKeyer) UsesGraphKey(project string) string {
	return k.prefix + k.inner.UsesGraphKey(project)
}
