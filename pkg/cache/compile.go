package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/boycaught/eleventy/pkg/engine"
	"github.com/boycaught/eleventy/pkg/events"
	"github.com/boycaught/eleventy/pkg/observability"
)

// CompileCache holds compiled template functions. Entries are keyed first
// by document path, then by a compound key combining the engine's content
// key with the owning configuration instance ID, so two configuration
// instances never share a compiled function even for identical content.
//
// Concurrent compile requests for the same key converge on a single
// compile via a per-key single-flight group. Failed compiles leave no
// entry behind, so a later call retries instead of replaying the failure.
type CompileCache struct {
	mu      sync.Mutex
	entries map[string]map[string]engine.RenderFunc
	flight  singleflight.Group
}

// NewCompileCache creates a compile cache. If bus is non-nil the cache
// subscribes to the build events: a modified resource clears that path's
// nested entries (preserving the outer key), and a compile-cache-reset
// discards the whole structure.
func NewCompileCache(bus *events.Bus) *CompileCache {
	c := &CompileCache{
		entries: make(map[string]map[string]engine.RenderFunc),
	}
	if bus != nil {
		bus.OnResourceModified(func(path string) {
			c.InvalidatePath(path)
		})
		bus.OnCompileCacheReset(func() {
			c.Reset()
		})
	}
	return c
}

// Key combines an engine content key with a configuration instance ID.
func Key(contentKey, configID string) string {
	return contentKey + "\x00" + configID
}

// Get returns the cached compiled function for path and key.
func (c *CompileCache) Get(path, key string) (engine.RenderFunc, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn, ok := c.entries[path][key]
	return fn, ok
}

// Compile returns the cached function for path and key, or runs compile
// exactly once per in-flight key and caches its result. Concurrent callers
// for the same key wait on the first call rather than compiling twice.
func (c *CompileCache) Compile(ctx context.Context, path, key string, compile func() (engine.RenderFunc, error)) (engine.RenderFunc, error) {
	if fn, ok := c.Get(path, key); ok {
		observability.Cache().OnCacheHit(ctx, "compile")
		return fn, nil
	}
	observability.Cache().OnCacheMiss(ctx, "compile")

	v, err, _ := c.flight.Do(path+"\x00"+key, func() (any, error) {
		// A sibling call may have finished while we queued.
		if fn, ok := c.Get(path, key); ok {
			return fn, nil
		}
		fn, err := compile()
		if err != nil {
			// Nothing is stored: the single-flight entry expires with
			// this call and the next request compiles again.
			return nil, err
		}
		c.put(path, key, fn)
		observability.Cache().OnCacheSet(ctx, "compile", 1)
		return fn, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(engine.RenderFunc), nil
}

func (c *CompileCache) put(path, key string, fn engine.RenderFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inner, ok := c.entries[path]
	if !ok {
		inner = make(map[string]engine.RenderFunc)
		c.entries[path] = inner
	}
	inner[key] = fn
}

// InvalidatePath clears the compiled functions for one path. The outer key
// is preserved with an empty nested map, matching the modified-resource
// invalidation contract.
func (c *CompileCache) InvalidatePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[path]; ok {
		c.entries[path] = make(map[string]engine.RenderFunc)
	}
}

// Reset discards the entire cache structure.
func (c *CompileCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]map[string]engine.RenderFunc)
}

// Len returns the total number of cached compiled functions.
func (c *CompileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, inner := range c.entries {
		n += len(inner)
	}
	return n
}
