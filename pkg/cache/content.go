package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/boycaught/eleventy/pkg/events"
)

// DefaultContentCacheSize bounds the raw-content cache. Sites larger than
// this re-read the oldest documents, which is correct just slower.
const DefaultContentCacheSize = 4096

// ContentCache holds raw document content keyed by input path. It is
// lifecycle-scoped: constructed per process, invalidated per path when the
// event bus reports a modified resource.
type ContentCache struct {
	entries *lru.Cache[string, string]
}

// NewContentCache creates a bounded content cache. If bus is non-nil the
// cache subscribes to resource-modified events and drops the entry for
// each changed path.
func NewContentCache(size int, bus *events.Bus) (*ContentCache, error) {
	if size <= 0 {
		size = DefaultContentCacheSize
	}
	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	c := &ContentCache{entries: entries}
	if bus != nil {
		bus.OnResourceModified(func(path string) {
			c.Invalidate(path)
		})
	}
	return c, nil
}

// Get returns the cached content for path.
func (c *ContentCache) Get(path string) (string, bool) {
	return c.entries.Get(path)
}

// Set stores content for path.
func (c *ContentCache) Set(path, content string) {
	c.entries.Add(path, content)
}

// Invalidate removes the entry for path.
func (c *ContentCache) Invalidate(path string) {
	c.entries.Remove(path)
}

// Purge removes every entry.
func (c *ContentCache) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached entries.
func (c *ContentCache) Len() int {
	return c.entries.Len()
}
