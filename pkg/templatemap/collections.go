package templatemap

import (
	"sort"
	"strings"
	"sync"
)

// Implicit collections that exist for every build.
const (
	// CollectionAll aggregates every entry in the build.
	CollectionAll = "all"

	// CollectionKeys records every distinct named collection seen.
	CollectionKeys = "[keys]"
)

const collectionPrefix = "__collection:"

// NodeID returns the graph node identifier for a collection name.
func NodeID(name string) string {
	return collectionPrefix + name
}

// IsNodeID reports whether id names a collection node rather than an
// entry path.
func IsNodeID(id string) bool {
	return strings.HasPrefix(id, collectionPrefix)
}

// NameFromNodeID strips the collection prefix from a node identifier.
// Returns the input unchanged if it is not a collection node.
func NameFromNodeID(id string) string {
	return strings.TrimPrefix(id, collectionPrefix)
}

// CollectionSet holds the named collections for one build: insertion-ordered
// sequences of entry items, plus the implicit "all" and "[keys]" collections.
// Safe for concurrent reads during data resolution; population happens
// sequentially during the ordering walk.
type CollectionSet struct {
	mu    sync.RWMutex
	items map[string][]map[string]any
	named []string // named collections in first-sighting order
}

// NewCollectionSet creates an empty collection set.
func NewCollectionSet() *CollectionSet {
	return &CollectionSet{items: make(map[string][]map[string]any)}
}

// Items returns the current contents of a collection. A collection that
// has not been populated yet yields nil, which readers must tolerate.
func (s *CollectionSet) Items(name string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[name]
}

// Append adds one entry item to a collection, registering the name on
// first sight.
func (s *CollectionSet) Append(name string, item map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.register(name)
	s.items[name] = append(s.items[name], item)
}

// AddKey records a distinct collection name in the implicit keys
// collection.
func (s *CollectionSet) AddKey(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[CollectionKeys] = append(s.items[CollectionKeys], map[string]any{"key": name})
}

// Names returns every named collection in first-sighting order. The
// implicit collections are not included.
func (s *CollectionSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.named...)
}

// Len returns the number of items in a collection.
func (s *CollectionSet) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items[name])
}

// Reset discards all collection contents and names.
func (s *CollectionSet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string][]map[string]any)
	s.named = nil
}

func (s *CollectionSet) register(name string) {
	if name == CollectionAll || name == CollectionKeys {
		return
	}
	for _, n := range s.named {
		if n == name {
			return
		}
	}
	s.named = append(s.named, name)
}

// readTracker wraps collection lookups issued during one data-resolution
// call and records every name looked up. Scoped per evaluation; never
// shared between documents.
type readTracker struct {
	set  *CollectionSet
	seen map[string]struct{}
}

func newReadTracker(set *CollectionSet) *readTracker {
	return &readTracker{set: set, seen: make(map[string]struct{})}
}

func (t *readTracker) lookup(name string) []map[string]any {
	t.seen[name] = struct{}{}
	return t.set.Items(name)
}

func (t *readTracker) reads() []string {
	names := make([]string, 0, len(t.seen))
	for name := range t.seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
