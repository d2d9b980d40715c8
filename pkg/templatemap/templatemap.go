// Package templatemap computes the render order for a build.
//
// Documents are added one by one; adding a document resolves its data
// immediately, instrumenting collection lookups so the map learns which
// collections each document reads. Once every document is in, Cache builds
// a dependency graph between entries and collection nodes, computes a
// stable topological order, and populates collections by walking entries
// in that order. The central invariant: no entry appears in the order
// before every entry contributing to a collection it reads.
package templatemap

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/boycaught/eleventy/pkg/depgraph"
	"github.com/boycaught/eleventy/pkg/document"
	"github.com/boycaught/eleventy/pkg/errors"
	"github.com/boycaught/eleventy/pkg/usesgraph"
)

// Sequence bands keep entry nodes ahead of collection nodes in the ready
// heap: entries tie-break among themselves by add order, named collection
// nodes come next, the keys barrier after those, the all barrier last.
const (
	seqNamedBase = 1 << 20
	seqKeys      = 1 << 21
	seqAll       = 1 << 22
)

// Map collects the entries of one build and computes their render order.
// Not safe for concurrent use; the build runner drives it sequentially.
type Map struct {
	logger *log.Logger

	entries []*MapEntry
	byPath  map[string]*MapEntry

	collections *CollectionSet
	order       []string
	cached      bool
}

// New creates an empty template map. A nil logger discards output.
func New(logger *log.Logger) *Map {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Map{
		logger:      logger,
		byPath:      make(map[string]*MapEntry),
		collections: NewCollectionSet(),
	}
}

// Add registers a document, resolving its data immediately: ordering
// depends on which collections the data reads, so resolution cannot wait.
// Collection lookups issued during resolution are recorded as the entry's
// read set; the write set comes from the document's declared tags plus the
// implicit all collection.
func (m *Map) Add(ctx context.Context, doc *document.Document) (*MapEntry, error) {
	if _, ok := m.byPath[doc.Path()]; ok {
		return nil, errors.New(errors.ErrCodeDuplicateEntry, "document already added: %s", doc.Path())
	}

	entry := newMapEntry(doc, len(m.entries))
	tracker := newReadTracker(m.collections)
	data, err := doc.ResolveData(ctx, tracker.lookup)
	if err != nil {
		return nil, err
	}
	entry.data = data
	entry.reads = tracker.reads()
	entry.writes = declaredCollections(data)

	m.entries = append(m.entries, entry)
	m.byPath[entry.Path()] = entry
	m.cached = false
	return entry, nil
}

// Entries returns every entry in add order.
func (m *Map) Entries() []*MapEntry {
	return append([]*MapEntry(nil), m.entries...)
}

// Entry looks up an entry by input path.
func (m *Map) Entry(path string) (*MapEntry, bool) {
	e, ok := m.byPath[path]
	return e, ok
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Collections returns the build's collection set.
func (m *Map) Collections() *CollectionSet { return m.collections }

// Lookup returns a collection lookup backed by the live collection set,
// for use at render time.
func (m *Map) Lookup() document.CollectionLookup {
	return m.collections.Items
}

// Cache computes the render order and populates collections. Call once all
// documents for the build are added.
//
// An entry must render after every entry contributing to a collection it
// reads. Cycles between entries (A reads what B writes and vice versa) do
// not fail the build: the cyclic subset falls back to insertion order with
// a logged warning, trading partial collection data for progress.
func (m *Map) Cache(ctx context.Context) error {
	g := depgraph.New()

	for _, e := range m.entries {
		if err := g.AddNode(e.Path(), e.seq); err != nil {
			return err
		}
	}

	names := m.collectionNames()
	for i, name := range names {
		if err := g.AddNode(NodeID(name), seqNamedBase+i); err != nil {
			return err
		}
	}
	if len(m.entries) > 0 {
		if err := g.AddNode(NodeID(CollectionKeys), seqKeys); err != nil {
			return err
		}
		if err := g.AddNode(NodeID(CollectionAll), seqAll); err != nil {
			return err
		}
	}

	for _, e := range m.entries {
		for _, name := range e.writes {
			if err := g.AddEdge(e.Path(), NodeID(name)); err != nil {
				return err
			}
		}
		if err := g.AddEdge(e.Path(), NodeID(CollectionAll)); err != nil {
			return err
		}
	}
	for _, name := range names {
		if err := g.AddEdge(NodeID(name), NodeID(CollectionKeys)); err != nil {
			return err
		}
		for _, e := range m.entries {
			if !e.ReadsCollection(name) {
				continue
			}
			if e.WritesCollection(name) {
				// Reading a collection you contribute to is not an
				// ordering constraint on yourself.
				continue
			}
			if err := g.AddEdge(NodeID(name), e.Path()); err != nil {
				return err
			}
		}
	}
	for _, e := range m.entries {
		if e.ReadsCollection(CollectionAll) || e.ReadsCollection(CollectionKeys) {
			if err := g.AddEdge(NodeID(CollectionKeys), e.Path()); err != nil {
				return err
			}
		}
	}

	order, cyclic := g.StableOrder()
	if len(cyclic) > 0 {
		m.logger.Warn("collection dependency cycle, falling back to insertion order",
			"nodes", cyclic)
		order = append(order, cyclic...)
	}

	m.collections.Reset()
	for _, id := range order {
		if !IsNodeID(id) {
			e := m.byPath[id]
			item := e.collectionItem()
			for _, name := range e.writes {
				m.collections.Append(name, item)
			}
			m.collections.Append(CollectionAll, item)
			continue
		}
		name := NameFromNodeID(id)
		if name != CollectionAll && name != CollectionKeys {
			m.collections.AddKey(name)
		}
	}

	m.order = order
	m.cached = true
	m.logger.Debug("ordered templates",
		"entries", len(m.entries), "collections", len(names), "cyclic", len(cyclic))
	return nil
}

// TemplateOrder returns the computed order: entry paths interleaved with
// collection markers ("__collection:<name>") at the positions where each
// collection becomes complete. Empty before Cache has run.
func (m *Map) TemplateOrder() []string {
	return append([]string(nil), m.order...)
}

// OrderedEntries returns the entries in computed render order, without
// collection markers.
func (m *Map) OrderedEntries() []*MapEntry {
	ordered := make([]*MapEntry, 0, len(m.entries))
	for _, id := range m.order {
		if e, ok := m.byPath[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered
}

// AddAllToGlobalGraph records every entry's collection reads and writes in
// the global uses graph for future incremental builds: a reader depends on
// the collection node, and a collection node depends on each contributor.
func (m *Map) AddAllToGlobalGraph(g *usesgraph.Graph) {
	for _, e := range m.entries {
		deps := make([]string, 0, len(e.reads))
		for _, name := range e.reads {
			deps = append(deps, NodeID(name))
		}
		g.AddDependencies(e.Path(), deps...)
		for _, name := range e.writes {
			g.AddDependencies(NodeID(name), e.Path())
		}
		g.AddDependencies(NodeID(CollectionAll), e.Path())
	}
}

// collectionNames returns every named collection written or read by any
// entry, in first-sighting order. The implicit collections are excluded.
func (m *Map) collectionNames() []string {
	var names []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if name == CollectionAll || name == CollectionKeys {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, e := range m.entries {
		for _, name := range e.writes {
			add(name)
		}
		for _, name := range e.reads {
			add(name)
		}
	}
	return names
}

// declaredCollections extracts the named collections a document writes to
// from its resolved data's "tags" key. Accepts a single string or a list.
func declaredCollections(data map[string]any) []string {
	var names []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if name == "" || name == CollectionAll || name == CollectionKeys {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	switch tags := data["tags"].(type) {
	case string:
		add(tags)
	case []string:
		for _, t := range tags {
			add(t)
		}
	case []any:
		for _, t := range tags {
			if s, ok := t.(string); ok {
				add(s)
			}
		}
	}
	return names
}
