package usesgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/boycaught/eleventy/pkg/cache"
)

// snapshot is the serialized graph shape: one record per path listing what
// it uses. The inverse index is rebuilt on load.
type snapshot struct {
	Entries []snapshotEntry `json:"entries"`
}

type snapshotEntry struct {
	Path string   `json:"path"`
	Uses []string `json:"uses,omitempty"`
}

// WriteJSON encodes the graph as JSON and writes it to w. The output is
// deterministic (paths and targets sorted) so snapshots diff cleanly.
func (g *Graph) WriteJSON(w io.Writer) error {
	snap := snapshot{}
	for _, path := range g.Paths() {
		snap.Entries = append(snap.Entries, snapshotEntry{
			Path: path,
			Uses: g.Dependencies(path),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a JSON snapshot from r into a fresh graph.
func ReadJSON(r io.Reader) (*Graph, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := New()
	for _, entry := range snap.Entries {
		g.AddDependencies(entry.Path, entry.Uses...)
	}
	return g, nil
}

// Save persists the graph through the cache layer under the keyer's
// uses-graph key for project.
func (g *Graph) Save(ctx context.Context, store cache.Cache, keyer cache.Keyer, project string) error {
	var buf bytes.Buffer
	if err := g.WriteJSON(&buf); err != nil {
		return err
	}
	return store.Set(ctx, keyer.UsesGraphKey(project), buf.Bytes(), 0)
}

// Load restores a graph from the cache layer. A missing snapshot returns
// an empty graph, not an error: incremental state is best-effort.
func Load(ctx context.Context, store cache.Cache, keyer cache.Keyer, project string) (*Graph, error) {
	data, hit, err := store.Get(ctx, keyer.UsesGraphKey(project))
	if err != nil {
		return nil, err
	}
	if !hit {
		return New(), nil
	}
	return ReadJSON(bytes.NewReader(data))
}
