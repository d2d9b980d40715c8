// Package usesgraph implements the global uses graph: a cross-build,
// file-level dependency graph recording which documents and collections
// each document reads from.
//
// The graph outlives individual builds (process lifetime, optionally
// persisted through the cache layer) and answers the three questions the
// incremental scheduler asks: what does this file use, who uses this
// file, and what is transitively reachable from a set of files. Edges are
// added only after a document's data has been fully resolved; dependency
// sets are unknowable before resolution.
package usesgraph

import (
	"sort"
	"sync"
)

// Graph maps each file path to the set of paths it uses, with an inverse
// index for "who uses me" queries. Safe for concurrent use.
type Graph struct {
	mu         sync.RWMutex
	uses       map[string]map[string]struct{}
	dependents map[string]map[string]struct{}
}

// New creates an empty uses graph.
func New() *Graph {
	return &Graph{
		uses:       make(map[string]map[string]struct{}),
		dependents: make(map[string]map[string]struct{}),
	}
}

// AddDependencies records that path uses each of targets. The path gains
// an entry even with no targets, marking its dependencies as known.
func (g *Graph) AddDependencies(path string, targets ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.uses[path] == nil {
		g.uses[path] = make(map[string]struct{})
	}
	for _, target := range targets {
		if target == path {
			continue
		}
		g.uses[path][target] = struct{}{}
		if g.dependents[target] == nil {
			g.dependents[target] = make(map[string]struct{})
		}
		g.dependents[target][path] = struct{}{}
	}
}

// Uses reports whether path uses target directly.
func (g *Graph) Uses(path, target string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.uses[path][target]
	return ok
}

// Dependencies returns what path uses directly, sorted.
func (g *Graph) Dependencies(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.uses[path])
}

// Dependents returns who uses path directly, sorted.
func (g *Graph) Dependents(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.dependents[path])
}

// Known reports whether dependency information was ever recorded for path.
func (g *Graph) Known(path string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.uses[path]
	return ok
}

// Paths returns every path with recorded dependencies, sorted.
func (g *Graph) Paths() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.uses)
}

// Closure returns everything the seed paths use, transitively. The seeds
// themselves are included only if some seed uses them.
func (g *Graph) Closure(seeds ...string) map[string]struct{} {
	g.mu.RLock()
	defer g.mu.RUnlock()

	reached := make(map[string]struct{})
	queue := append([]string(nil), seeds...)
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for target := range g.uses[curr] {
			if _, seen := reached[target]; seen {
				continue
			}
			reached[target] = struct{}{}
			queue = append(queue, target)
		}
	}
	return reached
}

// ReverseClosure returns every path transitively depending on any of the
// seeds, walking dependent edges. Seeds themselves are excluded unless
// reached through another seed.
func (g *Graph) ReverseClosure(seeds ...string) map[string]struct{} {
	g.mu.RLock()
	defer g.mu.RUnlock()

	reached := make(map[string]struct{})
	queue := append([]string(nil), seeds...)
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for dependent := range g.dependents[curr] {
			if _, seen := reached[dependent]; seen {
				continue
			}
			reached[dependent] = struct{}{}
			queue = append(queue, dependent)
		}
	}
	return reached
}

// Forget removes path and every edge touching it. Used when a source file
// is deleted.
func (g *Graph) Forget(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for target := range g.uses[path] {
		delete(g.dependents[target], path)
	}
	delete(g.uses, path)
	for user := range g.dependents[path] {
		delete(g.uses[user], path)
	}
	delete(g.dependents, path)
}

// Reset discards the whole graph. Triggered by full rebuilds and explicit
// config resets.
func (g *Graph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.uses = make(map[string]map[string]struct{})
	g.dependents = make(map[string]map[string]struct{})
}

// Len returns the number of paths with recorded dependencies.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.uses)
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
