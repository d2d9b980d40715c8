// Package depgraph provides a directed dependency graph with a stable
// topological ordering.
//
// Nodes carry an insertion sequence. The topological order breaks ties by
// lowest sequence, so nodes with no ordering constraint between them come
// out in insertion order, keeping build output reproducible. Cycles
// do not fail the ordering: members of a cyclic subset are reported back
// to the caller, which appends them in insertion order.
package depgraph

import (
	"container/heap"
	"errors"
	"sort"
)

var (
	// ErrInvalidNodeID is returned by AddNode when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrUnknownSourceNode is returned by AddEdge when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by AddEdge when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Graph is a directed graph keyed by string node IDs.
// The zero value is not usable - use New. Graph is not safe for
// concurrent use without external synchronization.
type Graph struct {
	seqs     map[string]int
	outgoing map[string]map[string]struct{}
	incoming map[string]map[string]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		seqs:     make(map[string]int),
		outgoing: make(map[string]map[string]struct{}),
		incoming: make(map[string]map[string]struct{}),
	}
}

// AddNode adds a node with the given ordering sequence. Adding an existing
// node keeps its original sequence. Returns ErrInvalidNodeID for an empty
// ID.
func (g *Graph) AddNode(id string, seq int) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.seqs[id]; exists {
		return nil
	}
	g.seqs[id] = seq
	return nil
}

// HasNode reports whether id exists in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.seqs[id]
	return ok
}

// AddEdge adds a directed edge meaning "from must precede to".
// Self-edges and duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return nil
	}
	if _, ok := g.seqs[from]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.seqs[to]; !ok {
		return ErrUnknownTargetNode
	}
	if g.outgoing[from] == nil {
		g.outgoing[from] = make(map[string]struct{})
	}
	if _, dup := g.outgoing[from][to]; dup {
		return nil
	}
	g.outgoing[from][to] = struct{}{}
	if g.incoming[to] == nil {
		g.incoming[to] = make(map[string]struct{})
	}
	g.incoming[to][from] = struct{}{}
	return nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.seqs) }

// seqHeap is a min-heap of node IDs ordered by sequence.
type seqHeap struct {
	ids  []string
	seqs map[string]int
}

func (h *seqHeap) Len() int            { return len(h.ids) }
func (h *seqHeap) Less(i, j int) bool  { return h.seqs[h.ids[i]] < h.seqs[h.ids[j]] }
func (h *seqHeap) Swap(i, j int)       { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }
func (h *seqHeap) Push(x any)          { h.ids = append(h.ids, x.(string)) }
func (h *seqHeap) Pop() any {
	last := h.ids[len(h.ids)-1]
	h.ids = h.ids[:len(h.ids)-1]
	return last
}

// StableOrder computes a topological order using Kahn's algorithm, always
// emitting the lowest-sequence ready node first. The second return lists
// nodes caught in cycles (never reaching zero in-degree), sorted by
// sequence; an empty slice means the graph is acyclic.
func (g *Graph) StableOrder() (order []string, cyclic []string) {
	inDegree := make(map[string]int, len(g.seqs))
	ready := &seqHeap{seqs: g.seqs}

	for id := range g.seqs {
		degree := len(g.incoming[id])
		inDegree[id] = degree
		if degree == 0 {
			ready.ids = append(ready.ids, id)
		}
	}
	heap.Init(ready)

	order = make([]string, 0, len(g.seqs))
	for ready.Len() > 0 {
		curr := heap.Pop(ready).(string)
		order = append(order, curr)
		for next := range g.outgoing[curr] {
			inDegree[next]--
			if inDegree[next] == 0 {
				heap.Push(ready, next)
			}
		}
	}

	if len(order) < len(g.seqs) {
		emitted := make(map[string]struct{}, len(order))
		for _, id := range order {
			emitted[id] = struct{}{}
		}
		for id := range g.seqs {
			if _, ok := emitted[id]; !ok {
				cyclic = append(cyclic, id)
			}
		}
		sort.Slice(cyclic, func(i, j int) bool {
			return g.seqs[cyclic[i]] < g.seqs[cyclic[j]]
		})
	}
	return order, cyclic
}
