package usesgraph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT representation of the uses graph.
//
// Documents are drawn as rounded boxes, collection nodes (identified by
// their "__collection:" prefix) as ellipses. An edge A -> B means A uses
// B. The output can be rendered with Graphviz tools or programmatically
// with RenderSVG.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph uses {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n\n")

	seen := make(map[string]bool)
	writeNode := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		if strings.HasPrefix(id, "__collection:") {
			label := strings.TrimPrefix(id, "__collection:")
			fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse];\n", id, label)
			return
		}
		fmt.Fprintf(&buf, "  %q [shape=box, style=\"filled,rounded\"];\n", id)
	}

	for _, path := range g.Paths() {
		writeNode(path)
		for _, target := range g.Dependencies(path) {
			writeNode(target)
			fmt.Fprintf(&buf, "  %q -> %q;\n", path, target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders the uses graph as an SVG image via Graphviz.
//
// Errors are returned if Graphviz cannot initialize, the DOT is
// malformed, or rendering fails; all are wrapped with context suitable
// for errors.Is/errors.Unwrap.
func (g *Graph) RenderSVG(ctx context.Context) ([]byte, error) {
	dot := g.ToDOT()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
