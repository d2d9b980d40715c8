package templatemap

import (
	"context"
	"reflect"
	"testing"

	"github.com/boycaught/eleventy/pkg/document"
	"github.com/boycaught/eleventy/pkg/errors"
	"github.com/boycaught/eleventy/pkg/usesgraph"
)

// virtualDoc builds a synthetic document with declared data and an
// optional resolver that reads collections.
func virtualDoc(path string, data map[string]any, reads ...string) *document.Document {
	opts := document.Options{
		Path:       path,
		Virtual:    true,
		InlineData: data,
	}
	if len(reads) > 0 {
		opts.Resolver = document.DataResolverFunc(func(ctx context.Context, d *document.Document, collections document.CollectionLookup) (map[string]any, error) {
			for _, name := range reads {
				collections(name)
			}
			return nil, nil
		})
	}
	return document.New(opts)
}

func mustAdd(t *testing.T, m *Map, doc *document.Document) *MapEntry {
	t.Helper()
	e, err := m.Add(context.Background(), doc)
	if err != nil {
		t.Fatalf("Add(%s): %v", doc.Path(), err)
	}
	return e
}

func TestTemplateOrderWithCollections(t *testing.T) {
	m := New(nil)
	mustAdd(t, m, virtualDoc("post.md", map[string]any{"tags": "post"}))
	mustAdd(t, m, virtualDoc("another-post.md", nil))
	mustAdd(t, m, virtualDoc("index.md", nil, "post", "all"))

	if err := m.Cache(context.Background()); err != nil {
		t.Fatalf("Cache: %v", err)
	}

	want := []string{
		"post.md",
		"another-post.md",
		"__collection:post",
		"__collection:[keys]",
		"index.md",
		"__collection:all",
	}
	if got := m.TemplateOrder(); !reflect.DeepEqual(got, want) {
		t.Errorf("TemplateOrder = %v, want %v", got, want)
	}
}

func TestTemplateOrderAddOrderReversed(t *testing.T) {
	m := New(nil)
	mustAdd(t, m, virtualDoc("another-post.md", nil))
	mustAdd(t, m, virtualDoc("post.md", map[string]any{"tags": "post"}))
	mustAdd(t, m, virtualDoc("index.md", nil, "post", "all"))

	if err := m.Cache(context.Background()); err != nil {
		t.Fatalf("Cache: %v", err)
	}

	order := m.TemplateOrder()
	if order[0] != "another-post.md" || order[1] != "post.md" {
		t.Errorf("unrelated entries should keep add order, got %v", order[:2])
	}
	if order[len(order)-2] != "index.md" {
		t.Errorf("index.md should stay last among entries, got %v", order)
	}
}

func TestTemplateOrderStability(t *testing.T) {
	// No collection dependencies at all: order equals add order.
	m := New(nil)
	paths := []string{"c.md", "a.md", "b.md"}
	for _, p := range paths {
		mustAdd(t, m, virtualDoc(p, nil))
	}
	if err := m.Cache(context.Background()); err != nil {
		t.Fatalf("Cache: %v", err)
	}

	var entries []string
	for _, id := range m.TemplateOrder() {
		if !IsNodeID(id) {
			entries = append(entries, id)
		}
	}
	if !reflect.DeepEqual(entries, paths) {
		t.Errorf("entries = %v, want add order %v", entries, paths)
	}
}

func TestWriterPrecedesReader(t *testing.T) {
	m := New(nil)
	mustAdd(t, m, virtualDoc("reader.md", nil, "notes"))
	mustAdd(t, m, virtualDoc("writer.md", map[string]any{"tags": []string{"notes"}}))

	if err := m.Cache(context.Background()); err != nil {
		t.Fatalf("Cache: %v", err)
	}

	order := m.TemplateOrder()
	pos := make(map[string]int)
	for i, id := range order {
		pos[id] = i
	}
	if pos["writer.md"] > pos["reader.md"] {
		t.Errorf("writer must precede reader, got %v", order)
	}
}

func TestCycleFallsBackToInsertionOrder(t *testing.T) {
	m := New(nil)
	mustAdd(t, m, virtualDoc("a.md", map[string]any{"tags": "alpha"}, "beta"))
	mustAdd(t, m, virtualDoc("b.md", map[string]any{"tags": "beta"}, "alpha"))

	if err := m.Cache(context.Background()); err != nil {
		t.Fatalf("cycles must not fail the build: %v", err)
	}

	var entries []string
	for _, id := range m.TemplateOrder() {
		if !IsNodeID(id) {
			entries = append(entries, id)
		}
	}
	if !reflect.DeepEqual(entries, []string{"a.md", "b.md"}) {
		t.Errorf("cyclic entries should fall back to add order, got %v", entries)
	}
}

func TestCollectionPopulation(t *testing.T) {
	m := New(nil)
	mustAdd(t, m, virtualDoc("post.md", map[string]any{"tags": "post"}))
	mustAdd(t, m, virtualDoc("another-post.md", nil))
	mustAdd(t, m, virtualDoc("index.md", nil, "post", "all"))

	if err := m.Cache(context.Background()); err != nil {
		t.Fatalf("Cache: %v", err)
	}

	set := m.Collections()
	if got := set.Len("post"); got != 1 {
		t.Errorf("post collection has %d items, want 1", got)
	}
	if got := set.Len(CollectionAll); got != 3 {
		t.Errorf("all collection has %d items, want 3", got)
	}
	if got := set.Len(CollectionKeys); got != 1 {
		t.Errorf("keys collection has %d items, want 1", got)
	}
	if item := set.Items("post")[0]; item["page"] != "post.md" {
		t.Errorf("post collection item page = %v, want post.md", item["page"])
	}
}

func TestReadAndWriteSets(t *testing.T) {
	m := New(nil)
	e := mustAdd(t, m, virtualDoc("index.md", map[string]any{"tags": []any{"page", "nav"}}, "post"))

	if got := e.Writes(); !reflect.DeepEqual(got, []string{"page", "nav"}) {
		t.Errorf("Writes = %v, want [page nav]", got)
	}
	if got := e.Reads(); !reflect.DeepEqual(got, []string{"post"}) {
		t.Errorf("Reads = %v, want [post]", got)
	}
	if !e.ReadsCollection("post") || e.ReadsCollection("nav") {
		t.Error("ReadsCollection should reflect instrumented lookups only")
	}
}

func TestDuplicateAdd(t *testing.T) {
	m := New(nil)
	mustAdd(t, m, virtualDoc("post.md", nil))

	_, err := m.Add(context.Background(), virtualDoc("post.md", nil))
	if errors.GetCode(err) != errors.ErrCodeDuplicateEntry {
		t.Errorf("duplicate add should fail with DUPLICATE_ENTRY, got %v", err)
	}
}

func TestContentHandle(t *testing.T) {
	m := New(nil)
	e := mustAdd(t, m, virtualDoc("post.md", map[string]any{"tags": "post"}))
	if err := m.Cache(context.Background()); err != nil {
		t.Fatalf("Cache: %v", err)
	}

	item := m.Collections().Items("post")[0]
	content := item["content"].(Content)

	if _, err := content.HTML(); !errors.IsPrematureDataAccess(err) {
		t.Errorf("unrendered content read should be premature access, got %v", err)
	}

	e.SetOutput("<p>hi</p>")
	out, err := content.HTML()
	if err != nil {
		t.Fatalf("HTML after render: %v", err)
	}
	if string(out) != "<p>hi</p>" {
		t.Errorf("HTML = %q", out)
	}
}

func TestAddAllToGlobalGraph(t *testing.T) {
	m := New(nil)
	mustAdd(t, m, virtualDoc("post.md", map[string]any{"tags": "post"}))
	mustAdd(t, m, virtualDoc("index.md", nil, "post"))
	if err := m.Cache(context.Background()); err != nil {
		t.Fatalf("Cache: %v", err)
	}

	g := usesgraph.New()
	m.AddAllToGlobalGraph(g)

	if !g.Uses("index.md", "__collection:post") {
		t.Error("reader should depend on the collection node")
	}
	if !g.Uses("__collection:post", "post.md") {
		t.Error("collection node should depend on its contributor")
	}
	if !g.Uses("__collection:all", "index.md") {
		t.Error("every entry contributes to the all collection")
	}
	if !g.Known("post.md") {
		t.Error("entries with no reads are still recorded as known")
	}
}
