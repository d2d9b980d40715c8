package usesgraph

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/boycaught/eleventy/pkg/cache"
)

func TestDependenciesAndInverse(t *testing.T) {
	g := New()
	g.AddDependencies("index.md", "__collection:post", "__collection:all")
	g.AddDependencies("post.md")

	if !g.Uses("index.md", "__collection:post") {
		t.Error("index.md should use the post collection")
	}
	if g.Uses("post.md", "__collection:post") {
		t.Error("post.md records no dependencies")
	}

	want := []string{"__collection:all", "__collection:post"}
	if got := g.Dependencies("index.md"); !reflect.DeepEqual(got, want) {
		t.Errorf("Dependencies = %v, want %v", got, want)
	}
	if got := g.Dependents("__collection:post"); !reflect.DeepEqual(got, []string{"index.md"}) {
		t.Errorf("Dependents = %v, want [index.md]", got)
	}

	// Known distinguishes empty from unrecorded
	if !g.Known("post.md") {
		t.Error("post.md has recorded (empty) dependencies")
	}
	if g.Known("missing.md") {
		t.Error("missing.md was never recorded")
	}
}

func TestSelfEdgeIgnored(t *testing.T) {
	g := New()
	g.AddDependencies("a.md", "a.md", "b.md")
	if g.Uses("a.md", "a.md") {
		t.Error("self-edges must be ignored")
	}
	if !g.Uses("a.md", "b.md") {
		t.Error("other edges must survive")
	}
}

func TestClosure(t *testing.T) {
	g := New()
	g.AddDependencies("index.md", "__collection:post")
	g.AddDependencies("__collection:post", "post.md")
	g.AddDependencies("post.md", "_includes/layout.html")
	g.AddDependencies("unrelated.md", "_includes/other.html")

	closure := g.Closure("index.md")
	for _, want := range []string{"__collection:post", "post.md", "_includes/layout.html"} {
		if _, ok := closure[want]; !ok {
			t.Errorf("closure should contain %s", want)
		}
	}
	if _, ok := closure["unrelated.md"]; ok {
		t.Error("closure must not contain unrelated paths")
	}
	if _, ok := closure["index.md"]; ok {
		t.Error("seed is not part of its own closure")
	}
}

func TestReverseClosure(t *testing.T) {
	g := New()
	g.AddDependencies("index.md", "__collection:all")
	g.AddDependencies("__collection:all", "post.md", "another-post.md")

	closure := g.ReverseClosure("another-post.md")
	if _, ok := closure["__collection:all"]; !ok {
		t.Error("the collection depends on its contributor")
	}
	if _, ok := closure["index.md"]; !ok {
		t.Error("second-order dependents must be reached")
	}
	if _, ok := closure["post.md"]; ok {
		t.Error("sibling contributors are not dependents")
	}
}

func TestForget(t *testing.T) {
	g := New()
	g.AddDependencies("a.md", "b.md")
	g.AddDependencies("c.md", "a.md")

	g.Forget("a.md")

	if g.Known("a.md") {
		t.Error("forgotten path should be unknown")
	}
	if g.Uses("c.md", "a.md") {
		t.Error("edges into a forgotten path should be removed")
	}
	if got := g.Dependents("b.md"); len(got) != 0 {
		t.Errorf("Dependents(b.md) = %v, want empty", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := New()
	g.AddDependencies("index.md", "__collection:post", "__collection:all")
	g.AddDependencies("post.md", "_includes/layout.html")

	var buf bytes.Buffer
	if err := g.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	restored, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !reflect.DeepEqual(restored.Dependencies("index.md"), g.Dependencies("index.md")) {
		t.Error("index.md dependencies should survive the round trip")
	}
	if !restored.Uses("post.md", "_includes/layout.html") {
		t.Error("post.md edge should survive the round trip")
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	keyer := cache.NewDefaultKeyer()

	g := New()
	g.AddDependencies("index.md", "__collection:post")
	if err := g.Save(ctx, store, keyer, "site"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(ctx, store, keyer, "site")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Uses("index.md", "__collection:post") {
		t.Error("loaded graph should contain the saved edge")
	}

	// Missing snapshot yields an empty graph
	empty, err := Load(ctx, store, keyer, "other-site")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if empty.Len() != 0 {
		t.Errorf("missing snapshot should load empty, got %d entries", empty.Len())
	}
}

func TestToDOT(t *testing.T) {
	g := New()
	g.AddDependencies("index.md", "__collection:post")

	dot := g.ToDOT()
	if !strings.Contains(dot, `"index.md" -> "__collection:post"`) {
		t.Errorf("DOT missing edge:\n%s", dot)
	}
	if !strings.Contains(dot, `label="post"`) {
		t.Errorf("collection nodes should be labeled without the prefix:\n%s", dot)
	}
}
