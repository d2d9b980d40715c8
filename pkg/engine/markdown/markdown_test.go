package markdown

import (
	"context"
	"strings"
	"testing"
)

func TestCompile(t *testing.T) {
	e := New()
	fn, err := e.Compile(context.Background(), "# Title\n\nsome *emphasis*\n", "post.md")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	out, err := fn(context.Background(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<em>emphasis</em>") {
		t.Errorf("render = %q, want heading and emphasis HTML", out)
	}
}

func TestCompileCacheKey(t *testing.T) {
	e := New()
	k1 := e.CompileCacheKey("# A", "a.md")
	k2 := e.CompileCacheKey("# A", "b.md")
	k3 := e.CompileCacheKey("# B", "a.md")

	if !k1.UseCache {
		t.Error("markdown compiles should be cache-eligible")
	}
	if k1.Key != k2.Key {
		t.Error("identical content should share a cache key")
	}
	if k1.Key == k3.Key {
		t.Error("different content should not share a cache key")
	}
}

func TestDependencies(t *testing.T) {
	e := New()
	if e.HasDependencies("post.md") {
		t.Error("unregistered path should have unknown dependencies")
	}

	e.RegisterDependencies("post.md", []string{"_includes/layout.html"})

	if !e.HasDependencies("post.md") {
		t.Error("registered path should report known dependencies")
	}
	if !e.IsFileRelevantTo("post.md", "_includes/layout.html") {
		t.Error("post should be relevant to its layout")
	}
	if e.IsFileRelevantTo("post.md", "_includes/other.html") {
		t.Error("post should not be relevant to an unrelated layout")
	}
}
