package document

import (
	"context"
	"errors"
	"testing"

	"github.com/boycaught/eleventy/pkg/cache"
	"github.com/boycaught/eleventy/pkg/engine"
	builderrors "github.com/boycaught/eleventy/pkg/errors"
	"github.com/boycaught/eleventy/pkg/metadata"
	"github.com/boycaught/eleventy/pkg/observability"
)

// countingReader serves fixed content and counts reads.
type countingReader struct {
	files map[string]string
	reads int
}

func (r *countingReader) ReadContent(path string) (string, error) {
	r.reads++
	content, ok := r.files[path]
	if !ok {
		return "", errors.New("no such file: " + path)
	}
	return content, nil
}

// stubEngine is a pass-through engine with a configurable dependency map.
type stubEngine struct {
	deps map[string][]string // nil map entry = unknown deps
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) Compile(ctx context.Context, content, path string) (engine.RenderFunc, error) {
	return func(ctx context.Context, data map[string]any) (string, error) {
		return content, nil
	}, nil
}

func (e *stubEngine) NeedsCompilation(content string) bool { return true }

func (e *stubEngine) CompileCacheKey(content, path string) engine.CacheKey {
	return engine.CacheKey{UseCache: true, Key: content}
}

func (e *stubEngine) IsFileRelevantTo(path, changedPath string) bool {
	for _, dep := range e.deps[path] {
		if dep == changedPath {
			return true
		}
	}
	return false
}

func (e *stubEngine) HasDependencies(path string) bool {
	_, ok := e.deps[path]
	return ok
}

func newTestDocument(t *testing.T, path string, files map[string]string) (*Document, *countingReader) {
	t.Helper()
	reader := &countingReader{files: files}
	contents, err := cache.NewContentCache(16, nil)
	if err != nil {
		t.Fatalf("NewContentCache: %v", err)
	}
	doc := New(Options{
		Path:     path,
		Engine:   &stubEngine{deps: map[string][]string{}},
		Reader:   reader,
		Parser:   metadata.NewParser(),
		Contents: contents,
		ConfigID: "test-config",
	})
	return doc, reader
}

func TestResolveDataMergesMetadata(t *testing.T) {
	doc, _ := newTestDocument(t, "post.md", map[string]string{
		"post.md": "---\ntitle: Hello\ncollections: shadowed\n---\nbody\n",
	})
	doc.opts.Resolver = DataResolverFunc(func(ctx context.Context, d *Document, collections CollectionLookup) (map[string]any, error) {
		return map[string]any{"site": "example"}, nil
	})

	data, err := doc.ResolveData(context.Background(), nil)
	if err != nil {
		t.Fatalf("ResolveData: %v", err)
	}
	if data["title"] != "Hello" {
		t.Errorf("title = %v, want Hello", data["title"])
	}
	if data["site"] != "example" {
		t.Errorf("site = %v, want example", data["site"])
	}
	if _, ok := data["collections"]; ok {
		t.Error("reserved key should be cleaned from resolved data")
	}
}

func TestResolveDataMemoized(t *testing.T) {
	resolves := 0
	doc, reader := newTestDocument(t, "post.md", map[string]string{
		"post.md": "---\ntitle: T\n---\nbody\n",
	})
	doc.opts.Resolver = DataResolverFunc(func(ctx context.Context, d *Document, collections CollectionLookup) (map[string]any, error) {
		resolves++
		return nil, nil
	})

	for i := 0; i < 3; i++ {
		if _, err := doc.ResolveData(context.Background(), nil); err != nil {
			t.Fatalf("ResolveData: %v", err)
		}
	}
	if resolves != 1 {
		t.Errorf("resolver ran %d times, want 1", resolves)
	}
	if reader.reads != 1 {
		t.Errorf("reader ran %d times, want 1", reader.reads)
	}
}

func TestResolveDataParseError(t *testing.T) {
	doc, _ := newTestDocument(t, "bad.md", map[string]string{
		"bad.md": "---\ntitle: [unclosed\n---\nbody\n",
	})

	_, err := doc.ResolveData(context.Background(), nil)
	var parseErr *builderrors.MetadataParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error should be MetadataParseError, got %v", err)
	}
	if parseErr.Path != "bad.md" {
		t.Errorf("error path = %q, want bad.md", parseErr.Path)
	}
}

func TestVirtualDocumentData(t *testing.T) {
	doc := New(Options{
		Path:       "virtual:sitemap",
		Engine:     &stubEngine{},
		Virtual:    true,
		InlineData: map[string]any{"title": "Sitemap"},
	})

	data, err := doc.ResolveData(context.Background(), nil)
	if err != nil {
		t.Fatalf("ResolveData: %v", err)
	}
	if data["title"] != "Sitemap" {
		t.Errorf("title = %v, want Sitemap", data["title"])
	}
}

func TestResetCachesKinds(t *testing.T) {
	doc, reader := newTestDocument(t, "post.md", map[string]string{
		"post.md": "---\ntitle: T\n---\nbody\n",
	})

	ctx := context.Background()
	if _, err := doc.ResolveData(ctx, nil); err != nil {
		t.Fatalf("ResolveData: %v", err)
	}
	readsAfterResolve := reader.reads

	// read reset clears raw content and metadata but leaves resolved data
	doc.ResetCaches(CacheRead)
	if _, err := doc.ResolveData(ctx, nil); err != nil {
		t.Fatalf("ResolveData: %v", err)
	}
	if reader.reads != readsAfterResolve {
		t.Error("resolved data should survive a read-only reset")
	}
	if _, err := doc.Metadata(ctx); err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if reader.reads != readsAfterResolve+1 {
		t.Errorf("read reset should force a re-read, reads = %d", reader.reads)
	}

	// no-argument reset clears everything
	renderResets := 0
	doc.OnRenderReset(func() { renderResets++ })
	doc.ResetCaches()
	if _, err := doc.ResolveData(ctx, nil); err != nil {
		t.Fatalf("ResolveData: %v", err)
	}
	if reader.reads != readsAfterResolve+2 {
		t.Errorf("full reset should force a re-read, reads = %d", reader.reads)
	}
	if renderResets != 1 {
		t.Errorf("render reset hook ran %d times, want 1", renderResets)
	}
}

func TestIsRelevantTo(t *testing.T) {
	eng := &stubEngine{deps: map[string][]string{
		"post.md": {"_includes/layout.html"},
	}}

	known := New(Options{Path: "post.md", Engine: eng})
	unknown := New(Options{Path: "page.md", Engine: eng})

	tests := []struct {
		name           string
		doc            *Document
		changed        string
		isFullTemplate bool
		want           bool
	}{
		{"direct dependency", known, "_includes/layout.html", false, true},
		{"unrelated file", known, "_includes/other.html", false, false},
		{"unknown deps assume relevant", unknown, "_includes/anything.html", false, true},
		{"unknown deps but changed is full template", unknown, "other-post.md", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.IsRelevantTo(tt.changed, tt.isFullTemplate); got != tt.want {
				t.Errorf("IsRelevantTo(%q, %v) = %v, want %v", tt.changed, tt.isFullTemplate, got, tt.want)
			}
		})
	}
}

func TestRenderableOverride(t *testing.T) {
	doc := New(Options{Path: "post.md", Engine: &stubEngine{}})

	if doc.RenderableState() != Render {
		t.Error("default renderable state should be Render")
	}

	doc.SetRenderable(Optional)
	if !doc.IsRenderableOptional() || doc.IsRenderableDisabled() {
		t.Error("Optional state predicates wrong")
	}

	doc.SetRenderable(Skip)
	if !doc.IsRenderableDisabled() || doc.IsRenderableOptional() {
		t.Error("Skip state predicates wrong")
	}

	doc.SetRenderable(Render)
	if doc.IsRenderableDisabled() || doc.IsRenderableOptional() {
		t.Error("Render state predicates wrong")
	}
}

// countingCacheHooks counts content cache events.
type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits   int
	misses int
	sets   int
}

func (h *countingCacheHooks) OnCacheHit(ctx context.Context, keyType string)       { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(ctx context.Context, keyType string)      { h.misses++ }
func (h *countingCacheHooks) OnCacheSet(ctx context.Context, keyType string, n int) { h.sets++ }

func TestRawContentEmitsCacheHooks(t *testing.T) {
	rec := &countingCacheHooks{}
	observability.SetCacheHooks(rec)
	defer observability.Reset()

	doc, _ := newTestDocument(t, "post.md", map[string]string{"post.md": "body"})
	ctx := context.Background()

	if _, err := doc.RawContent(ctx); err != nil {
		t.Fatalf("RawContent error: %v", err)
	}
	if _, err := doc.RawContent(ctx); err != nil {
		t.Fatalf("RawContent error: %v", err)
	}

	if rec.misses != 1 || rec.sets != 1 || rec.hits != 1 {
		t.Errorf("hooks = %d misses, %d sets, %d hits; want 1 of each",
			rec.misses, rec.sets, rec.hits)
	}
}
