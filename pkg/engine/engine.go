// Package engine defines the template-engine collaborator contract.
//
// The build core never parses template syntax itself. Each document is
// owned by an Engine that compiles its content into a renderable function
// and answers dependency questions about it. Concrete engines live in
// subpackages (markdown, gotmpl); anything satisfying Engine can
// participate in a build.
package engine

import "context"

// RenderFunc is a compiled template: given resolved document data it
// produces the rendered output string.
type RenderFunc func(ctx context.Context, data map[string]any) (string, error)

// CacheKey describes whether and how a compile result may be cached.
// Engines that compile per-render state (e.g. closures over mutable
// globals) return UseCache=false to opt out.
type CacheKey struct {
	// UseCache reports whether the compile result is cache-eligible.
	UseCache bool

	// Key identifies the compile result. Engines typically derive it
	// from the content; the cache layer combines it with the owning
	// configuration instance ID.
	Key string
}

// Engine compiles template content and answers dependency questions for
// the documents it owns.
type Engine interface {
	// Name identifies the engine (e.g. "md", "gotmpl").
	Name() string

	// Compile turns template content into a renderable function.
	// Compile failures surface as CompileError at the call site.
	Compile(ctx context.Context, content, path string) (RenderFunc, error)

	// NeedsCompilation reports whether the content requires compiling at
	// all. Content without template constructs can be passed through.
	NeedsCompilation(content string) bool

	// CompileCacheKey reports cache eligibility and the cache key for
	// the given content.
	CompileCacheKey(content, path string) CacheKey

	// IsFileRelevantTo reports whether the document at path depends on
	// changedPath (e.g. includes it as a layout or partial).
	IsFileRelevantTo(path, changedPath string) bool

	// HasDependencies reports whether dependency information is known
	// for the document at path. When false, relevance decisions fall
	// back to a conservative assume-relevant policy.
	HasDependencies(path string) bool
}

// Reader supplies raw document content. Implementations must be
// idempotent and side-effect-free; the core caches results.
type Reader interface {
	ReadContent(path string) (string, error)
}
