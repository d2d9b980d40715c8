// Package markdown provides the goldmark-backed markdown engine.
package markdown

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/yuin/goldmark"
	gmext "github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"

	"github.com/boycaught/eleventy/pkg/engine"
	"github.com/boycaught/eleventy/pkg/errors"
)

// Engine converts markdown content to HTML. Markdown has no template
// constructs of its own, so every compile is cache-eligible and data is
// ignored at render time. Layout and include dependencies are registered
// externally (the discovery layer knows them, not the markdown syntax).
type Engine struct {
	md goldmark.Markdown

	mu   sync.RWMutex
	deps map[string][]string // path -> files it depends on (layouts etc.)
}

// New creates a markdown engine with GFM extensions and auto heading IDs.
func New() *Engine {
	return &Engine{
		md: goldmark.New(
			goldmark.WithExtensions(gmext.GFM),
			goldmark.WithParserOptions(gmparser.WithAutoHeadingID()),
		),
		deps: make(map[string][]string),
	}
}

// Name identifies the engine.
func (e *Engine) Name() string { return "md" }

// Compile converts the markdown to HTML once; the returned function
// replays the result.
func (e *Engine) Compile(ctx context.Context, content, path string) (engine.RenderFunc, error) {
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(content), &buf); err != nil {
		return nil, &errors.CompileError{Path: path, Cause: err}
	}
	html := buf.String()
	return func(ctx context.Context, data map[string]any) (string, error) {
		return html, nil
	}, nil
}

// NeedsCompilation always reports true: markdown is converted to HTML.
func (e *Engine) NeedsCompilation(content string) bool { return true }

// CompileCacheKey hashes the content; markdown compiles are always
// cache-eligible.
func (e *Engine) CompileCacheKey(content, path string) engine.CacheKey {
	sum := sha256.Sum256([]byte(content))
	return engine.CacheKey{UseCache: true, Key: hex.EncodeToString(sum[:])}
}

// RegisterDependencies records the files path depends on, typically its
// layout chain discovered from front matter.
func (e *Engine) RegisterDependencies(path string, deps []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deps[path] = append([]string(nil), deps...)
}

// IsFileRelevantTo reports whether path registered changedPath as a
// dependency.
func (e *Engine) IsFileRelevantTo(path, changedPath string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, dep := range e.deps[path] {
		if dep == changedPath {
			return true
		}
	}
	return false
}

// HasDependencies reports whether dependency information was registered
// for path.
func (e *Engine) HasDependencies(path string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.deps[path]
	return ok
}

// Ensure Engine implements the collaborator contract.
var _ engine.Engine = (*Engine)(nil)
