// Package gotmpl provides the html/template-backed template engine.
package gotmpl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"html/template"
	"regexp"
	"strings"
	"sync"

	"github.com/boycaught/eleventy/pkg/engine"
	"github.com/boycaught/eleventy/pkg/errors"
)

// templateRef matches {{template "name" ...}} invocations so partial
// dependencies can be recorded at compile time.
var templateRef = regexp.MustCompile(`\{\{-?\s*template\s+"([^"]+)"`)

// Engine compiles Go html/template content. Partials are registered by
// name; a document depends on every partial it references, which feeds the
// incremental relevance checks.
type Engine struct {
	mu       sync.RWMutex
	partials map[string]string   // partial name -> content
	deps     map[string][]string // path -> referenced partial names
}

// New creates a template engine with no partials registered.
func New() *Engine {
	return &Engine{
		partials: make(map[string]string),
		deps:     make(map[string][]string),
	}
}

// Name identifies the engine.
func (e *Engine) Name() string { return "gotmpl" }

// RegisterPartial makes a named partial available to compiled templates.
// The name doubles as the partial's path for relevance checks.
func (e *Engine) RegisterPartial(name, content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.partials[name] = content
}

// Compile parses the content plus every referenced partial. The returned
// function executes the template against resolved document data.
func (e *Engine) Compile(ctx context.Context, content, path string) (engine.RenderFunc, error) {
	refs := e.references(content)

	tmpl := template.New(path)
	e.mu.RLock()
	for _, name := range refs {
		partial, ok := e.partials[name]
		if !ok {
			continue // missing partials fail at execution with a clear error
		}
		if _, err := tmpl.New(name).Parse(partial); err != nil {
			e.mu.RUnlock()
			return nil, &errors.CompileError{Path: path, Cause: err}
		}
	}
	e.mu.RUnlock()

	tmpl, err := tmpl.Parse(content)
	if err != nil {
		return nil, &errors.CompileError{Path: path, Cause: err}
	}

	e.mu.Lock()
	e.deps[path] = refs
	e.mu.Unlock()

	return func(ctx context.Context, data map[string]any) (string, error) {
		var b strings.Builder
		if err := tmpl.Execute(&b, data); err != nil {
			return "", err
		}
		return b.String(), nil
	}, nil
}

// NeedsCompilation reports whether the content contains template actions.
func (e *Engine) NeedsCompilation(content string) bool {
	return strings.Contains(content, "{{")
}

// CompileCacheKey hashes the content. Templates referencing partials stay
// cache-eligible; partial edits invalidate through the event bus instead.
func (e *Engine) CompileCacheKey(content, path string) engine.CacheKey {
	sum := sha256.Sum256([]byte(content))
	return engine.CacheKey{UseCache: true, Key: hex.EncodeToString(sum[:])}
}

// IsFileRelevantTo reports whether path references changedPath as a
// partial.
func (e *Engine) IsFileRelevantTo(path, changedPath string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, name := range e.deps[path] {
		if name == changedPath {
			return true
		}
	}
	return false
}

// HasDependencies reports whether path has been compiled, and therefore
// its partial references are known.
func (e *Engine) HasDependencies(path string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.deps[path]
	return ok
}

// references extracts the partial names referenced by content, in order,
// without duplicates.
func (e *Engine) references(content string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, m := range templateRef.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			refs = append(refs, m[1])
		}
	}
	return refs
}

// Ensure Engine implements the collaborator contract.
var _ engine.Engine = (*Engine)(nil)
