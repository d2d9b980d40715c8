// Package document implements the per-document descriptor: lazy content
// reading, metadata parsing, data resolution, compiled render functions,
// and the renderable override consulted by the incremental scheduler.
//
// Every expensive step is memoized. Memos are dropped selectively by kind
// (data, read, render) so incremental builds invalidate exactly what a
// change requires and nothing more.
package document

import (
	"context"
	"sync"

	"github.com/boycaught/eleventy/pkg/cache"
	"github.com/boycaught/eleventy/pkg/engine"
	"github.com/boycaught/eleventy/pkg/metadata"
	"github.com/boycaught/eleventy/pkg/observability"
)

// CacheKind selects which per-document memos ResetCaches drops.
type CacheKind string

const (
	// CacheData covers resolved/merged data.
	CacheData CacheKind = "data"

	// CacheRead covers raw content and parsed metadata.
	CacheRead CacheKind = "read"

	// CacheRender covers cached render output, owned by the map entry.
	CacheRender CacheKind = "render"
)

// ReservedKeys are stripped from resolved data: they are populated by the
// build core itself and user metadata must not shadow them.
var ReservedKeys = []string{"collections", "content"}

// CollectionLookup reads a named collection during data resolution.
// The template map supplies an instrumented implementation that records
// every collection name looked up, which is how collection reads are
// discovered without static analysis of template text.
type CollectionLookup func(name string) []map[string]any

// DataResolver supplies computed and global data merged into each
// document's resolved data. Invoked once per ResolveData.
type DataResolver interface {
	Resolve(ctx context.Context, doc *Document, collections CollectionLookup) (map[string]any, error)
}

// DataResolverFunc adapts a function to the DataResolver interface.
type DataResolverFunc func(ctx context.Context, doc *Document, collections CollectionLookup) (map[string]any, error)

// Resolve calls f.
func (f DataResolverFunc) Resolve(ctx context.Context, doc *Document, collections CollectionLookup) (map[string]any, error) {
	return f(ctx, doc, collections)
}

// Options configures a Document.
type Options struct {
	// Path is the document's identity: its input path.
	Path string

	// Engine owns the document's template syntax.
	Engine engine.Engine

	// Reader supplies raw content. Unused for virtual documents.
	Reader engine.Reader

	// Parser splits front matter from content.
	Parser metadata.Parser

	// Contents caches raw content across documents. Optional.
	Contents *cache.ContentCache

	// Compiles caches compiled render functions. Optional.
	Compiles *cache.CompileCache

	// ConfigID is the owning configuration instance's unique ID,
	// embedded in compile cache keys.
	ConfigID string

	// Resolver supplies computed/global data. Optional.
	Resolver DataResolver

	// Virtual marks a synthetic document not backed by a file; its data
	// comes from InlineData and its content from InlineContent.
	Virtual bool

	// InlineData is the declared data for virtual documents.
	InlineData map[string]any

	// InlineContent is the template content for virtual documents.
	InlineContent string
}

// Document wraps one source file (or virtual document) and lazily produces
// its parsed metadata, merged data, and compiled render function.
type Document struct {
	opts Options

	mu         sync.Mutex
	meta       *metadata.Result
	metaErr    error
	metaDone   bool
	data       map[string]any
	dataErr    error
	dataFlight chan struct{} // non-nil while a resolve is in flight

	renderable      Renderable
	renderResetHook func()
}

// New creates a document descriptor.
func New(opts Options) *Document {
	return &Document{opts: opts}
}

// Path returns the document's input path.
func (d *Document) Path() string { return d.opts.Path }

// Engine returns the owning engine.
func (d *Document) Engine() engine.Engine { return d.opts.Engine }

// IsVirtual reports whether the document is synthetic.
func (d *Document) IsVirtual() bool { return d.opts.Virtual }

// RawContent returns the document's source content, consulting the shared
// content cache first. Virtual documents return their inline content.
func (d *Document) RawContent(ctx context.Context) (string, error) {
	if d.opts.Virtual {
		return d.opts.InlineContent, nil
	}
	if d.opts.Contents != nil {
		if content, ok := d.opts.Contents.Get(d.opts.Path); ok {
			observability.Cache().OnCacheHit(ctx, "content")
			return content, nil
		}
		observability.Cache().OnCacheMiss(ctx, "content")
	}
	content, err := d.opts.Reader.ReadContent(d.opts.Path)
	if err != nil {
		return "", err
	}
	if d.opts.Contents != nil {
		d.opts.Contents.Set(d.opts.Path, content)
		observability.Cache().OnCacheSet(ctx, "content", len(content))
	}
	return content, nil
}

// Metadata parses front matter from the raw content, memoized per
// instance. A malformed block surfaces as MetadataParseError.
func (d *Document) Metadata(ctx context.Context) (*metadata.Result, error) {
	d.mu.Lock()
	if d.metaDone {
		meta, err := d.meta, d.metaErr
		d.mu.Unlock()
		return meta, err
	}
	d.mu.Unlock()

	content, err := d.RawContent(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := d.opts.Parser.Parse(content, d.opts.Path)

	d.mu.Lock()
	d.meta, d.metaErr, d.metaDone = meta, err, true
	d.mu.Unlock()
	return meta, err
}

// ResolveData produces the document's merged data: parsed metadata,
// resolver-supplied computed/global data, and inline data for virtual
// documents, cleaned of reserved keys. The result is memoized; re-entrant
// calls while a resolve is in flight wait for and share that resolve.
func (d *Document) ResolveData(ctx context.Context, collections CollectionLookup) (map[string]any, error) {
	d.mu.Lock()
	if d.data != nil || d.dataErr != nil {
		data, err := d.data, d.dataErr
		d.mu.Unlock()
		return data, err
	}
	if d.dataFlight != nil {
		// Another call is resolving; wait for it.
		flight := d.dataFlight
		d.mu.Unlock()
		select {
		case <-flight:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		d.mu.Lock()
		data, err := d.data, d.dataErr
		d.mu.Unlock()
		return data, err
	}
	flight := make(chan struct{})
	d.dataFlight = flight
	d.mu.Unlock()

	data, err := d.resolveData(ctx, collections)

	d.mu.Lock()
	d.data, d.dataErr = data, err
	d.dataFlight = nil
	close(flight)
	d.mu.Unlock()
	return data, err
}

func (d *Document) resolveData(ctx context.Context, collections CollectionLookup) (map[string]any, error) {
	merged := make(map[string]any)

	if !d.opts.Virtual {
		meta, err := d.Metadata(ctx)
		if err != nil {
			return nil, err
		}
		for k, v := range meta.Data {
			merged[k] = v
		}
	}

	if d.opts.Resolver != nil {
		resolved, err := d.opts.Resolver.Resolve(ctx, d, collections)
		if err != nil {
			return nil, err
		}
		for k, v := range resolved {
			merged[k] = v
		}
	}

	for k, v := range d.opts.InlineData {
		merged[k] = v
	}

	for _, key := range ReservedKeys {
		delete(merged, key)
	}
	return merged, nil
}

// CompiledFunc returns the document's renderable function, consulting the
// shared compile cache when the engine reports the content cache-eligible.
func (d *Document) CompiledFunc(ctx context.Context) (engine.RenderFunc, error) {
	content, err := d.RawContent(ctx)
	if err != nil {
		return nil, err
	}
	if d.opts.Parser != nil && !d.opts.Virtual {
		// Compile the body, not the front matter block.
		meta, err := d.Metadata(ctx)
		if err != nil {
			return nil, err
		}
		content = meta.Content
	}

	eng := d.opts.Engine
	if !eng.NeedsCompilation(content) {
		return func(ctx context.Context, data map[string]any) (string, error) {
			return content, nil
		}, nil
	}

	key := eng.CompileCacheKey(content, d.opts.Path)
	if !key.UseCache || d.opts.Compiles == nil {
		return eng.Compile(ctx, content, d.opts.Path)
	}
	return d.opts.Compiles.Compile(ctx, d.opts.Path, cache.Key(key.Key, d.opts.ConfigID), func() (engine.RenderFunc, error) {
		return eng.Compile(ctx, content, d.opts.Path)
	})
}

// ResetCaches drops the memos for the given kinds. With no arguments all
// three kinds are dropped. CacheRead clears raw content and parsed
// metadata, CacheData clears resolved data, CacheRender signals the owning
// map entry to drop cached render output.
func (d *Document) ResetCaches(kinds ...CacheKind) {
	if len(kinds) == 0 {
		kinds = []CacheKind{CacheData, CacheRead, CacheRender}
	}
	for _, kind := range kinds {
		switch kind {
		case CacheRead:
			if d.opts.Contents != nil {
				d.opts.Contents.Invalidate(d.opts.Path)
			}
			d.mu.Lock()
			d.meta, d.metaErr, d.metaDone = nil, nil, false
			d.mu.Unlock()
		case CacheData:
			d.mu.Lock()
			d.data, d.dataErr = nil, nil
			d.mu.Unlock()
		case CacheRender:
			if d.renderResetHook != nil {
				d.renderResetHook()
			}
		}
	}
}

// OnRenderReset registers the hook invoked when render caches are reset.
// The owning map entry uses it to drop cached render output.
func (d *Document) OnRenderReset(hook func()) {
	d.renderResetHook = hook
}

// IsRelevantTo reports whether the document depends on changedPath. When
// the engine has no dependency information for this document, the check is
// deliberately conservative: anything that is not itself a known
// full-document file is assumed relevant, because under-rendering silently
// produces stale output.
func (d *Document) IsRelevantTo(changedPath string, changedIsFullTemplate bool) bool {
	eng := d.opts.Engine
	if eng.HasDependencies(d.opts.Path) {
		return eng.IsFileRelevantTo(d.opts.Path, changedPath)
	}
	return !changedIsFullTemplate
}

// RenderableState returns the current renderable override.
func (d *Document) RenderableState() Renderable {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renderable
}

// SetRenderable sets the renderable override. Setting Render unsets any
// previous override.
func (d *Document) SetRenderable(r Renderable) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renderable = r
}

// IsRenderableDisabled reports whether the document is skipped entirely.
func (d *Document) IsRenderableDisabled() bool {
	return d.RenderableState() == Skip
}

// IsRenderableOptional reports whether the document renders only on demand.
func (d *Document) IsRenderableOptional() bool {
	return d.RenderableState() == Optional
}
