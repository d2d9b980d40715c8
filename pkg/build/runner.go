package build

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/boycaught/eleventy/pkg/cache"
	"github.com/boycaught/eleventy/pkg/document"
	"github.com/boycaught/eleventy/pkg/errors"
	"github.com/boycaught/eleventy/pkg/events"
	"github.com/boycaught/eleventy/pkg/observability"
	"github.com/boycaught/eleventy/pkg/templatemap"
	"github.com/boycaught/eleventy/pkg/usesgraph"
)

// Runner executes build passes. It owns the process-wide state that
// outlives a single pass: the global uses graph, the persistent store
// for snapshots, and the event bus that invalidation signals travel on.
//
// The Runner is safe to reuse across passes; incremental builds depend
// on the uses graph accumulated by earlier ones.
type Runner struct {
	Store  cache.Cache
	Keyer  cache.Keyer
	Bus    *events.Bus
	Uses   *usesgraph.Graph
	Logger *log.Logger

	// Compiles is consulted for CacheInfo reporting only; documents carry
	// their own reference. Optional.
	Compiles *cache.CompileCache
}

// NewRunner creates a runner with the given persistent store and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If store is nil, a NullCache is used (snapshot persistence disabled).
// If bus is nil, a fresh event bus is created.
func NewRunner(store cache.Cache, keyer cache.Keyer, bus *events.Bus, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if store == nil {
		store = cache.NewNullCache()
	}
	if bus == nil {
		bus = events.NewBus()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  store,
		Keyer:  keyer,
		Bus:    bus,
		Uses:   usesgraph.New(),
		Logger: logger,
	}
}

// Execute runs one complete build pass: add every document to a fresh
// template map, compute the order, schedule entries against the changed
// file (if any), and render.
//
// Document-level failures do not abort the pass; they are collected and
// returned as a single BuildError naming every offending path, alongside
// the Result for the documents that succeeded.
func (r *Runner) Execute(ctx context.Context, docs []*document.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}

	if opts.IsIncremental() {
		// Invalidate content and compiled-function caches for the
		// changed path before any entry resolves data.
		r.Bus.EmitResourceModified(opts.ChangedPath)
		for _, doc := range docs {
			if doc.Path() == opts.ChangedPath {
				doc.ResetCaches(document.CacheRead, document.CacheData)
			}
		}
	}

	buildErr := errors.NewBuildError()
	m := templatemap.New(opts.Logger)
	for _, doc := range docs {
		if _, err := m.Add(ctx, doc); err != nil {
			buildErr.Add(doc.Path(), err)
			// Failed documents never become entries, so the end-of-pass
			// reset below skips them. Drop their memoized failure here so
			// the next pass re-reads the file instead of replaying it.
			doc.ResetCaches(document.CacheRead, document.CacheData)
		}
	}

	orderStart := time.Now()
	observability.Build().OnOrderingStart(ctx, m.Len())
	err := m.Cache(ctx)
	observability.Build().OnOrderingComplete(ctx, m.Len(), time.Since(orderStart), err)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Order:   m.TemplateOrder(),
		Outputs: make(map[string]string),
		States:  make(map[string]string),
	}
	result.Stats.OrderTime = time.Since(orderStart)

	r.schedule(ctx, m, opts, &result.Stats)

	renderStart := time.Now()
	r.renderAll(ctx, m, opts, result, buildErr)
	result.Stats.RenderTime = time.Since(renderStart)

	for _, e := range m.Entries() {
		result.States[e.Path()] = e.Document().RenderableState().String()
	}

	m.AddAllToGlobalGraph(r.Uses)

	// Resolved data is pass-scoped: collections rebuild every pass, so the
	// next add pass must re-resolve and re-track collection reads. Read
	// and compiled-function caches stay warm.
	for _, e := range m.Entries() {
		e.Document().ResetCaches(document.CacheData)
	}

	if r.Compiles != nil {
		result.CacheInfo.CompileEntries = r.Compiles.Len()
	}

	opts.Logger.Info("build pass complete",
		"entries", m.Len(),
		"written", result.Stats.WriteCount,
		"rendered", result.Stats.RenderCount,
		"skipped", result.Stats.SkippedCount,
		"failed", buildErr.Len())

	return result, buildErr.OrNil()
}

// LoadUses restores the uses graph from a persisted snapshot, replacing
// the current graph. A missing snapshot leaves an empty graph. Transient
// backend failures are retried with backoff.
func (r *Runner) LoadUses(ctx context.Context, project string) (bool, error) {
	var g *usesgraph.Graph
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		g, err = usesgraph.Load(ctx, r.Store, r.Keyer, project)
		return err
	})
	if err != nil {
		return false, err
	}
	r.Uses = g
	return g.Len() > 0, nil
}

// SaveUses persists the current uses graph for future processes.
// Transient backend failures are retried with backoff.
func (r *Runner) SaveUses(ctx context.Context, project string) error {
	return cache.RetryWithBackoff(ctx, func() error {
		return r.Uses.Save(ctx, r.Store, r.Keyer, project)
	})
}

// Close releases resources held by the runner (primarily the store).
func (r *Runner) Close() error {
	if r.Store != nil {
		return r.Store.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
