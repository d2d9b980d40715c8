package build

import (
	"context"

	"github.com/boycaught/eleventy/pkg/document"
	"github.com/boycaught/eleventy/pkg/observability"
	"github.com/boycaught/eleventy/pkg/templatemap"
)

// schedule assigns every entry its renderable state for this pass and
// applies the per-state cache reset policy.
//
// Full builds mark everything render. Incremental builds classify each
// entry against the changed file: the changed entry itself renders, direct
// dependents render, entries the changed file reads become optional, and
// everything else skips. Skipped entries reachable from the render set
// through the uses graph are then upgraded to optional: they may have to
// re-render to satisfy a collection read, even with no direct relation to
// the changed file.
func (r *Runner) schedule(ctx context.Context, m *templatemap.Map, opts Options, stats *Stats) {
	entries := m.Entries()

	if opts.IgnoreInitialBuild {
		for _, e := range entries {
			e.Document().SetRenderable(document.Skip)
			stats.SkippedCount++
			observability.Build().OnScheduled(ctx, e.Path(), document.Skip.String())
		}
		return
	}

	if !opts.IsIncremental() {
		for _, e := range entries {
			e.Document().SetRenderable(document.Render)
		}
		return
	}

	changed := opts.ChangedPath
	_, changedIsEntry := m.Entry(changed)

	firstOrder := []string{changed}
	for _, e := range entries {
		doc := e.Document()
		switch {
		case e.Path() == changed:
			// Read and data caches were already cleared before the add
			// pass resolved its data.
			doc.SetRenderable(document.Render)
		case doc.IsRelevantTo(changed, changedIsEntry):
			doc.SetRenderable(document.Render)
			firstOrder = append(firstOrder, e.Path())
		case r.Uses.Uses(changed, e.Path()):
			doc.SetRenderable(document.Optional)
		default:
			doc.SetRenderable(document.Skip)
		}
	}

	// Second-order propagation: anything transitively depending on the
	// render set may feed a collection that set reads.
	closure := r.Uses.ReverseClosure(firstOrder...)
	for _, e := range entries {
		if e.Document().RenderableState() != document.Skip {
			continue
		}
		if _, ok := closure[e.Path()]; ok {
			e.Document().SetRenderable(document.Optional)
		}
	}

	for _, e := range entries {
		doc := e.Document()
		state := doc.RenderableState()
		switch state {
		case document.Render:
			if e.Path() != changed {
				// The changed entry already took a full reset.
				doc.ResetCaches(document.CacheData, document.CacheRender)
			}
		case document.Optional, document.Skip:
			doc.ResetCaches(document.CacheData)
		}
		if state == document.Skip {
			stats.SkippedCount++
		}
		if state == document.Optional {
			stats.OptionalCount++
		}
		observability.Build().OnScheduled(ctx, e.Path(), state.String())
	}
}
