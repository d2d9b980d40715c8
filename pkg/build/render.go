package build

import (
	"context"
	"time"

	"github.com/boycaught/eleventy/pkg/errors"
	"github.com/boycaught/eleventy/pkg/observability"
	"github.com/boycaught/eleventy/pkg/templatemap"
)

// renderAll walks the entries in computed order and renders each one
// according to its scheduled state. Skipped entries produce nothing;
// optional entries render so their content is available to collection
// readers, but are not written. A failure in one entry is recorded and
// does not stop the walk.
//
// Entries whose render tripped a premature content read are retried once
// after the main pass: by then every sibling that could render has, so
// the read usually succeeds. A second premature read is a real ordering
// defect and escalates to a template error.
func (r *Runner) renderAll(ctx context.Context, m *templatemap.Map, opts Options, result *Result, buildErr *errors.BuildError) {
	var retry []*templatemap.MapEntry

	for _, e := range m.OrderedEntries() {
		doc := e.Document()
		if doc.IsRenderableDisabled() {
			continue
		}

		out, err := r.renderEntry(ctx, m, e, &result.Stats)
		if err != nil {
			if errors.IsPrematureDataAccess(err) {
				retry = append(retry, e)
				continue
			}
			buildErr.Add(e.Path(), err)
			continue
		}

		e.SetOutput(out)
		if !doc.IsRenderableOptional() {
			result.Outputs[e.Path()] = out
			result.Stats.WriteCount++
		}
	}

	for _, e := range retry {
		out, err := r.renderEntry(ctx, m, e, &result.Stats)
		if err != nil {
			if errors.IsPrematureDataAccess(err) {
				err = errors.Wrap(errors.ErrCodeTemplate, err,
					"content of a dependency is unavailable even after retry")
			}
			buildErr.Add(e.Path(), err)
			continue
		}
		e.SetOutput(out)
		if !e.Document().IsRenderableOptional() {
			result.Outputs[e.Path()] = out
			result.Stats.WriteCount++
		}
	}
}

// renderEntry compiles and executes one entry's render function.
func (r *Runner) renderEntry(ctx context.Context, m *templatemap.Map, e *templatemap.MapEntry, stats *Stats) (string, error) {
	start := time.Now()
	observability.Build().OnRenderStart(ctx, e.Path())

	out, err := r.renderOnce(ctx, m, e)
	stats.RenderCount++

	observability.Build().OnRenderComplete(ctx, e.Path(), time.Since(start), err)
	return out, err
}

func (r *Runner) renderOnce(ctx context.Context, m *templatemap.Map, e *templatemap.MapEntry) (string, error) {
	fn, err := e.Document().CompiledFunc(ctx)
	if err != nil {
		var compile *errors.CompileError
		if errors.As(err, &compile) {
			return "", err
		}
		return "", &errors.CompileError{Path: e.Path(), Cause: err}
	}

	out, err := fn(ctx, r.renderData(m, e))
	if err != nil {
		var premature *errors.PrematureDataAccessError
		if errors.As(err, &premature) {
			premature.Path = e.Path()
			return "", premature
		}
		return "", &errors.RenderError{Path: e.Path(), Cause: err}
	}
	return out, nil
}

// renderData builds the data map passed to an entry's render function:
// the entry's resolved data plus the live collections. The "[keys]"
// collection is exposed as "keys" because brackets are not addressable in
// template syntax.
func (r *Runner) renderData(m *templatemap.Map, e *templatemap.MapEntry) map[string]any {
	resolved := e.Data()
	data := make(map[string]any, len(resolved)+1)
	for k, v := range resolved {
		data[k] = v
	}

	set := m.Collections()
	collections := make(map[string]any)
	for _, name := range set.Names() {
		collections[name] = set.Items(name)
	}
	collections["all"] = set.Items(templatemap.CollectionAll)
	collections["keys"] = set.Items(templatemap.CollectionKeys)
	data["collections"] = collections
	return data
}
