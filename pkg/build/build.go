// Package build runs full and incremental site builds.
//
// This package implements the complete add → order → schedule → render
// cycle that can be driven by the CLI or by tests. By centralizing this
// logic, we ensure consistent behavior across all entry points.
//
// # Architecture
//
// A build consists of four stages:
//
//  1. Add: register every document in a template map, resolving data
//  2. Order: compute the collection-respecting render order
//  3. Schedule: classify each entry as render, optional, or skip
//  4. Render: execute render functions in order, populating output
//
// Full builds render everything; incremental builds consult the global
// uses graph to render only what a changed file can affect.
//
// # Usage
//
// Create a Runner and execute a build:
//
//	runner := build.NewRunner(store, nil, bus, logger)
//	result, err := runner.Execute(ctx, docs, build.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for path, out := range result.Outputs {
//	    // write out to disk
//	}
package build

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures one build pass.
type Options struct {
	// ChangedPath is the single file that changed since the last build.
	// Empty means a full build: every entry renders.
	ChangedPath string

	// IgnoreInitialBuild forces every entry to skip, rendering nothing.
	// Used to warm caches and record the uses graph without output.
	IgnoreInitialBuild bool

	// Project scopes uses-graph snapshot keys in the persistent cache.
	Project string

	// Logger receives build progress. Defaults to a discard logger.
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Project == "" {
		o.Project = "default"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// IsIncremental reports whether this pass is driven by a changed file.
func (o *Options) IsIncremental() bool {
	return o.ChangedPath != ""
}

// Stats contains build execution statistics.
type Stats struct {
	// WriteCount is the number of entries whose output the writer should
	// persist.
	WriteCount int

	// RenderCount is the number of render executions, including optional
	// renders and the premature-access retry pass.
	RenderCount int

	// SkippedCount is the number of entries the scheduler skipped.
	SkippedCount int

	// OptionalCount is the number of entries rendered on demand only.
	OptionalCount int

	OrderTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo reports cache state after a build pass.
type CacheInfo struct {
	// UsesSnapshotHit is set when a persisted uses-graph snapshot was
	// restored before the pass.
	UsesSnapshotHit bool

	// CompileEntries is the number of compiled functions cached.
	CompileEntries int
}

// Result contains the outputs of a build pass.
type Result struct {
	// Order is the computed template order, entry paths interleaved with
	// collection markers.
	Order []string

	// Outputs maps each written entry's input path to its rendered
	// output. Optional and skipped entries do not appear.
	Outputs map[string]string

	// States maps every entry's input path to its final renderable state.
	States map[string]string

	// Stats contains counters and timing.
	Stats Stats

	// CacheInfo tracks cache state.
	CacheInfo CacheInfo
}
