// Package pkg provides the core libraries for the eleventy static site builder.
//
// # Overview
//
// Eleventy turns a directory of templates into a rendered site. Templates
// declare the collections they belong to in front matter and read other
// collections while rendering, so the build has to order templates such
// that every collection is complete before anything reads it. The pkg
// directory is organized around that pipeline:
//
//  1. [document] - Template files (front matter, content, render state)
//  2. [templatemap] - Per-build collection graph and render order
//  3. [build] - Orchestration (add, order, schedule, render)
//  4. [usesgraph] - Persistent cross-build dependency graph
//  5. [cache] - Content, compile, and snapshot caches
//
// # Architecture
//
// The typical data flow through a build:
//
//	Input Directory
//	         ↓
//	    [document] package (parse front matter, resolve data)
//	         ↓
//	    [templatemap] package (collection graph + stable topological order)
//	         ↓
//	    [build] package (schedule + render, full or incremental)
//	         ↓
//	    HTML output + [usesgraph] snapshot
//
// # Quick Start
//
// Build a handful of documents and read the outputs:
//
//	import (
//	    "context"
//	    "github.com/boycaught/eleventy/pkg/build"
//	    "github.com/boycaught/eleventy/pkg/cache"
//	    "github.com/boycaught/eleventy/pkg/document"
//	    "github.com/boycaught/eleventy/pkg/events"
//	)
//
//	// 1. Create a runner
//	store, _ := cache.NewFileCache(".cache")
//	runner := build.NewRunner(store, cache.NewDefaultKeyer(), events.NewBus(), nil)
//
//	// 2. Create documents
//	doc := document.New(document.Options{
//	    Path:   "posts/hello.md",
//	    Engine: md,
//	    Parser: parser,
//	    Reader: reader,
//	})
//
//	// 3. Execute a full build
//	result, _ := runner.Execute(context.Background(),
//	    []*document.Document{doc}, build.Options{})
//
//	// 4. Rebuild incrementally after a change
//	result, _ = runner.Execute(context.Background(),
//	    []*document.Document{doc}, build.Options{ChangedPath: "posts/hello.md"})
//
// # Main Packages
//
// ## Core Domain Logic
//
// [document] - A template file with lazily cached read, data, compile, and
// render stages, plus per-stage invalidation and renderable states (render,
// optional, skip).
//
// [templatemap] - The per-build map from documents to collection reads and
// writes. Computes a deterministic render order via [depgraph] and exposes
// collection items to templates.
//
// [build] - The build runner. Schedules each entry for a full or incremental
// pass, renders in order, retries premature content reads, and aggregates
// per-template failures without aborting the pass.
//
// [depgraph] - Minimal dependency graph with a stable topological sort.
// Ties break on insertion sequence so the order never depends on map
// iteration.
//
// [usesgraph] - Template-to-collection dependency graph persisted between
// builds. Answers "which templates could a change affect" for incremental
// scheduling, and renders to DOT or SVG for inspection.
//
// ## Infrastructure
//
// [cache] - Content and compile caches plus pluggable snapshot stores:
// FileCache for the CLI, RedisCache and MongoCache for shared environments,
// NullCache for tests.
//
// [config] - TOML project configuration (input, output, includes, cache
// backend).
//
// [events] - In-process event bus used for cache invalidation on resource
// changes.
//
// [engine] - Render engines: [engine/markdown] (goldmark) and
// [engine/gotmpl] (html/template with partials).
//
// [metadata] - Front matter parsing and data cascade merging.
//
// [errors] - Coded build errors, per-template aggregation, and user-facing
// messages.
//
// [observability] - Build and cache hook registries for progress reporting.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/templatemap/...  # Specific package
//
// [document]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/document
// [templatemap]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/templatemap
// [build]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/build
// [depgraph]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/depgraph
// [usesgraph]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/usesgraph
// [cache]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/cache
// [config]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/config
// [events]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/events
// [engine]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/engine
// [engine/markdown]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/engine/markdown
// [engine/gotmpl]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/engine/gotmpl
// [metadata]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/metadata
// [errors]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/errors
// [observability]: https://pkg.go.dev/github.com/boycaught/eleventy/pkg/observability
package pkg
