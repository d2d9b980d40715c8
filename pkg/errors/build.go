package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MetadataParseError reports a malformed metadata block in one document.
// It is local to that document and does not abort the build.
type MetadataParseError struct {
	Path  string // Input path of the offending document
	Cause error  // Underlying parse error
}

// Error implements the error interface.
func (e *MetadataParseError) Error() string {
	return fmt.Sprintf("parse metadata for %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying parse error.
func (e *MetadataParseError) Unwrap() error { return e.Cause }

// Code returns the error code for this error type.
func (e *MetadataParseError) Code() Code { return ErrCodeMetadataParse }

// CompileError reports template content that is invalid for its engine.
// The compile cache entry for the document is evicted on failure so a
// later call retries instead of replaying the failure.
type CompileError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying compile error.
func (e *CompileError) Unwrap() error { return e.Cause }

// Code returns the error code for this error type.
func (e *CompileError) Code() Code { return ErrCodeCompile }

// RenderError reports an exception raised during render-time evaluation
// of one document. It wraps the cause and names the document.
type RenderError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying render error.
func (e *RenderError) Unwrap() error { return e.Cause }

// Code returns the error code for this error type.
func (e *RenderError) Code() Code { return ErrCodeRender }

// PrematureDataAccessError marks a scheduling-order artifact rather than a
// real failure: a document's rendered content was referenced before its own
// render produced that content. Entries hitting this condition are rendered
// again in a single follow-up pass; a recurrence escalates to a hard
// template error.
type PrematureDataAccessError struct {
	Path     string // Document whose render observed missing content
	Accessed string // Document whose content was not yet available
}

// Error implements the error interface.
func (e *PrematureDataAccessError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("content of %s was read before it was rendered", e.Accessed)
	}
	return fmt.Sprintf("%s read content of %s before it was rendered", e.Path, e.Accessed)
}

// Code returns the error code for this error type.
func (e *PrematureDataAccessError) Code() Code { return ErrCodePrematureData }

// IsPrematureDataAccess reports whether err is a PrematureDataAccessError
// anywhere in its chain.
func IsPrematureDataAccess(err error) bool {
	var e *PrematureDataAccessError
	return errors.As(err, &e)
}

// BuildError aggregates document-level failures from one build pass.
// A single document's failure does not prevent siblings from completing;
// the pass collects every failure and reports them together, naming each
// offending path.
type BuildError struct {
	Failures map[string]error // input path -> failure
}

// NewBuildError creates an empty aggregate.
func NewBuildError() *BuildError {
	return &BuildError{Failures: make(map[string]error)}
}

// Add records a failure for path. Nil errors are ignored.
func (e *BuildError) Add(path string, err error) {
	if err == nil {
		return
	}
	e.Failures[path] = err
}

// Len returns the number of recorded failures.
func (e *BuildError) Len() int { return len(e.Failures) }

// Paths returns the failing input paths in sorted order.
func (e *BuildError) Paths() []string {
	paths := make([]string, 0, len(e.Failures))
	for p := range e.Failures {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// OrNil returns the aggregate if any failures were recorded, nil otherwise.
func (e *BuildError) OrNil() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface. The message names every failing
// path with its individual cause.
func (e *BuildError) Error() string {
	paths := e.Paths()
	if len(paths) == 1 {
		return fmt.Sprintf("build failed for %s: %v", paths[0], e.Failures[paths[0]])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "build failed for %d documents:", len(paths))
	for _, p := range paths {
		fmt.Fprintf(&b, "\n  %s: %v", p, e.Failures[p])
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is/As.
func (e *BuildError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, p := range e.Paths() {
		errs = append(errs, e.Failures[p])
	}
	return errs
}
