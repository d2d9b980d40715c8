package templatemap

import (
	"html/template"
	"sync"

	"github.com/boycaught/eleventy/pkg/document"
	"github.com/boycaught/eleventy/pkg/errors"
)

// MapEntry is the scheduling unit: one document plus the collection names
// it reads from and writes to, discovered during data resolution.
type MapEntry struct {
	doc  *document.Document
	seq  int
	data map[string]any

	reads  []string
	writes []string

	mu        sync.Mutex
	output    string
	outputSet bool
}

func newMapEntry(doc *document.Document, seq int) *MapEntry {
	e := &MapEntry{doc: doc, seq: seq}
	doc.OnRenderReset(e.clearOutput)
	return e
}

// Document returns the wrapped document descriptor.
func (e *MapEntry) Document() *document.Document { return e.doc }

// Path returns the document's input path.
func (e *MapEntry) Path() string { return e.doc.Path() }

// Sequence returns the entry's add order within the build.
func (e *MapEntry) Sequence() int { return e.seq }

// Data returns the document's resolved data as captured at add time.
func (e *MapEntry) Data() map[string]any { return e.data }

// Reads returns the collection names looked up while the entry's data was
// resolved, sorted.
func (e *MapEntry) Reads() []string {
	return append([]string(nil), e.reads...)
}

// Writes returns the named collections the entry contributes to, in
// declaration order. The implicit "all" collection is not listed.
func (e *MapEntry) Writes() []string {
	return append([]string(nil), e.writes...)
}

// ReadsCollection reports whether the entry read the given collection
// during data resolution.
func (e *MapEntry) ReadsCollection(name string) bool {
	for _, r := range e.reads {
		if r == name {
			return true
		}
	}
	return false
}

// WritesCollection reports whether the entry declares the given named
// collection.
func (e *MapEntry) WritesCollection(name string) bool {
	for _, w := range e.writes {
		if w == name {
			return true
		}
	}
	return false
}

// SetOutput records the entry's rendered output, making it available to
// collection readers.
func (e *MapEntry) SetOutput(out string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.output = out
	e.outputSet = true
}

// Output returns the rendered output and whether it has been produced.
func (e *MapEntry) Output() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.output, e.outputSet
}

func (e *MapEntry) clearOutput() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.output = ""
	e.outputSet = false
}

// collectionItem builds the object appended to every collection the entry
// writes to. Content is a handle, not a string: reading it before the
// entry has rendered is a premature-access condition.
func (e *MapEntry) collectionItem() map[string]any {
	return map[string]any{
		"page":    e.Path(),
		"data":    e.data,
		"content": Content{entry: e},
	}
}

// Content is a read handle on an entry's rendered output, stored in
// collection items. Template code reaches it through the item's "content"
// key.
type Content struct {
	entry *MapEntry
}

// HTML returns the rendered output. If the owning entry has not rendered
// yet the call fails with a PrematureDataAccessError, which the render
// scheduler treats as retryable.
func (c Content) HTML() (template.HTML, error) {
	out, ok := c.entry.Output()
	if !ok {
		return "", &errors.PrematureDataAccessError{Accessed: c.entry.Path()}
	}
	return template.HTML(out), nil
}

// Path returns the owning entry's input path.
func (c Content) Path() string { return c.entry.Path() }
