package document

// Renderable is the tri-state override controlling whether an incremental
// pass renders a document. The zero value is Render: without an override a
// document always renders.
type Renderable int

const (
	// Render means the document is rendered in this pass.
	Render Renderable = iota

	// Optional means the document renders only if something else needs it,
	// e.g. to satisfy another document's collection read.
	Optional

	// Skip means the document is not rendered in this pass.
	Skip
)

// String returns the lowercase state name.
func (r Renderable) String() string {
	switch r {
	case Render:
		return "render"
	case Optional:
		return "optional"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}
