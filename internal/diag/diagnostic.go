package diag

import (
	"rill/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit is a single textual patch: replace Span with NewText.
// An empty Span (zero length) is an insertion.
type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a suggested source change attached to a diagnostic.
type Fix struct {
	Title string
	Edits []FixEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}
