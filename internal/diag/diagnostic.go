package diag

import (
	"eqlint/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is a single finding. Args keeps the ordered message arguments the
// Message was rendered from so sinks can re-render or localise it.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Args     []string
	Primary  source.Span
	Notes    []Note
	Fixes    []*Fix
}
