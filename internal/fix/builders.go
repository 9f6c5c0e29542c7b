package fix

import (
	"eqlint/internal/diag"
	"eqlint/internal/source"
)

// Option mutates fix during construction.
type Option func(*diag.Fix)

// WithApplicability overrides applicability metadata.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) {
		f.Applicability = app
	}
}

// WithKind overrides fix classification.
func WithKind(kind diag.FixKind) Option {
	return func(f *diag.Fix) {
		f.Kind = kind
	}
}

// Preferred marks fix as preferred suggestion.
func Preferred() Option {
	return func(f *diag.Fix) {
		f.IsPreferred = true
	}
}

// WithID sets stable identifier for fix.
func WithID(id string) Option {
	return func(f *diag.Fix) {
		f.ID = id
	}
}

// WithEquivalenceKey groups the fix with identical fixes on other diagnostics.
func WithEquivalenceKey(key string) Option {
	return func(f *diag.Fix) {
		f.EquivalenceKey = key
	}
}

// WithRequiresAll marks the fix as only valid together with its siblings.
func WithRequiresAll() Option {
	return func(f *diag.Fix) {
		f.RequiresAll = true
	}
}

// WithThunk attaches lazy builder to fix.
func WithThunk(thunk diag.FixThunk) Option {
	return func(f *diag.Fix) {
		f.Thunk = thunk
	}
}

func applyOptions(f diag.Fix, opts []Option) diag.Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// InsertText creates fix that inserts text at span (Span.Start == Span.End).
func InsertText(title string, at source.Span, text, guard string, opts ...Option) diag.Fix {
	fix := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits: []diag.TextEdit{{
			Span:    at,
			NewText: text,
			OldText: guard,
		}},
	}
	return applyOptions(fix, opts)
}

// ReplaceSpan replaces text covered by span with newText.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	fix := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits: []diag.TextEdit{{
			Span:    span,
			NewText: newText,
			OldText: expect,
		}},
	}
	return applyOptions(fix, opts)
}

// InsertLineBefore creates a fix that inserts line as a new line above the
// line containing offset, indented like that line. Existing text is untouched.
func InsertLineBefore(title string, file *source.File, offset uint32, line string, opts ...Option) diag.Fix {
	if file == nil {
		return applyOptions(diag.Fix{Title: title, Kind: diag.FixKindQuickFix}, opts)
	}
	start := lineStartOf(file.Content, offset)
	indent := leadingIndent(file.Content[start:])
	at := source.Span{File: file.ID, Start: start, End: start}
	return InsertText(title, at, indent+line+"\n", "", opts...)
}

func lineStartOf(content []byte, offset uint32) uint32 {
	if int(offset) > len(content) {
		offset = uint32(len(content))
	}
	for i := offset; i > 0; i-- {
		if content[i-1] == '\n' {
			return i
		}
	}
	return 0
}

func leadingIndent(b []byte) string {
	n := 0
	for n < len(b) && (b[n] == ' ' || b[n] == '\t') {
		n++
	}
	return string(b[:n])
}
