package gosrc

import (
	"errors"
	"fmt"

	"eqlint/internal/diag"
	"eqlint/internal/fix"
	"eqlint/internal/suggest"
	"eqlint/internal/symbols"
)

// ErrInlineField is returned for fields declared on the struct's opening
// line, where a directive line would attach to the type instead.
var ErrInlineField = errors.New("field shares a line with its struct keyword")

// Fixer returns the edit builder for this result's sources.
func (r *Result) Fixer() suggest.EditBuilder { return fixer{r: r} }

type fixer struct{ r *Result }

// Fix inserts the directive on its own line directly above the field.
func (f fixer) Fix(g *symbols.Graph, p suggest.Proposal) (diag.Fix, error) {
	prop := g.Prop(p.Prop)
	if prop == nil {
		return diag.Fix{}, fmt.Errorf("unknown property %d", p.Prop)
	}
	if f.r.fields[p.Prop].inline {
		return diag.Fix{}, fmt.Errorf("%s: %w", prop.Name, ErrInlineField)
	}
	file := f.r.FileSet.Get(prop.Span.File)
	if file == nil {
		return diag.Fix{}, fmt.Errorf("%s: no source for property", prop.Name)
	}
	return fix.InsertLineBefore(p.Title, file, prop.Span.Start, Directive(p.Marker),
		fix.WithEquivalenceKey(p.EquivalenceKey)), nil
}
