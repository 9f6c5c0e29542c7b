// Package suggest turns collection findings into marker-insertion proposals.
package suggest

import (
	"fmt"

	"eqlint/internal/classify"
	"eqlint/internal/diag"
	"eqlint/internal/markers"
	"eqlint/internal/rules"
	"eqlint/internal/symbols"
)

// Proposal describes one marker insertion. It has no side effects; an
// EditBuilder turns it into concrete edits.
type Proposal struct {
	Title          string
	Prop           symbols.PropID
	Marker         string
	EquivalenceKey string
	Preferred      bool
}

// EditBuilder produces the fix inserting p.Marker before the property. It is
// provider specific: Go source gets a directive line, documents a list entry.
// Implementations must keep existing markers untouched.
type EditBuilder interface {
	Fix(g *symbols.Graph, p Proposal) (diag.Fix, error)
}

var equivalenceKeys = map[string]string{
	markers.DictionaryEquality: "dictionary_equality",
	markers.SetEquality:        "set_equality",
	markers.OrderedEquality:    "ordered_equality",
	markers.UnorderedEquality:  "unordered_equality",
}

// EquivalenceKey returns the fix-all grouping key for a strategy marker.
func EquivalenceKey(marker string) string {
	return equivalenceKeys[marker]
}

// Markers returns the strategy markers offered for a collection kind, in
// presentation order.
func Markers(kind classify.CollectionKind) []string {
	switch kind {
	case classify.Dictionary:
		return []string{markers.DictionaryEquality}
	case classify.Set:
		return []string{markers.SetEquality}
	case classify.List, classify.Array:
		return []string{markers.OrderedEquality, markers.UnorderedEquality}
	}
	return nil
}

// Suggest returns the proposals for a finding. Only collection-strategy
// findings have proposals; the first one is preferred.
func Suggest(f rules.Finding) []Proposal {
	if f.Rule != rules.RuleCollectionStrategy {
		return nil
	}
	names := Markers(f.Category.Collection)
	out := make([]Proposal, 0, len(names))
	for i, name := range names {
		out = append(out, Proposal{
			Title:          fmt.Sprintf("Add [%s]", name),
			Prop:           f.Prop,
			Marker:         name,
			EquivalenceKey: EquivalenceKey(name),
			Preferred:      i == 0,
		})
	}
	return out
}

// Fixes converts proposals into lazy diag fixes backed by eb.
func Fixes(g *symbols.Graph, props []Proposal, eb EditBuilder) []*diag.Fix {
	if eb == nil || len(props) == 0 {
		return nil
	}
	out := make([]*diag.Fix, 0, len(props))
	for _, p := range props {
		out = append(out, &diag.Fix{
			Title:          p.Title,
			EquivalenceKey: p.EquivalenceKey,
			Kind:           diag.FixKindQuickFix,
			Applicability:  diag.FixApplicabilityAlwaysSafe,
			IsPreferred:    p.Preferred,
			Thunk: func(diag.FixBuildContext) (diag.Fix, error) {
				return eb.Fix(g, p)
			},
		})
	}
	return out
}

// Diagnostic converts a finding and attaches its fixes.
func Diagnostic(g *symbols.Graph, f rules.Finding, eb EditBuilder) *diag.Diagnostic {
	d := f.Diagnostic()
	for _, fx := range Fixes(g, Suggest(f), eb) {
		d.WithFixSuggestion(fx)
	}
	return d
}
