// Package rules evaluates the equality completeness rules over opted-in
// declarations. Evaluation is a pure function of the symbol graph.
package rules

import (
	"eqlint/internal/classify"
	"eqlint/internal/diag"
	"eqlint/internal/markers"
	"eqlint/internal/symbols"
)

// Options configure an Engine.
type Options struct {
	Classifier *classify.Classifier // nil uses classify.Default()
	Disabled   []diag.Code          // rule codes to skip
}

// Engine applies rules A, B and C. It is immutable and safe for concurrent use.
type Engine struct {
	classifier *classify.Classifier
	detector   markers.Detector
	disabled   map[diag.Code]bool
}

// New builds an Engine.
func New(opts Options) *Engine {
	c := opts.Classifier
	if c == nil {
		c = classify.Default()
	}
	disabled := make(map[diag.Code]bool, len(opts.Disabled))
	for _, code := range opts.Disabled {
		disabled[code] = true
	}
	return &Engine{classifier: c, disabled: disabled}
}

// Classifier returns the classifier the engine uses.
func (e *Engine) Classifier() *classify.Classifier { return e.classifier }

// Enabled reports whether rule r runs.
func (e *Engine) Enabled(r Rule) bool { return !e.disabled[r.Code()] }

// IsOptedIn reports whether decl is subject to the rules.
func (e *Engine) IsOptedIn(g *symbols.Graph, decl symbols.DeclID) bool {
	return e.detector.IsOptedIn(g, decl)
}

// Evaluate returns the findings for decl's own public properties in
// declared order. Declarations that do not opt in yield nil.
func (e *Engine) Evaluate(g *symbols.Graph, decl symbols.DeclID) []Finding {
	d := g.Decl(decl)
	if d == nil || !e.detector.IsOptedIn(g, decl) {
		return nil
	}
	var out []Finding
	for _, pid := range d.Props {
		p := g.Prop(pid)
		if p == nil || !p.Access.IsPublic() {
			continue
		}
		out = e.evaluateProperty(out, g, d, decl, pid, p)
	}
	return out
}

func (e *Engine) evaluateProperty(out []Finding, g *symbols.Graph, d *symbols.Declaration, decl symbols.DeclID, pid symbols.PropID, p *symbols.Property) []Finding {
	cat := e.classifier.Classify(g, p.Type)
	switch cat.Kind {
	case classify.Collection:
		if e.Enabled(RuleCollectionStrategy) && !e.detector.HasStrategyMarker(p) {
			out = append(out, Finding{
				Rule:     RuleCollectionStrategy,
				Decl:     decl,
				Prop:     pid,
				Type:     cat.Type,
				Category: cat,
				Span:     p.TypeSpan,
				Args:     []string{p.Name, d.Name},
			})
		}
		if !e.Enabled(RuleElementOptIn) {
			return out
		}
		elem, ok := e.classifier.ClassifyElement(g, cat)
		if ok && elem.Kind == classify.ComplexObject && !e.detector.TypeOptedIn(g, elem.Type) {
			out = append(out, Finding{
				Rule:     RuleElementOptIn,
				Decl:     decl,
				Prop:     pid,
				Type:     elem.Type,
				Category: cat,
				Span:     p.TypeSpan,
				Args:     []string{p.Name, typeName(g, elem.Type), d.Name},
			})
		}
	case classify.ComplexObject:
		if e.Enabled(RuleComplexOptIn) && !e.detector.TypeOptedIn(g, cat.Type) {
			out = append(out, Finding{
				Rule:     RuleComplexOptIn,
				Decl:     decl,
				Prop:     pid,
				Type:     cat.Type,
				Category: cat,
				Span:     p.TypeSpan,
				Args:     []string{p.Name, typeName(g, cat.Type), d.Name},
			})
		}
	}
	return out
}

func typeName(g *symbols.Graph, id symbols.TypeID) string {
	if t := g.Type(id); t != nil {
		return t.Name
	}
	return ""
}
