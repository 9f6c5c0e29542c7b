package markers

import "eqlint/internal/symbols"

// Detector answers opt-in and strategy questions over a symbol graph.
// It holds no state; the zero value is ready to use.
type Detector struct{}

// IsOptedIn reports whether decl or any ancestor carries the Equatable marker.
// The walk is bounded by the number of declarations in the graph.
func (Detector) IsOptedIn(g *symbols.Graph, decl symbols.DeclID) bool {
	limit := g.NumDecls()
	id := decl
	for i := 0; i <= limit && id.IsValid(); i++ {
		d := g.Decl(id)
		if d == nil {
			return false
		}
		if d.HasMarker(Equatable) {
			return true
		}
		id = d.Base
	}
	return false
}

// TypeOptedIn reports whether a property or element type opts in. Types with
// a declaration in the graph use IsOptedIn; external types fall back to the
// markers recorded on the type itself.
func (det Detector) TypeOptedIn(g *symbols.Graph, t symbols.TypeID) bool {
	typ := g.Type(t)
	if typ == nil {
		return false
	}
	if typ.Decl.IsValid() {
		return det.IsOptedIn(g, typ.Decl)
	}
	return typ.HasMarker(Equatable)
}

// HasStrategyMarker reports whether the property carries any strategy marker.
func (Detector) HasStrategyMarker(p *symbols.Property) bool {
	_, ok := Strategy(p)
	return ok
}

// Strategy returns the first strategy marker attached to p.
func Strategy(p *symbols.Property) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, m := range p.Markers {
		if IsStrategy(m) {
			return m, true
		}
	}
	return "", false
}
