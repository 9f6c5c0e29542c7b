package symbols

import "eqlint/internal/source"

// Declaration is a class- or struct-like declaration with its own properties.
type Declaration struct {
	Name          string
	QualifiedName string
	Type          TypeID
	Props         []PropID // declared order
	Base          DeclID
	Markers       []string
	Span          source.Span
}

// HasMarker reports whether the declaration itself carries the marker.
func (d *Declaration) HasMarker(name string) bool {
	if d == nil {
		return false
	}
	for _, m := range d.Markers {
		if m == name {
			return true
		}
	}
	return false
}

// Property is a declared property. Fields are never represented.
type Property struct {
	Name     string
	Decl     DeclID
	Type     TypeID
	Access   Accessibility
	Markers  []string
	TypeSpan source.Span // span of the declared type reference
	Span     source.Span // span of the whole property declaration
}

// HasMarker reports whether the property carries the marker.
func (p *Property) HasMarker(name string) bool {
	if p == nil {
		return false
	}
	for _, m := range p.Markers {
		if m == name {
			return true
		}
	}
	return false
}
