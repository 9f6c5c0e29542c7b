package symbols

import (
	"strconv"
	"strings"

	"eqlint/internal/source"
)

// Type is a type descriptor. Which fields are meaningful depends on Kind:
// arrays, nullable wrappers and pointers use Elem; constructed generic types
// carry Origin (the qualified name of the generic definition) and Args.
type Type struct {
	Name      string
	Namespace string
	Kind      TypeKind
	Elem      TypeID
	Origin    string
	Args      []TypeID
	Decl      DeclID   // backing declaration, when the type is declared in the graph
	Markers   []string // canonical marker names, used when Decl is not set
	Span      source.Span
}

// QualifiedName joins namespace and name with a dot.
func (t *Type) QualifiedName() string {
	if t == nil {
		return ""
	}
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// IsGeneric reports whether the type is a constructed generic shape.
func (t *Type) IsGeneric() bool {
	return t != nil && t.Origin != ""
}

// HasMarker reports whether the type carries the canonical marker name.
func (t *Type) HasMarker(name string) bool {
	if t == nil {
		return false
	}
	for _, m := range t.Markers {
		if m == name {
			return true
		}
	}
	return false
}

// typeKey is the interning key used by Builder.Intern callers that do not
// supply their own.
func typeKey(t *Type) string {
	var b strings.Builder
	b.WriteString(t.Kind.String())
	b.WriteByte(':')
	b.WriteString(t.QualifiedName())
	if t.Origin != "" {
		b.WriteString("|")
		b.WriteString(t.Origin)
	}
	if t.Elem.IsValid() || len(t.Args) > 0 {
		b.WriteByte('[')
		b.WriteString(strconv.FormatUint(uint64(t.Elem), 10))
		for _, a := range t.Args {
			b.WriteByte(',')
			b.WriteString(strconv.FormatUint(uint64(a), 10))
		}
		b.WriteByte(']')
	}
	return b.String()
}
