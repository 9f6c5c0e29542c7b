package graphdoc

import (
	"slices"
	"strings"

	"eqlint/internal/symbols"
)

// Export renders g as a document. Types referenced by properties but not
// declared in g are listed under types with their kind and markers.
func Export(g *symbols.Graph) *Document {
	x := exporter{g: g, seen: make(map[string]bool)}
	doc := &Document{Version: CurrentVersion}
	for _, id := range g.Decls() {
		d := g.Decl(id)
		dd := DeclDoc{
			Name:    d.QualifiedName,
			Kind:    kindOf(g, d.Type),
			Markers: slices.Clone(d.Markers),
		}
		if base := g.Decl(d.Base); base != nil {
			dd.Base = base.QualifiedName
		}
		for _, pid := range d.Props {
			p := g.Prop(pid)
			dd.Properties = append(dd.Properties, PropDoc{
				Name:    p.Name,
				Type:    x.expr(p.Type),
				Access:  p.Access.String(),
				Markers: slices.Clone(p.Markers),
			})
		}
		doc.Declarations = append(doc.Declarations, dd)
	}
	doc.Types = x.types
	return doc
}

type exporter struct {
	g     *symbols.Graph
	seen  map[string]bool
	types []TypeDoc
}

func (x *exporter) expr(id symbols.TypeID) string {
	t := x.g.Type(id)
	if t == nil {
		return "object"
	}
	switch t.Kind {
	case symbols.KindArray:
		return x.expr(t.Elem) + "[]"
	case symbols.KindNullable, symbols.KindPointer:
		return x.expr(t.Elem) + "?"
	}
	if t.Origin != "" {
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = x.expr(a)
		}
		return t.Origin + "<" + strings.Join(args, ", ") + ">"
	}
	if d := x.g.Decl(t.Decl); d != nil {
		return d.QualifiedName
	}
	name := t.QualifiedName()
	if name == "" {
		return "object"
	}
	if _, ok := keywords[name]; !ok && !x.seen[name] {
		x.seen[name] = true
		x.types = append(x.types, TypeDoc{
			Name:    name,
			Kind:    t.Kind.String(),
			Markers: slices.Clone(t.Markers),
		})
	}
	return name
}

func kindOf(g *symbols.Graph, id symbols.TypeID) string {
	if t := g.Type(id); t != nil && t.Kind == symbols.KindStruct {
		return "struct"
	}
	return "class"
}
