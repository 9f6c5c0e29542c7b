package symbols

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"eqlint/internal/source"
)

// ErrCyclicBase is returned by Build when a base chain loops.
var ErrCyclicBase = errors.New("cyclic base chain")

// ErrUnknownBase is returned by Build when a base reference points nowhere.
var ErrUnknownBase = errors.New("unknown base declaration")

// ErrDuplicateDecl is returned by Build when two declarations share a qualified name.
var ErrDuplicateDecl = errors.New("duplicate declaration")

// Hints provide optional capacity suggestions for the graph arenas.
type Hints struct{ Types, Decls, Props uint }

// Builder assembles a Graph. It is not safe for concurrent use.
type Builder struct {
	g        *Graph
	interned map[string]TypeID
	dups     []string
}

// NewBuilder allocates a builder with optional capacity hints.
func NewBuilder(h Hints) *Builder {
	capOf := func(v uint, def int) int {
		n, err := safecast.Conv[int](v)
		if err != nil || n == 0 {
			return def
		}
		return n
	}
	g := &Graph{
		types:  make([]Type, 1, capOf(h.Types, 64)+1), // index 0 reserved for NoTypeID
		decls:  make([]Declaration, 1, capOf(h.Decls, 16)+1),
		props:  make([]Property, 1, capOf(h.Props, 64)+1),
		byName: make(map[string]DeclID),
		byType: make(map[string]TypeID),
	}
	return &Builder{g: g, interned: make(map[string]TypeID)}
}

// AddType appends a type descriptor and returns its ID.
func (b *Builder) AddType(t Type) TypeID {
	value, err := safecast.Conv[uint32](len(b.g.types))
	if err != nil {
		panic(fmt.Errorf("types arena overflow: %w", err))
	}
	id := TypeID(value)
	t.Args = append([]TypeID(nil), t.Args...)
	t.Markers = append([]string(nil), t.Markers...)
	b.g.types = append(b.g.types, t)
	if t.Origin == "" && t.Name != "" && t.Kind != KindArray && t.Kind != KindNullable && t.Kind != KindPointer {
		if _, ok := b.g.byType[t.QualifiedName()]; !ok {
			b.g.byType[t.QualifiedName()] = id
		}
	}
	return id
}

// Intern returns the ID of a structurally identical type added through
// Intern before, or adds t. An empty key derives one from t's shape.
func (b *Builder) Intern(key string, t Type) TypeID {
	if key == "" {
		key = typeKey(&t)
	}
	if id, ok := b.interned[key]; ok {
		return id
	}
	id := b.AddType(t)
	b.interned[key] = id
	return id
}

// Named interns a plain named type such as a primitive or an external class.
func (b *Builder) Named(namespace, name string, kind TypeKind) TypeID {
	return b.Intern("", Type{Namespace: namespace, Name: name, Kind: kind})
}

// ArrayOf interns an array of elem.
func (b *Builder) ArrayOf(elem TypeID) TypeID {
	name := ""
	if t := b.Type(elem); t != nil {
		name = t.Name + "[]"
	}
	return b.Intern("", Type{Name: name, Kind: KindArray, Elem: elem})
}

// NullableOf interns a nullable wrapper around inner.
func (b *Builder) NullableOf(inner TypeID) TypeID {
	name := ""
	if t := b.Type(inner); t != nil {
		name = t.Name + "?"
	}
	return b.Intern("", Type{Name: name, Kind: KindNullable, Elem: inner})
}

// Generic interns a constructed generic type. origin is the qualified name of
// the generic definition, for example System.Collections.Generic.List.
func (b *Builder) Generic(origin string, kind TypeKind, args ...TypeID) TypeID {
	ns, name := splitQualified(origin)
	return b.Intern("", Type{Namespace: ns, Name: name, Kind: kind, Origin: origin, Args: args})
}

// Type gives access to a type added so far.
func (b *Builder) Type(id TypeID) *Type { return b.g.Type(id) }

// Decl gives access to a declaration added so far.
func (b *Builder) Decl(id DeclID) *Declaration { return b.g.Decl(id) }

// LookupDecl finds a declaration added so far by qualified name.
func (b *Builder) LookupDecl(qualified string) (DeclID, bool) { return b.g.LookupDecl(qualified) }

// Declare adds a declaration together with its backing type of the given kind.
func (b *Builder) Declare(namespace, name string, kind TypeKind, span source.Span, markers ...string) DeclID {
	value, err := safecast.Conv[uint32](len(b.g.decls))
	if err != nil {
		panic(fmt.Errorf("decls arena overflow: %w", err))
	}
	id := DeclID(value)
	qualified := name
	if namespace != "" {
		qualified = namespace + "." + name
	}
	typeID := b.Intern("decl:"+qualified, Type{
		Namespace: namespace,
		Name:      name,
		Kind:      kind,
		Decl:      id,
		Span:      span,
	})
	if t := b.g.Type(typeID); t != nil && t.Decl != id {
		// an earlier declaration already claimed this name
		b.dups = append(b.dups, qualified)
	}
	b.g.decls = append(b.g.decls, Declaration{
		Name:          name,
		QualifiedName: qualified,
		Type:          typeID,
		Markers:       append([]string(nil), markers...),
		Span:          span,
	})
	if _, ok := b.g.byName[qualified]; !ok {
		b.g.byName[qualified] = id
	}
	return id
}

// AddMarkers appends canonical markers to a declaration.
func (b *Builder) AddMarkers(decl DeclID, markers ...string) {
	if d := b.g.Decl(decl); d != nil {
		d.Markers = append(d.Markers, markers...)
	}
}

// SetBase links decl to its base declaration.
func (b *Builder) SetBase(decl, base DeclID) {
	if d := b.g.Decl(decl); d != nil {
		d.Base = base
	}
}

// AddProperty appends p to decl's own properties, preserving call order.
func (b *Builder) AddProperty(decl DeclID, p Property) PropID {
	d := b.g.Decl(decl)
	if d == nil {
		return NoPropID
	}
	value, err := safecast.Conv[uint32](len(b.g.props))
	if err != nil {
		panic(fmt.Errorf("props arena overflow: %w", err))
	}
	id := PropID(value)
	p.Decl = decl
	p.Markers = append([]string(nil), p.Markers...)
	b.g.props = append(b.g.props, p)
	d.Props = append(d.Props, id)
	return id
}

// Build validates the graph and hands it over. The builder must not be used
// afterwards.
func (b *Builder) Build() (*Graph, error) {
	if len(b.dups) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateDecl, strings.Join(b.dups, ", "))
	}
	if err := checkBases(b.g); err != nil {
		return nil, err
	}
	g := b.g
	b.g = nil
	return g, nil
}

func checkBases(g *Graph) error {
	// 0 unvisited, 1 on the current chain, 2 known acyclic
	state := make([]uint8, len(g.decls))
	for start := 1; start < len(g.decls); start++ {
		if state[start] == 2 {
			continue
		}
		var chain []DeclID
		id := DeclID(uint32(start))
		for id.IsValid() && state[id] == 0 {
			state[id] = 1
			chain = append(chain, id)
			id = g.decls[id].Base
			if int(id) >= len(g.decls) {
				return fmt.Errorf("%w: %s has base %d", ErrUnknownBase, g.decls[chain[len(chain)-1]].QualifiedName, id)
			}
		}
		if id.IsValid() && state[id] == 1 {
			return fmt.Errorf("%w: %s", ErrCyclicBase, g.decls[id].QualifiedName)
		}
		for _, c := range chain {
			state[c] = 2
		}
	}
	return nil
}

func splitQualified(q string) (namespace, name string) {
	if i := strings.LastIndexByte(q, '.'); i >= 0 {
		return q[:i], q[i+1:]
	}
	return "", q
}
