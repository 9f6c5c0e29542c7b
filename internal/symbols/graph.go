package symbols

// Graph is the read-only symbol graph consumed by the rule engine.
// Pointers returned by accessors alias arena storage and must not be modified.
type Graph struct {
	types  []Type
	decls  []Declaration
	props  []Property
	byName map[string]DeclID
	byType map[string]TypeID
}

// Type returns the type descriptor or nil for an invalid ID.
func (g *Graph) Type(id TypeID) *Type {
	if g == nil || !id.IsValid() || int(id) >= len(g.types) {
		return nil
	}
	return &g.types[id]
}

// Decl returns the declaration or nil for an invalid ID.
func (g *Graph) Decl(id DeclID) *Declaration {
	if g == nil || !id.IsValid() || int(id) >= len(g.decls) {
		return nil
	}
	return &g.decls[id]
}

// Prop returns the property or nil for an invalid ID.
func (g *Graph) Prop(id PropID) *Property {
	if g == nil || !id.IsValid() || int(id) >= len(g.props) {
		return nil
	}
	return &g.props[id]
}

// Decls lists every declaration ID in insertion order.
func (g *Graph) Decls() []DeclID {
	if g == nil || len(g.decls) <= 1 {
		return nil
	}
	out := make([]DeclID, 0, len(g.decls)-1)
	for i := 1; i < len(g.decls); i++ {
		out = append(out, DeclID(i))
	}
	return out
}

// NumTypes reports the number of types excluding the sentinel.
func (g *Graph) NumTypes() int { return len(g.types) - 1 }

// NumDecls reports the number of declarations excluding the sentinel.
func (g *Graph) NumDecls() int { return len(g.decls) - 1 }

// NumProps reports the number of properties excluding the sentinel.
func (g *Graph) NumProps() int { return len(g.props) - 1 }

// LookupDecl finds a declaration by qualified name.
func (g *Graph) LookupDecl(qualified string) (DeclID, bool) {
	if g == nil {
		return NoDeclID, false
	}
	id, ok := g.byName[qualified]
	return id, ok
}

// LookupType finds a named type by qualified name. Constructed generic,
// array and nullable types are not indexed by name.
func (g *Graph) LookupType(qualified string) (TypeID, bool) {
	if g == nil {
		return NoTypeID, false
	}
	id, ok := g.byType[qualified]
	return id, ok
}

// DeclOf returns the backing declaration of a type.
func (g *Graph) DeclOf(id TypeID) *Declaration {
	t := g.Type(id)
	if t == nil {
		return nil
	}
	return g.Decl(t.Decl)
}

// BaseChain returns the ancestors of decl, nearest first. The builder
// guarantees chains are finite.
func (g *Graph) BaseChain(id DeclID) []DeclID {
	var out []DeclID
	d := g.Decl(id)
	for d != nil && d.Base.IsValid() {
		out = append(out, d.Base)
		d = g.Decl(d.Base)
	}
	return out
}
