// Package classify maps type descriptors to categories. Classification is
// nominal: a generic shape is a collection only when its origin name is in
// the recognized tables and the arity fits.
package classify

import "eqlint/internal/symbols"

const nullableOrigin = "System.Nullable"

// maxUnwrap bounds nested nullable wrappers.
const maxUnwrap = 8

// Classifier holds the recognized-name tables. It is immutable after New and
// safe for concurrent use.
type Classifier struct {
	origins map[string]CollectionKind
	values  map[string]struct{}
}

var defaultClassifier = New(Tables{})

// New builds a classifier from the default tables extended with ext.
func New(ext Tables) *Classifier {
	t := DefaultTables().Merge(ext)
	c := &Classifier{
		origins: make(map[string]CollectionKind, len(t.List)+len(t.Set)+len(t.Dictionary)),
		values:  make(map[string]struct{}, len(t.ValueTypes)),
	}
	// earlier tables win when a name is listed twice
	for _, group := range []struct {
		names []string
		kind  CollectionKind
	}{{t.List, List}, {t.Set, Set}, {t.Dictionary, Dictionary}} {
		for _, n := range group.names {
			if _, ok := c.origins[n]; !ok {
				c.origins[n] = group.kind
			}
		}
	}
	for _, n := range t.ValueTypes {
		c.values[n] = struct{}{}
	}
	return c
}

// Default returns the classifier with the built-in tables.
func Default() *Classifier { return defaultClassifier }

// Classify classifies t with the built-in tables.
func Classify(g *symbols.Graph, t symbols.TypeID) Category {
	return defaultClassifier.Classify(g, t)
}

// Classify returns the category of t. Unknown IDs classify as Opaque.
func (c *Classifier) Classify(g *symbols.Graph, t symbols.TypeID) Category {
	id := t
	for range maxUnwrap + 1 {
		typ := g.Type(id)
		if typ == nil {
			return Category{Kind: Opaque, Type: id}
		}
		if typ.Kind == symbols.KindArray {
			return Category{Kind: Collection, Collection: Array, Elem: typ.Elem, Type: id}
		}
		if cat, ok := c.generic(typ, id); ok {
			return cat
		}
		if inner, ok := nullableInner(typ); ok {
			id = inner
			continue
		}
		return c.terminal(typ, id)
	}
	return Category{Kind: Opaque, Type: id}
}

// ClassifyElement classifies the element type of a collection category.
// Only one level is inspected: a list of lists yields a Collection here.
func (c *Classifier) ClassifyElement(g *symbols.Graph, cat Category) (Category, bool) {
	if cat.Kind != Collection || !cat.Elem.IsValid() {
		return Category{}, false
	}
	return c.Classify(g, cat.Elem), true
}

func (c *Classifier) generic(typ *symbols.Type, id symbols.TypeID) (Category, bool) {
	if typ.Origin == "" {
		return Category{}, false
	}
	kind, ok := c.origins[typ.Origin]
	if !ok {
		return Category{}, false
	}
	switch kind {
	case List, Set:
		if len(typ.Args) < 1 {
			return Category{}, false
		}
		return Category{Kind: Collection, Collection: kind, Elem: typ.Args[0], Type: id}, true
	case Dictionary:
		if len(typ.Args) < 2 {
			return Category{}, false
		}
		return Category{Kind: Collection, Collection: Dictionary, Elem: typ.Args[1], Type: id}, true
	}
	return Category{}, false
}

func nullableInner(typ *symbols.Type) (symbols.TypeID, bool) {
	if typ.Kind == symbols.KindNullable && typ.Elem.IsValid() {
		return typ.Elem, true
	}
	if typ.Origin == nullableOrigin && len(typ.Args) == 1 {
		return typ.Args[0], true
	}
	return symbols.NoTypeID, false
}

func (c *Classifier) terminal(typ *symbols.Type, id symbols.TypeID) Category {
	name := typ.QualifiedName()
	if typ.Origin != "" {
		name = typ.Origin
	}
	if _, ok := c.values[name]; ok {
		return Category{Kind: SystemValue, Type: id}
	}
	switch typ.Kind {
	case symbols.KindPrimitive:
		return Category{Kind: Primitive, Type: id}
	case symbols.KindEnum:
		return Category{Kind: Enum, Type: id}
	case symbols.KindClass, symbols.KindStruct:
		return Category{Kind: ComplexObject, Type: id}
	}
	return Category{Kind: Opaque, Type: id}
}
