package classify

import "eqlint/internal/symbols"

// Kind is the top-level category of a property type.
type Kind uint8

const (
	Opaque Kind = iota
	Primitive
	Enum
	SystemValue
	Collection
	ComplexObject
)

func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Enum:
		return "enum"
	case SystemValue:
		return "system-value"
	case Collection:
		return "collection"
	case ComplexObject:
		return "complex-object"
	default:
		return "opaque"
	}
}

// CollectionKind distinguishes collection shapes.
type CollectionKind uint8

const (
	NotCollection CollectionKind = iota
	List
	Set
	Dictionary
	Array
)

func (k CollectionKind) String() string {
	switch k {
	case List:
		return "list"
	case Set:
		return "set"
	case Dictionary:
		return "dictionary"
	case Array:
		return "array"
	default:
		return "none"
	}
}

// Category is the derived classification of a type. Type is the classified
// type after nullable wrappers were removed; Elem is the element type of a
// collection (the value type for dictionaries).
type Category struct {
	Kind       Kind
	Collection CollectionKind
	Elem       symbols.TypeID
	Type       symbols.TypeID
}

// IsCollection reports whether the category is a collection of any kind.
func (c Category) IsCollection() bool { return c.Kind == Collection }

// Safe reports whether the category never triggers a rule.
func (c Category) Safe() bool {
	return c.Kind != Collection && c.Kind != ComplexObject
}

func (c Category) String() string {
	if c.Kind == Collection {
		return "collection(" + c.Collection.String() + ")"
	}
	return c.Kind.String()
}
