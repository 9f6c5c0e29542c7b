package graphdoc

import (
	"eqlint/internal/classify"
	"eqlint/internal/symbols"
)

type keyword struct {
	name string
	kind symbols.TypeKind
}

// keywords maps language keywords and Go predeclared names to their types.
var keywords = map[string]keyword{
	"bool":    {"System.Boolean", symbols.KindPrimitive},
	"byte":    {"System.Byte", symbols.KindPrimitive},
	"sbyte":   {"System.SByte", symbols.KindPrimitive},
	"char":    {"System.Char", symbols.KindPrimitive},
	"short":   {"System.Int16", symbols.KindPrimitive},
	"ushort":  {"System.UInt16", symbols.KindPrimitive},
	"int":     {"System.Int32", symbols.KindPrimitive},
	"uint":    {"System.UInt32", symbols.KindPrimitive},
	"long":    {"System.Int64", symbols.KindPrimitive},
	"ulong":   {"System.UInt64", symbols.KindPrimitive},
	"nint":    {"System.IntPtr", symbols.KindPrimitive},
	"nuint":   {"System.UIntPtr", symbols.KindPrimitive},
	"float":   {"System.Single", symbols.KindPrimitive},
	"double":  {"System.Double", symbols.KindPrimitive},
	"decimal": {"System.Decimal", symbols.KindStruct},
	"string":  {"System.String", symbols.KindPrimitive},
	"object":  {"System.Object", symbols.KindOther},
	"dynamic": {"dynamic", symbols.KindOther},

	"int8":       {"int8", symbols.KindPrimitive},
	"int16":      {"int16", symbols.KindPrimitive},
	"int32":      {"int32", symbols.KindPrimitive},
	"int64":      {"int64", symbols.KindPrimitive},
	"uint8":      {"uint8", symbols.KindPrimitive},
	"uint16":     {"uint16", symbols.KindPrimitive},
	"uint32":     {"uint32", symbols.KindPrimitive},
	"uint64":     {"uint64", symbols.KindPrimitive},
	"uintptr":    {"uintptr", symbols.KindPrimitive},
	"float32":    {"float32", symbols.KindPrimitive},
	"float64":    {"float64", symbols.KindPrimitive},
	"complex64":  {"complex64", symbols.KindPrimitive},
	"complex128": {"complex128", symbols.KindPrimitive},
	"rune":       {"rune", symbols.KindPrimitive},
	"any":        {"any", symbols.KindInterface},
	"error":      {"error", symbols.KindInterface},
}

// nameIndex resolves short generic and value type names through the
// classifier tables.
type nameIndex struct {
	origins map[string]string // short or qualified name -> qualified origin
	values  map[string]string // short or qualified name -> qualified value type
}

func newNameIndex(t classify.Tables) nameIndex {
	idx := nameIndex{
		origins: make(map[string]string),
		values:  make(map[string]string),
	}
	for _, list := range [][]string{t.List, t.Set, t.Dictionary, {"System.Nullable"}} {
		for _, q := range list {
			idx.add(idx.origins, q)
		}
	}
	for _, q := range t.ValueTypes {
		idx.add(idx.values, q)
	}
	return idx
}

// add registers q under its qualified and short name. The first table entry
// wins a short name.
func (idx nameIndex) add(m map[string]string, q string) {
	m[q] = q
	if _, short := splitName(q); short != q {
		if _, taken := m[short]; !taken {
			m[short] = q
		}
	}
}

// generic resolves the origin of a constructed type. Unknown names are kept
// as written and classify as opaque.
func (idx nameIndex) generic(name string) (string, symbols.TypeKind) {
	if q, ok := idx.origins[name]; ok {
		if q == "System.Nullable" {
			return q, symbols.KindStruct
		}
		return q, symbols.KindClass
	}
	return name, symbols.KindOther
}

func (idx nameIndex) value(name string) (string, bool) {
	q, ok := idx.values[name]
	return q, ok
}
