package symbols

import "strings"

// TypeKind is the structural kind reported by the provider.
type TypeKind uint8

const (
	KindUnknown TypeKind = iota
	KindPrimitive
	KindEnum
	KindClass
	KindStruct
	KindInterface
	KindArray
	KindNullable
	KindPointer
	KindTypeParam
	KindOther
)

var kindNames = [...]string{
	KindUnknown:   "unknown",
	KindPrimitive: "primitive",
	KindEnum:      "enum",
	KindClass:     "class",
	KindStruct:    "struct",
	KindInterface: "interface",
	KindArray:     "array",
	KindNullable:  "nullable",
	KindPointer:   "pointer",
	KindTypeParam: "typeparam",
	KindOther:     "other",
}

func (k TypeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseTypeKind maps a textual kind (as used in graph documents) to TypeKind.
func ParseTypeKind(s string) (TypeKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range kindNames {
		if name == s {
			return TypeKind(i), true
		}
	}
	return KindUnknown, false
}

// Accessibility is the declared visibility of a property.
type Accessibility uint8

const (
	AccessPrivate Accessibility = iota
	AccessPublic
	AccessInternal
	AccessProtected
	AccessProtectedInternal
	AccessPrivateProtected
)

var accessNames = [...]string{
	AccessPrivate:           "private",
	AccessPublic:            "public",
	AccessInternal:          "internal",
	AccessProtected:         "protected",
	AccessProtectedInternal: "protected-internal",
	AccessPrivateProtected:  "private-protected",
}

func (a Accessibility) String() string {
	if int(a) < len(accessNames) {
		return accessNames[a]
	}
	return "private"
}

// IsPublic reports whether the accessibility is public-equivalent.
func (a Accessibility) IsPublic() bool { return a == AccessPublic }

// ParseAccessibility accepts the canonical names plus the space and
// underscore separated spellings ("protected internal", "private_protected").
func ParseAccessibility(s string) (Accessibility, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	for i, name := range accessNames {
		if name == s {
			return Accessibility(i), true
		}
	}
	return AccessPrivate, false
}
