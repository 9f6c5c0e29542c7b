package diag

import (
	"fmt"
	"strings"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Equality rules.
	EqCollectionNeedsStrategy Code = 1 // GE001, rule A
	EqComplexNeedsEquatable   Code = 2 // GE002, rule B
	EqElementNeedsEquatable   Code = 3 // GE003, rule C

	// Loading and IO.
	IOLoadFileError    Code = 1001
	IOLoadPackageError Code = 1002
	IOGraphDocError    Code = 1003
)

// Descriptor carries the fixed presentation metadata of a code.
type Descriptor struct {
	Code            Code
	Title           string
	MessageFormat   string // positional placeholders {0}, {1}, ...
	Category        string
	Description     string
	DefaultSeverity Severity
	EnabledDefault  bool
}

var descriptors = map[Code]Descriptor{
	UnknownCode: {
		Title:           "Unknown diagnostic",
		MessageFormat:   "unknown diagnostic",
		Category:        "Internal",
		DefaultSeverity: SevError,
	},
	EqCollectionNeedsStrategy: {
		Title:           "Collection property requires an equality attribute",
		MessageFormat:   "Collection field '{0}' in Equatable class '{1}' requires an equality attribute",
		Category:        "Usage",
		Description:     "Collection properties of [Equatable] types must declare how they are compared: [OrderedEquality], [UnorderedEquality], [SetEquality], [DictionaryEquality], [SequenceEquality], [ReferenceEquality], [DefaultEquality] or [IgnoreEquality].",
		DefaultSeverity: SevWarning,
		EnabledDefault:  true,
	},
	EqComplexNeedsEquatable: {
		Title:           "Complex property type is not equatable",
		MessageFormat:   "Property '{0}' of type '{1}' in Equatable class '{2}' references a type that is not marked [Equatable]",
		Category:        "Usage",
		Description:     "A class or struct used as a property of an [Equatable] type is compared by reference unless it is itself marked [Equatable].",
		DefaultSeverity: SevWarning,
		EnabledDefault:  true,
	},
	EqElementNeedsEquatable: {
		Title:           "Collection element type is not equatable",
		MessageFormat:   "Collection property '{0}' in Equatable class '{2}' has element type '{1}' that is not marked [Equatable]",
		Category:        "Usage",
		Description:     "Elements of a collection property are compared with their own equality; class or struct elements need [Equatable] for structural comparison.",
		DefaultSeverity: SevWarning,
		EnabledDefault:  true,
	},
	IOLoadFileError: {
		Title:           "Failed to load file",
		MessageFormat:   "failed to load file: {0}",
		Category:        "IO",
		DefaultSeverity: SevError,
		EnabledDefault:  true,
	},
	IOLoadPackageError: {
		Title:           "Failed to load package",
		MessageFormat:   "failed to load package {0}: {1}",
		Category:        "IO",
		DefaultSeverity: SevError,
		EnabledDefault:  true,
	},
	IOGraphDocError: {
		Title:           "Invalid symbol graph document",
		MessageFormat:   "invalid symbol graph document: {0}",
		Category:        "IO",
		DefaultSeverity: SevError,
		EnabledDefault:  true,
	},
}

// RuleCodes lists the equality rule codes in rule order (A, B, C).
func RuleCodes() []Code {
	return []Code{EqCollectionNeedsStrategy, EqComplexNeedsEquatable, EqElementNeedsEquatable}
}

// ParseCode resolves a stable string ID (e.g. "GE001") back to its Code.
func ParseCode(id string) (Code, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	for c := range descriptors {
		if c != UnknownCode && c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic > 0 && ic < 1000:
		return fmt.Sprintf("GE%03d", ic)
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

// Descriptor returns the metadata for c, falling back to UnknownCode.
func (c Code) Descriptor() Descriptor {
	d, ok := descriptors[c]
	if !ok {
		d = descriptors[UnknownCode]
	}
	d.Code = c
	return d
}

func (c Code) Title() string {
	return c.Descriptor().Title
}

// Format renders the code's message format with positional args.
// Missing arguments leave their placeholder in place.
func (c Code) Format(args ...string) string {
	msg := c.Descriptor().MessageFormat
	if len(args) == 0 {
		return msg
	}
	pairs := make([]string, 0, 2*len(args))
	for i, arg := range args {
		pairs = append(pairs, fmt.Sprintf("{%d}", i), arg)
	}
	// one pass, so placeholders inside arguments stay literal
	return strings.NewReplacer(pairs...).Replace(msg)
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
