// Package markers resolves raw annotation names to canonical markers and
// answers the two opt-in questions the rule engine asks: does a declaration
// opt into structural equality, and does a property carry an equality strategy.
package markers

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Canonical marker names.
const (
	Equatable = "Equatable"

	IgnoreEquality     = "IgnoreEquality"
	DefaultEquality    = "DefaultEquality"
	OrderedEquality    = "OrderedEquality"
	UnorderedEquality  = "UnorderedEquality"
	SetEquality        = "SetEquality"
	DictionaryEquality = "DictionaryEquality"
	ReferenceEquality  = "ReferenceEquality"
	SequenceEquality   = "SequenceEquality"
)

const (
	qualifiedPrefix = "Generator.Equals."
	attributeSuffix = "Attribute"
)

var strategies = []string{
	IgnoreEquality,
	DefaultEquality,
	OrderedEquality,
	UnorderedEquality,
	SetEquality,
	DictionaryEquality,
	ReferenceEquality,
	SequenceEquality,
}

// directive short forms used in Go source (//eq:ordered).
var shortForms = map[string]string{
	"equatable":  Equatable,
	"ignore":     IgnoreEquality,
	"default":    DefaultEquality,
	"ordered":    OrderedEquality,
	"unordered":  UnorderedEquality,
	"set":        SetEquality,
	"dictionary": DictionaryEquality,
	"reference":  ReferenceEquality,
	"sequence":   SequenceEquality,
}

var aliases = buildAliases()

func buildAliases() map[string]string {
	out := make(map[string]string, 4*(len(strategies)+1)+len(shortForms))
	for _, name := range append([]string{Equatable}, strategies...) {
		out[name] = name
		out[name+attributeSuffix] = name
		out[qualifiedPrefix+name] = name
		out[qualifiedPrefix+name+attributeSuffix] = name
	}
	for short, name := range shortForms {
		out[short] = name
	}
	return out
}

// Canonical maps a raw marker spelling to its canonical name. Accepted forms
// are the bare name, the -Attribute suffixed name, the Generator.Equals
// qualified forms (optionally prefixed with global::) and the lowercase
// directive short forms. Unknown names are returned unchanged with ok=false.
func Canonical(raw string) (string, bool) {
	name := norm.NFC.String(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, "global::")
	name = strings.TrimSuffix(name, "()")
	if c, ok := aliases[name]; ok {
		return c, true
	}
	return name, false
}

// CanonicalAll canonicalizes every name, keeping unknown names verbatim so
// unrelated annotations survive round trips. Order is preserved.
func CanonicalAll(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		c, _ := Canonical(r)
		if c == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// IsStrategy reports whether name is one of the canonical strategy markers.
func IsStrategy(name string) bool {
	for _, s := range strategies {
		if s == name {
			return true
		}
	}
	return false
}

// Strategies returns the closed set of strategy marker names.
func Strategies() []string {
	return append([]string(nil), strategies...)
}

// ShortForm returns the directive spelling of a canonical marker.
func ShortForm(canonical string) (string, bool) {
	for short, name := range shortForms {
		if name == canonical {
			return short, true
		}
	}
	return "", false
}
