package gosrc

import (
	"go/ast"
	"strings"

	"eqlint/internal/markers"
)

const directivePrefix = "//eq:"

// parseDirectives collects canonical markers from //eq: lines. Text after the
// marker name is ignored so a directive can carry a trailing note.
func parseDirectives(groups ...*ast.CommentGroup) []string {
	var out []string
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, c := range g.List {
			rest, ok := strings.CutPrefix(c.Text, directivePrefix)
			if !ok {
				continue
			}
			for _, name := range strings.Split(firstWord(rest), ",") {
				if name == "" {
					continue
				}
				canon, _ := markers.Canonical(name)
				out = append(out, canon)
			}
		}
	}
	return out
}

func firstWord(s string) string {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}

// Directive renders the directive line for a canonical marker.
func Directive(canonical string) string {
	if short, ok := markers.ShortForm(canonical); ok {
		return directivePrefix + short
	}
	return directivePrefix + canonical
}
