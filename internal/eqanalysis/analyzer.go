// Package eqanalysis exposes the equality rules as a go/analysis Analyzer.
//
// Struct types opt in with a //eq:equatable directive in their doc comment
// or by embedding an opted-in struct. The analyzer exports an EquatableFact
// for every opted-in type so importing packages see the opt-in without
// re-reading the directive.
package eqanalysis

import (
	"fmt"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"

	"eqlint/internal/diag"
	"eqlint/internal/gosrc"
	"eqlint/internal/markers"
	"eqlint/internal/rules"
	"eqlint/internal/suggest"
	"eqlint/internal/symbols"
)

const doc = `check value-equality directives on struct fields

Structs marked with //eq:equatable compare their fields by value. Collection
fields need a strategy directive (//eq:ordered, //eq:unordered, //eq:set,
//eq:dictionary, ...), and struct-typed fields or collection elements must be
equatable themselves.`

// Analyzer reports GE001, GE002 and GE003 with directive-inserting fixes.
var Analyzer = &analysis.Analyzer{
	Name:      "equatable",
	Doc:       doc,
	Run:       run,
	FactTypes: []analysis.Fact{new(EquatableFact)},
}

var disabled string

func init() {
	Analyzer.Flags.StringVar(&disabled, "disable", "", "comma-separated rule codes to skip, e.g. GE002,GE003")
}

// EquatableFact marks a struct type as opted in. Via names the embedded
// declaration the opt-in was inherited from, if any.
type EquatableFact struct {
	Via string
}

func (*EquatableFact) AFact() {}

func (f *EquatableFact) String() string {
	if f.Via == "" {
		return "equatable"
	}
	return "equatable via " + f.Via
}

func run(pass *analysis.Pass) (any, error) {
	codes, err := parseCodes(disabled)
	if err != nil {
		return nil, err
	}
	pkg := &gosrc.Package{
		Path:  pass.Pkg.Path(),
		Files: pass.Files,
		Types: pass.Pkg,
		Info:  pass.TypesInfo,
	}
	res, err := gosrc.FromPackage(pass.Fset, pkg, gosrc.Options{
		ReadFile: pass.ReadFile,
		External: func(obj *types.TypeName) []string {
			if pass.ImportObjectFact(obj, new(EquatableFact)) {
				return []string{markers.Equatable}
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	g := res.Graph
	eng := rules.New(rules.Options{Disabled: codes})
	eb := res.Fixer()
	for _, id := range g.Decls() {
		d := g.Decl(id)
		if t := g.Type(d.Type); t == nil || t.Namespace != pass.Pkg.Path() {
			continue
		}
		if !eng.IsOptedIn(g, id) {
			continue
		}
		if obj, ok := pass.Pkg.Scope().Lookup(d.Name).(*types.TypeName); ok {
			pass.ExportObjectFact(obj, &EquatableFact{Via: via(g, id)})
		}
		for _, f := range eng.Evaluate(g, id) {
			report(pass, res, eb, f)
		}
	}
	return nil, nil
}

// via returns the nearest ancestor carrying the opt-in marker when decl
// itself does not.
func via(g *symbols.Graph, id symbols.DeclID) string {
	if g.Decl(id).HasMarker(markers.Equatable) {
		return ""
	}
	for _, b := range g.BaseChain(id) {
		if d := g.Decl(b); d.HasMarker(markers.Equatable) {
			return d.QualifiedName
		}
	}
	return ""
}

func report(pass *analysis.Pass, res *gosrc.Result, eb suggest.EditBuilder, f rules.Finding) {
	pos, end, ok := res.Pos(f.Span)
	if !ok {
		return
	}
	d := analysis.Diagnostic{
		Pos:      pos,
		End:      end,
		Category: f.Code().ID(),
		Message:  f.Message(),
	}
	for _, p := range suggest.Suggest(f) {
		fx, err := eb.Fix(res.Graph, p)
		if err != nil {
			continue
		}
		if sf, ok := suggestedFix(res, fx); ok {
			d.SuggestedFixes = append(d.SuggestedFixes, sf)
		}
	}
	pass.Report(d)
}

func suggestedFix(res *gosrc.Result, fx diag.Fix) (analysis.SuggestedFix, bool) {
	sf := analysis.SuggestedFix{Message: fx.Title}
	for _, e := range fx.Edits {
		pos, end, ok := res.Pos(e.Span)
		if !ok {
			return analysis.SuggestedFix{}, false
		}
		sf.TextEdits = append(sf.TextEdits, analysis.TextEdit{Pos: pos, End: end, NewText: []byte(e.NewText)})
	}
	return sf, len(sf.TextEdits) > 0
}

func parseCodes(list string) ([]diag.Code, error) {
	var out []diag.Code
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		code, ok := diag.ParseCode(s)
		if !ok {
			return nil, fmt.Errorf("unknown rule code %q", s)
		}
		out = append(out, code)
	}
	return out, nil
}
