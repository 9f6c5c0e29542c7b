package gosrc

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eqlint/internal/diag"
	"eqlint/internal/fix"
	"eqlint/internal/markers"
	"eqlint/internal/rules"
	"eqlint/internal/suggest"
	"eqlint/internal/symbols"
)

const shopSrc = `package shop

type Color int

const (
	Red Color = iota
	Blue
)

type Label string

type Tags []string

//eq:equatable
type Base struct {
	//eq:ordered
	Tags []string
}

type Customer struct {
	Name string
}

//eq:equatable
type Product struct {
	SKU string
}

// Order is opted in through Base.
type Order struct {
	Base
	Customer Customer
	//eq:unordered
	Lines []Product
	Extra []Customer
	Counts map[string]*Customer
	Grid [4]int
	Color Color
	Label Label
	Ref *Customer
	note []string
	Any interface{}
	_ int
	A, B []int
	Named Tags
}

//eq:equatable
type Inline struct{ Items []string }
`

func check(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "shop.go", src, parser.ParseComments)
	require.NoError(t, err)
	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	pkg, err := (&types.Config{}).Check("example.com/shop", fset, []*ast.File{f}, info)
	require.NoError(t, err)
	if opts.ReadFile == nil {
		opts.ReadFile = func(string) ([]byte, error) { return []byte(src), nil }
	}
	res, err := FromPackage(fset, &Package{Path: pkg.Path(), Files: []*ast.File{f}, Types: pkg, Info: info}, opts)
	require.NoError(t, err)
	return res
}

func lookup(t *testing.T, g *symbols.Graph, name string) symbols.DeclID {
	t.Helper()
	id, ok := g.LookupDecl("example.com/shop." + name)
	require.True(t, ok, name)
	return id
}

func propNames(g *symbols.Graph, d symbols.DeclID) []string {
	var out []string
	for _, p := range g.Decl(d).Props {
		out = append(out, g.Prop(p).Name)
	}
	return out
}

func TestConvertDeclarations(t *testing.T) {
	res := check(t, shopSrc, Options{})
	g := res.Graph

	order := lookup(t, g, "Order")
	base := lookup(t, g, "Base")
	assert.Equal(t, base, g.Decl(order).Base)
	assert.True(t, g.Decl(base).HasMarker(markers.Equatable))
	assert.False(t, g.Decl(order).HasMarker(markers.Equatable))

	assert.Equal(t, []string{"Customer", "Lines", "Extra", "Counts", "Grid", "Color", "Label", "Ref", "note", "Any", "A", "B", "Named"}, propNames(g, order))

	for _, pid := range g.Decl(order).Props {
		p := g.Prop(pid)
		switch p.Name {
		case "note":
			assert.Equal(t, symbols.AccessPrivate, p.Access)
		case "Lines":
			assert.Equal(t, []string{markers.UnorderedEquality}, p.Markers)
		case "Color":
			assert.Equal(t, symbols.KindEnum, g.Type(p.Type).Kind)
		case "Label":
			assert.Equal(t, symbols.KindPrimitive, g.Type(p.Type).Kind)
		case "Ref":
			assert.Equal(t, symbols.KindNullable, g.Type(p.Type).Kind)
		}
	}
}

func TestConvertedGraphFindings(t *testing.T) {
	res := check(t, shopSrc, Options{})
	g := res.Graph
	e := rules.New(rules.Options{})

	var got []string
	for _, f := range e.Evaluate(g, lookup(t, g, "Order")) {
		got = append(got, f.Code().ID()+" "+strings.Join(f.Args, "/"))
	}
	assert.Equal(t, []string{
		"GE002 Customer/Customer/Order",
		"GE001 Extra/Order",
		"GE003 Extra/Customer/Order",
		"GE001 Counts/Order",
		"GE003 Counts/Customer/Order",
		"GE001 Grid/Order",
		"GE002 Ref/Customer/Order",
		"GE001 A/Order",
		"GE001 B/Order",
		"GE001 Named/Order",
	}, got)

	assert.Empty(t, e.Evaluate(g, lookup(t, g, "Base")))
	assert.Nil(t, e.Evaluate(g, lookup(t, g, "Customer")))
}

func TestFindingSpanIsFieldType(t *testing.T) {
	res := check(t, shopSrc, Options{})
	g := res.Graph
	found := rules.New(rules.Options{}).Evaluate(g, lookup(t, g, "Order"))
	require.NotEmpty(t, found)

	file := res.FileSet.Get(found[0].Span.File)
	require.NotNil(t, file)
	assert.Equal(t, "Customer", string(file.Content[found[0].Span.Start:found[0].Span.End]))

	pos, _, ok := res.Pos(found[0].Span)
	require.True(t, ok)
	assert.Equal(t, 32, res.fset.Position(pos).Line)
}

func TestFixerInsertsDirective(t *testing.T) {
	res := check(t, shopSrc, Options{})
	g := res.Graph
	var diags []*diag.Diagnostic
	for _, f := range rules.New(rules.Options{}).Evaluate(g, lookup(t, g, "Order")) {
		if f.Args[0] == "Extra" || f.Args[0] == "Counts" {
			diags = append(diags, suggest.Diagnostic(g, f, res.Fixer()))
		}
	}
	require.Len(t, diags, 4)

	out, err := fix.Apply(res.FileSet, diags, fix.ApplyOptions{Mode: fix.ApplyModeAll, DryRun: true})
	require.NoError(t, err)
	require.Len(t, out.Applied, 2)
	content := string(out.FileChanges[0].Content)
	assert.Contains(t, content, "\t//eq:unordered\n\tLines []Product\n\t//eq:ordered\n\tExtra []Customer\n")
	assert.Contains(t, content, "\t//eq:dictionary\n\tCounts map[string]*Customer\n")
}

func TestFixerRefusesInlineFields(t *testing.T) {
	res := check(t, shopSrc, Options{})
	g := res.Graph
	found := rules.New(rules.Options{}).Evaluate(g, lookup(t, g, "Inline"))
	require.Len(t, found, 1)

	_, err := res.Fixer().Fix(g, suggest.Suggest(found[0])[0])
	require.ErrorIs(t, err, ErrInlineField)
}

func TestExternalMarkers(t *testing.T) {
	src := `package shop

import "example.com/lib"

//eq:equatable
type Order struct {
	Item lib.Item
	Other lib.Other
}
`
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "shop.go", src, parser.ParseComments)
	require.NoError(t, err)

	libPkg := types.NewPackage("example.com/lib", "lib")
	for _, name := range []string{"Item", "Other"} {
		obj := types.NewTypeName(token.NoPos, libPkg, name, nil)
		types.NewNamed(obj, types.NewStruct(nil, nil), nil)
		libPkg.Scope().Insert(obj)
	}
	libPkg.MarkComplete()

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := &types.Config{Importer: importerFunc(func(path string) (*types.Package, error) { return libPkg, nil })}
	pkg, err := conf.Check("example.com/shop", fset, []*ast.File{f}, info)
	require.NoError(t, err)

	res, err := FromPackage(fset, &Package{Path: pkg.Path(), Files: []*ast.File{f}, Types: pkg, Info: info}, Options{
		ReadFile: func(string) ([]byte, error) { return []byte(src), nil },
		External: func(obj *types.TypeName) []string {
			if obj.Name() == "Item" {
				return []string{"EquatableAttribute"}
			}
			return nil
		},
	})
	require.NoError(t, err)

	found := rules.New(rules.Options{}).Evaluate(res.Graph, lookup(t, res.Graph, "Order"))
	require.Len(t, found, 1)
	assert.Equal(t, []string{"Other", "Other", "Order"}, found[0].Args)
}

func TestExternalEmbeddedBaseOptIn(t *testing.T) {
	src := `package shop

import "example.com/lib"

//eq:equatable
type Order struct {
	Item lib.Item
}
`
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "shop.go", src, parser.ParseComments)
	require.NoError(t, err)

	libPkg := types.NewPackage("example.com/lib", "lib")
	baseObj := types.NewTypeName(token.NoPos, libPkg, "Base", nil)
	baseType := types.NewNamed(baseObj, types.NewStruct(nil, nil), nil)
	libPkg.Scope().Insert(baseObj)
	itemObj := types.NewTypeName(token.NoPos, libPkg, "Item", nil)
	types.NewNamed(itemObj, types.NewStruct([]*types.Var{
		types.NewField(token.NoPos, libPkg, "Base", baseType, true),
	}, nil), nil)
	libPkg.Scope().Insert(itemObj)
	libPkg.MarkComplete()

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := &types.Config{Importer: importerFunc(func(path string) (*types.Package, error) { return libPkg, nil })}
	pkg, err := conf.Check("example.com/shop", fset, []*ast.File{f}, info)
	require.NoError(t, err)

	res, err := FromPackage(fset, &Package{Path: pkg.Path(), Files: []*ast.File{f}, Types: pkg, Info: info}, Options{
		ReadFile: func(string) ([]byte, error) { return []byte(src), nil },
		External: func(obj *types.TypeName) []string {
			if obj.Name() == "Base" {
				return []string{"Equatable"}
			}
			return nil
		},
	})
	require.NoError(t, err)

	g := res.Graph
	item, ok := g.LookupDecl("example.com/lib.Item")
	require.True(t, ok)
	assert.True(t, rules.New(rules.Options{}).IsOptedIn(g, item))
	assert.Empty(t, rules.New(rules.Options{}).Evaluate(g, lookup(t, g, "Order")))
}

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) { return f(path) }

func TestParseDirectives(t *testing.T) {
	cg := &ast.CommentGroup{List: []*ast.Comment{
		{Text: "// Items are kept in order."},
		{Text: "//eq:ordered keep insertion order"},
		{Text: "//eq:ignore,reference"},
		{Text: "// eq:set"},
		{Text: "//eq:custom"},
	}}
	assert.Equal(t, []string{markers.OrderedEquality, markers.IgnoreEquality, markers.ReferenceEquality, "custom"}, parseDirectives(cg, nil))
	assert.Equal(t, "//eq:dictionary", Directive(markers.DictionaryEquality))
}
