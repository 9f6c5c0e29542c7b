package gosrc

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"

	"fortio.org/safecast"
	"golang.org/x/tools/go/types/typeutil"

	"eqlint/internal/classify"
	"eqlint/internal/diag"
	"eqlint/internal/markers"
	"eqlint/internal/source"
	"eqlint/internal/symbols"
)

// Package is the syntax and type information of one Go package.
type Package struct {
	Path  string
	Files []*ast.File
	Types *types.Package
	Info  *types.Info
}

// Options tune the conversion.
type Options struct {
	// ReadFile returns the raw bytes go/token saw for a file. Defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)
	// External returns markers for named types outside the converted packages.
	External func(obj *types.TypeName) []string
}

// fieldInfo remembers where a property came from so fixes can be placed.
type fieldInfo struct {
	inline bool // field starts on the struct's opening line
}

type converter struct {
	fset  *token.FileSet
	b     *symbols.Builder
	sfs   *source.FileSet
	opts  Options
	diags []*diag.Diagnostic

	files    map[*token.File]source.FileID
	tokFiles map[source.FileID]*token.File
	types    typeutil.Map // types.Type -> symbols.TypeID
	decls    map[*types.TypeName]symbols.DeclID
	enums    map[*types.TypeName]bool
	visiting map[*types.TypeName]bool
	fields   map[symbols.PropID]fieldInfo
}

func newConverter(fset *token.FileSet, sfs *source.FileSet, opts Options) *converter {
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	return &converter{
		fset:     fset,
		b:        symbols.NewBuilder(symbols.Hints{}),
		sfs:      sfs,
		opts:     opts,
		files:    make(map[*token.File]source.FileID),
		tokFiles: make(map[source.FileID]*token.File),
		decls:    make(map[*types.TypeName]symbols.DeclID),
		enums:    make(map[*types.TypeName]bool),
		visiting: make(map[*types.TypeName]bool),
		fields:   make(map[symbols.PropID]fieldInfo),
	}
}

type structDecl struct {
	obj  *types.TypeName
	spec *ast.TypeSpec
	st   *ast.StructType
	id   symbols.DeclID
	info *types.Info
}

// convert declares every struct of every package first so cross-package
// references resolve to real declarations, then converts members.
func (c *converter) convert(pkgs []*Package) (*symbols.Graph, error) {
	var all []structDecl
	for _, p := range pkgs {
		all = append(all, c.declarePackage(p)...)
	}
	for _, sd := range all {
		c.members(sd)
	}
	g, err := c.b.Build()
	if err != nil {
		return nil, fmt.Errorf("build symbol graph: %w", err)
	}
	return g, nil
}

func (c *converter) declarePackage(p *Package) []structDecl {
	var out []structDecl
	for _, f := range p.Files {
		for _, d := range f.Decls {
			gen, ok := d.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, s := range gen.Specs {
				spec, ok := s.(*ast.TypeSpec)
				if !ok || spec.Assign.IsValid() {
					continue
				}
				st, ok := spec.Type.(*ast.StructType)
				if !ok {
					continue
				}
				obj, ok := p.Info.Defs[spec.Name].(*types.TypeName)
				if !ok {
					continue
				}
				docs := []*ast.CommentGroup{spec.Doc}
				if !gen.Lparen.IsValid() {
					docs = append(docs, gen.Doc)
				}
				id := c.b.Declare(p.Path, obj.Name(), symbols.KindStruct,
					c.span(spec.Name.Pos(), spec.Name.End()), parseDirectives(docs...)...)
				c.decls[obj] = id
				out = append(out, structDecl{obj: obj, spec: spec, st: st, id: id, info: p.Info})
			}
		}
	}
	return out
}

func (c *converter) members(sd structDecl) {
	if sd.st.Fields == nil {
		return
	}
	structLine := c.fset.Position(sd.st.Struct).Line
	baseSet := false
	for _, field := range sd.st.Fields.List {
		t := sd.info.TypeOf(field.Type)
		if len(field.Names) == 0 {
			if !baseSet {
				if base, ok := c.embeddedBase(t); ok {
					c.b.SetBase(sd.id, base)
					baseSet = true
				}
			}
			continue
		}
		typeID := c.typeOf(t)
		mk := parseDirectives(field.Doc)
		inline := c.fset.Position(field.Pos()).Line == structLine
		for _, name := range field.Names {
			if name.Name == "_" {
				continue
			}
			access := symbols.AccessPrivate
			if name.IsExported() {
				access = symbols.AccessPublic
			}
			pid := c.b.AddProperty(sd.id, symbols.Property{
				Name:     name.Name,
				Type:     typeID,
				Access:   access,
				Markers:  mk,
				TypeSpan: c.span(field.Type.Pos(), field.Type.End()),
				Span:     c.span(name.Pos(), field.End()),
			})
			c.fields[pid] = fieldInfo{inline: inline}
		}
	}
}

// embeddedBase resolves an embedded field to a struct declaration.
func (c *converter) embeddedBase(t types.Type) (symbols.DeclID, bool) {
	if t == nil {
		return symbols.NoDeclID, false
	}
	if p, ok := types.Unalias(t).(*types.Pointer); ok {
		t = p.Elem()
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return symbols.NoDeclID, false
	}
	if _, ok := named.Underlying().(*types.Struct); !ok {
		return symbols.NoDeclID, false
	}
	return c.declOf(named.Origin().Obj()), true
}

// declOf returns the declaration for a named struct, creating a stub for
// types outside the converted packages.
func (c *converter) declOf(obj *types.TypeName) symbols.DeclID {
	if id, ok := c.decls[obj]; ok {
		return id
	}
	var mk []string
	if c.opts.External != nil {
		mk = markers.CanonicalAll(c.opts.External(obj))
	}
	id := c.b.Declare(pkgPath(obj), obj.Name(), symbols.KindStruct, source.Span{}, mk...)
	c.decls[obj] = id
	// external stubs carry no fields, but their first embedded struct still
	// counts as the base so an inherited opt-in is seen
	if st, ok := obj.Type().Underlying().(*types.Struct); ok {
		for i := 0; i < st.NumFields(); i++ {
			if !st.Field(i).Embedded() {
				continue
			}
			if base, ok := c.embeddedBase(st.Field(i).Type()); ok {
				c.b.SetBase(id, base)
				break
			}
		}
	}
	return id
}

func (c *converter) typeOf(t types.Type) symbols.TypeID {
	if t == nil {
		return symbols.NoTypeID
	}
	if id, ok := c.types.At(t).(symbols.TypeID); ok {
		return id
	}
	id := c.convertType(t)
	c.types.Set(t, id)
	return id
}

func (c *converter) convertType(t types.Type) symbols.TypeID {
	switch tt := types.Unalias(t).(type) {
	case *types.Basic:
		kind := symbols.KindPrimitive
		if tt.Kind() == types.UnsafePointer || tt.Kind() == types.Invalid {
			kind = symbols.KindOther
		}
		return c.b.Named("", tt.Name(), kind)
	case *types.Pointer:
		return c.b.NullableOf(c.typeOf(tt.Elem()))
	case *types.Slice:
		return c.b.Generic(classify.BuiltinSlice, symbols.KindOther, c.typeOf(tt.Elem()))
	case *types.Array:
		return c.b.ArrayOf(c.typeOf(tt.Elem()))
	case *types.Map:
		return c.b.Generic(classify.BuiltinMap, symbols.KindOther, c.typeOf(tt.Key()), c.typeOf(tt.Elem()))
	case *types.Named:
		return c.named(tt)
	case *types.Struct:
		return c.b.Intern("", symbols.Type{Name: "struct{...}", Kind: symbols.KindStruct})
	case *types.Interface:
		return c.b.Intern("", symbols.Type{Name: tt.String(), Kind: symbols.KindInterface})
	case *types.TypeParam:
		return c.b.Intern("", symbols.Type{Name: tt.Obj().Name(), Kind: symbols.KindTypeParam})
	default:
		return c.b.Intern("", symbols.Type{Name: t.String(), Kind: symbols.KindOther})
	}
}

func (c *converter) named(n *types.Named) symbols.TypeID {
	obj := n.Obj()
	ns := pkgPath(obj)
	if obj.Pkg() == nil {
		// predeclared error and comparable
		return c.b.Named("", obj.Name(), symbols.KindInterface)
	}
	if args := n.TypeArgs(); args != nil && args.Len() > 0 {
		return c.instance(n)
	}
	if c.visiting[obj] {
		return c.b.Named(ns, obj.Name(), symbols.KindOther)
	}
	c.visiting[obj] = true
	defer delete(c.visiting, obj)

	key := "named:" + ns + "." + obj.Name()
	switch u := n.Underlying().(type) {
	case *types.Struct:
		return c.b.Decl(c.declOf(obj)).Type
	case *types.Basic:
		kind := symbols.KindPrimitive
		if c.isEnum(obj) {
			kind = symbols.KindEnum
		}
		return c.b.Intern(key, symbols.Type{Namespace: ns, Name: obj.Name(), Kind: kind})
	case *types.Slice:
		elem := c.typeOf(u.Elem())
		return c.b.Intern(key, symbols.Type{Namespace: ns, Name: obj.Name(), Kind: symbols.KindOther, Origin: classify.BuiltinSlice, Args: []symbols.TypeID{elem}})
	case *types.Map:
		k, v := c.typeOf(u.Key()), c.typeOf(u.Elem())
		return c.b.Intern(key, symbols.Type{Namespace: ns, Name: obj.Name(), Kind: symbols.KindOther, Origin: classify.BuiltinMap, Args: []symbols.TypeID{k, v}})
	case *types.Array:
		// fixed-size named arrays (uuid.UUID, digests) compare as values
		return c.b.Intern(key, symbols.Type{Namespace: ns, Name: obj.Name(), Kind: symbols.KindOther})
	case *types.Pointer:
		elem := c.typeOf(u.Elem())
		return c.b.Intern(key, symbols.Type{Namespace: ns, Name: obj.Name(), Kind: symbols.KindNullable, Elem: elem})
	case *types.Interface:
		return c.b.Intern(key, symbols.Type{Namespace: ns, Name: obj.Name(), Kind: symbols.KindInterface})
	default:
		return c.b.Intern(key, symbols.Type{Namespace: ns, Name: obj.Name(), Kind: symbols.KindOther})
	}
}

// instance converts an instantiated generic type. The origin name is the
// qualified generic definition so set libraries match the classify tables.
func (c *converter) instance(n *types.Named) symbols.TypeID {
	obj := n.Obj()
	ns := pkgPath(obj)
	args := make([]symbols.TypeID, 0, n.TypeArgs().Len())
	for i := range n.TypeArgs().Len() {
		args = append(args, c.typeOf(n.TypeArgs().At(i)))
	}
	kind := symbols.KindOther
	var decl symbols.DeclID
	switch n.Underlying().(type) {
	case *types.Struct:
		kind = symbols.KindStruct
		decl = c.declOf(n.Origin().Obj())
	case *types.Interface:
		kind = symbols.KindInterface
	}
	t := symbols.Type{
		Namespace: ns,
		Name:      obj.Name(),
		Kind:      kind,
		Origin:    ns + "." + obj.Name(),
		Args:      args,
		Decl:      decl,
	}
	return c.b.Intern("", t)
}

// isEnum reports whether the package declares constants of the named type.
func (c *converter) isEnum(obj *types.TypeName) bool {
	if v, ok := c.enums[obj]; ok {
		return v
	}
	found := false
	if pkg := obj.Pkg(); pkg != nil {
		scope := pkg.Scope()
		for _, name := range scope.Names() {
			if k, ok := scope.Lookup(name).(*types.Const); ok && types.Identical(k.Type(), obj.Type()) {
				found = true
				break
			}
		}
	}
	c.enums[obj] = found
	return found
}

func (c *converter) span(pos, end token.Pos) source.Span {
	tf := c.fset.File(pos)
	if tf == nil {
		return source.Span{}
	}
	id := c.fileID(tf)
	return source.Span{File: id, Start: offset(tf, pos), End: offset(tf, end)}
}

func (c *converter) fileID(tf *token.File) source.FileID {
	if id, ok := c.files[tf]; ok {
		return id
	}
	content, err := c.opts.ReadFile(tf.Name())
	var id source.FileID
	if err != nil {
		id = c.sfs.AddVirtual(tf.Name(), nil)
		c.diags = append(c.diags, diag.NewFromCode(diag.IOLoadFileError, source.Span{File: id}, err.Error()))
	} else {
		id = c.sfs.Add(tf.Name(), content, 0)
	}
	c.files[tf] = id
	c.tokFiles[id] = tf
	return id
}

func offset(tf *token.File, pos token.Pos) uint32 {
	if !pos.IsValid() {
		return 0
	}
	v, err := safecast.Conv[uint32](tf.Offset(pos))
	if err != nil {
		return 0
	}
	return v
}

func pkgPath(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return ""
	}
	return obj.Pkg().Path()
}
