package graphdoc

import (
	"fmt"
	"os"
	"strings"

	"fortio.org/safecast"

	"eqlint/internal/classify"
	"eqlint/internal/diag"
	"eqlint/internal/markers"
	"eqlint/internal/source"
	"eqlint/internal/symbols"
)

// Options tune the conversion of a document.
type Options struct {
	// Tables lists the recognized generic and value type names used to
	// resolve short names like List or DateTime. Zero means the defaults.
	Tables classify.Tables
}

// Result is a converted document.
type Result struct {
	Graph   *symbols.Graph
	FileSet *source.FileSet
	File    source.FileID
	Format  Format
	// Diagnostics lists unresolved names and invalid entries.
	Diagnostics []*diag.Diagnostic

	props map[symbols.PropID]*PropDoc
}

// Load reads the document at path into a new file set.
func Load(path string, opts Options) (*Result, error) {
	sfs := source.NewFileSet()
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph document: %w", err)
	}
	return LoadBytes(sfs, path, data, opts)
}

// LoadBytes converts data, registering it in sfs under path. The format is
// chosen by the path's extension.
func LoadBytes(sfs *source.FileSet, path string, data []byte, opts Options) (*Result, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	var id source.FileID
	switch format {
	case FormatMsgpack:
		id = sfs.Add(path, nil, 0)
	default:
		id = sfs.Add(path, data, 0)
	}
	return Build(doc, sfs, id, format, opts)
}

// Build converts doc into a symbol graph. Positions recorded in the
// document are resolved against the file id in sfs.
func Build(doc *Document, sfs *source.FileSet, file source.FileID, format Format, opts Options) (*Result, error) {
	tables := opts.Tables
	if tables.List == nil && tables.Set == nil && tables.Dictionary == nil && tables.ValueTypes == nil {
		tables = classify.DefaultTables()
	}
	bld := &builder{
		doc:    doc,
		sfs:    sfs,
		file:   file,
		b:      symbols.NewBuilder(hintsFor(doc)),
		names:  newNameIndex(tables),
		decls:  make(map[string]symbols.DeclID),
		simple: make(map[string][]symbols.DeclID),
		ext:    make(map[string]int),
		props:  make(map[symbols.PropID]*PropDoc),
	}
	g, err := bld.build()
	if err != nil {
		return nil, err
	}
	return &Result{
		Graph:       g,
		FileSet:     sfs,
		File:        file,
		Format:      format,
		Diagnostics: bld.diags,
		props:       bld.props,
	}, nil
}

func hintsFor(doc *Document) symbols.Hints {
	props := 0
	for i := range doc.Declarations {
		props += len(doc.Declarations[i].Properties)
	}
	return symbols.Hints{
		Types: uint(len(doc.Types) + props),
		Decls: uint(len(doc.Declarations)),
		Props: uint(props),
	}
}

type builder struct {
	doc   *Document
	sfs   *source.FileSet
	file  source.FileID
	b     *symbols.Builder
	names nameIndex
	diags []*diag.Diagnostic

	decls  map[string]symbols.DeclID   // qualified name -> decl
	simple map[string][]symbols.DeclID // simple name -> decls
	ext    map[string]int              // qualified and simple name -> index into doc.Types
	props  map[symbols.PropID]*PropDoc
}

func (bld *builder) build() (*symbols.Graph, error) {
	for i := range bld.doc.Types {
		t := &bld.doc.Types[i]
		name := strings.TrimPrefix(strings.TrimSpace(t.Name), "global::")
		if name == "" {
			bld.errorf(t.pos, "type entry %d has no name", i)
			continue
		}
		bld.ext[name] = i
		if _, short := splitName(name); short != name {
			if _, taken := bld.ext[short]; !taken {
				bld.ext[short] = i
			}
		}
	}

	ids := make([]symbols.DeclID, len(bld.doc.Declarations))
	for i := range bld.doc.Declarations {
		d := &bld.doc.Declarations[i]
		name := strings.TrimPrefix(strings.TrimSpace(d.Name), "global::")
		if name == "" {
			bld.errorf(d.pos, "declaration %d has no name", i)
			continue
		}
		kind := symbols.KindClass
		if d.Kind != "" {
			k, ok := symbols.ParseTypeKind(d.Kind)
			if !ok || (k != symbols.KindClass && k != symbols.KindStruct) {
				bld.errorf(d.pos, "declaration %s has unsupported kind %q", name, d.Kind)
			} else {
				kind = k
			}
		}
		if _, dup := bld.decls[name]; dup {
			return nil, fmt.Errorf("%w: %s", symbols.ErrDuplicateDecl, name)
		}
		ns, short := splitName(name)
		id := bld.b.Declare(ns, short, kind, bld.span(d.pos, len(short)), markers.CanonicalAll(d.Markers)...)
		ids[i] = id
		bld.decls[name] = id
		bld.simple[short] = append(bld.simple[short], id)
	}

	for i := range bld.doc.Declarations {
		d := &bld.doc.Declarations[i]
		id := ids[i]
		if !id.IsValid() {
			continue
		}
		if base := strings.TrimSpace(d.Base); base != "" {
			if bid, ok := bld.lookupDecl(base); ok {
				bld.b.SetBase(id, bid)
			} else {
				bld.errorf(d.basePos, "base %q of %s is not declared", base, d.Name)
			}
		}
		for j := range d.Properties {
			bld.property(id, &d.Properties[j])
		}
	}
	return bld.b.Build()
}

func (bld *builder) property(decl symbols.DeclID, p *PropDoc) {
	switch strings.ToLower(strings.TrimSpace(p.Member)) {
	case "", "property":
	case "field":
		return
	default:
		bld.errorf(p.pos, "member %s has unsupported member kind %q", p.Name, p.Member)
		return
	}
	access := symbols.AccessPublic
	if p.Access != "" {
		a, ok := symbols.ParseAccessibility(p.Access)
		if !ok {
			bld.errorf(p.pos, "member %s has unknown accessibility %q", p.Name, p.Access)
		}
		access = a
	}
	typeSpan := bld.span(p.typePos, len(p.Type))
	expr, err := parseTypeExpr(p.Type)
	var typ symbols.TypeID
	if err != nil {
		bld.errorf(p.typePos, "%v", err)
		typ = bld.b.Named("", strings.TrimSpace(p.Type), symbols.KindUnknown)
	} else {
		typ = bld.resolve(expr, p.typePos)
	}
	id := bld.b.AddProperty(decl, symbols.Property{
		Name:     p.Name,
		Type:     typ,
		Access:   access,
		Markers:  markers.CanonicalAll(p.Markers),
		TypeSpan: typeSpan,
		Span:     bld.span(p.pos, len(p.Name)),
	})
	if id.IsValid() {
		bld.props[id] = p
	}
}

// resolve turns a parsed expression into a type, applying suffixes innermost first.
func (bld *builder) resolve(e *typeExpr, pos Pos) symbols.TypeID {
	id := bld.resolveBase(e, pos)
	for _, s := range e.Suffixes {
		if s == '?' {
			id = bld.b.NullableOf(id)
		} else {
			id = bld.b.ArrayOf(id)
		}
	}
	return id
}

func (bld *builder) resolveBase(e *typeExpr, pos Pos) symbols.TypeID {
	if len(e.Args) > 0 {
		args := make([]symbols.TypeID, len(e.Args))
		for i, a := range e.Args {
			args[i] = bld.resolve(a, pos)
		}
		if did, ok := bld.lookupDecl(e.Name); ok {
			d := bld.b.Decl(did)
			ns, name := splitName(d.QualifiedName)
			kind := symbols.KindClass
			if t := bld.b.Type(d.Type); t != nil {
				kind = t.Kind
			}
			return bld.b.Intern("", symbols.Type{
				Namespace: ns, Name: name, Kind: kind,
				Origin: d.QualifiedName, Args: args, Decl: did,
			})
		}
		origin, kind := bld.names.generic(e.Name)
		return bld.b.Generic(origin, kind, args...)
	}

	if prim, ok := keywords[e.Name]; ok {
		ns, name := splitName(prim.name)
		return bld.b.Named(ns, name, prim.kind)
	}
	if did, ok := bld.lookupDecl(e.Name); ok {
		return bld.b.Decl(did).Type
	}
	if i, ok := bld.ext[e.Name]; ok {
		return bld.external(&bld.doc.Types[i])
	}
	if q, ok := bld.names.value(e.Name); ok {
		ns, name := splitName(q)
		return bld.b.Named(ns, name, symbols.KindStruct)
	}
	bld.errorf(pos, "unknown type %q", e.Name)
	ns, name := splitName(e.Name)
	return bld.b.Named(ns, name, symbols.KindUnknown)
}

func (bld *builder) external(t *TypeDoc) symbols.TypeID {
	kind := symbols.KindClass
	if t.Kind != "" {
		k, ok := symbols.ParseTypeKind(t.Kind)
		if !ok {
			bld.errorf(t.pos, "type %s has unknown kind %q", t.Name, t.Kind)
		}
		kind = k
	}
	ns, name := splitName(strings.TrimPrefix(strings.TrimSpace(t.Name), "global::"))
	return bld.b.Intern("ext:"+ns+"."+name, symbols.Type{
		Namespace: ns,
		Name:      name,
		Kind:      kind,
		Markers:   markers.CanonicalAll(t.Markers),
	})
}

// lookupDecl resolves a qualified name, or a simple name that matches
// exactly one declaration.
func (bld *builder) lookupDecl(name string) (symbols.DeclID, bool) {
	name = strings.TrimPrefix(name, "global::")
	if id, ok := bld.decls[name]; ok {
		return id, true
	}
	if ids := bld.simple[name]; len(ids) == 1 {
		return ids[0], true
	}
	return symbols.NoDeclID, false
}

func (bld *builder) span(pos Pos, width int) source.Span {
	if !pos.IsKnown() {
		return source.Span{File: bld.file}
	}
	line, err := safecast.Conv[uint32](pos.Line)
	if err != nil {
		return source.Span{File: bld.file}
	}
	col, err := safecast.Conv[uint32](pos.Col)
	if err != nil {
		return source.Span{File: bld.file}
	}
	w, err := safecast.Conv[uint32](width)
	if err != nil {
		w = 0
	}
	start := bld.sfs.Offset(bld.file, source.LineCol{Line: line, Col: col})
	end := start + w
	if f := bld.sfs.Get(bld.file); f != nil && int(end) > len(f.Content) {
		end = start
	}
	return source.Span{File: bld.file, Start: start, End: end}
}

func (bld *builder) errorf(pos Pos, format string, args ...any) {
	bld.diags = append(bld.diags, diag.NewFromCode(diag.IOGraphDocError, bld.span(pos, 0), fmt.Sprintf(format, args...)))
}

func splitName(q string) (namespace, name string) {
	if i := strings.LastIndexByte(q, '.'); i >= 0 {
		return q[:i], q[i+1:]
	}
	return "", q
}
