package gosrc

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
)

// SourceDirectives returns an Options.External callback that reads the
// //eq: directives of types declared outside the converted packages from
// their source files. Positions are resolved through fset, the file set the
// imported packages were loaded into. Files are parsed once.
func SourceDirectives(fset *token.FileSet) func(*types.TypeName) []string {
	r := &directiveReader{
		fset:  fset,
		parse: token.NewFileSet(),
		files: make(map[string]*ast.File),
	}
	return r.lookup
}

type directiveReader struct {
	fset  *token.FileSet
	parse *token.FileSet
	files map[string]*ast.File // nil entries remember unparsable files
}

func (r *directiveReader) lookup(obj *types.TypeName) []string {
	if obj == nil || !obj.Pos().IsValid() {
		return nil
	}
	name := r.fset.Position(obj.Pos()).Filename
	if name == "" {
		return nil
	}
	f, ok := r.files[name]
	if !ok {
		f, _ = parser.ParseFile(r.parse, name, nil, parser.ParseComments|parser.SkipObjectResolution)
		r.files[name] = f
	}
	if f == nil {
		return nil
	}
	for _, d := range f.Decls {
		gen, ok := d.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, s := range gen.Specs {
			spec, ok := s.(*ast.TypeSpec)
			if !ok || spec.Name.Name != obj.Name() {
				continue
			}
			docs := []*ast.CommentGroup{spec.Doc}
			if !gen.Lparen.IsValid() {
				docs = append(docs, gen.Doc)
			}
			return parseDirectives(docs...)
		}
	}
	return nil
}
