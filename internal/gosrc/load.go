package gosrc

import (
	"context"
	"errors"
	"fmt"
	"go/token"

	"golang.org/x/tools/go/packages"

	"eqlint/internal/diag"
	"eqlint/internal/source"
	"eqlint/internal/symbols"
)

// LoadMode is the information Load asks go/packages for.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// ErrNoPackages is returned when the patterns match nothing.
var ErrNoPackages = errors.New("no packages matched")

// Result is a converted package set.
type Result struct {
	Graph   *symbols.Graph
	FileSet *source.FileSet
	// Diagnostics lists load problems (package errors, unreadable files).
	Diagnostics []*diag.Diagnostic
	Packages    []string

	fset     *token.FileSet
	tokFiles map[source.FileID]*token.File
	fields   map[symbols.PropID]fieldInfo
}

// LoadConfig configures Load.
type LoadConfig struct {
	Dir        string
	BuildFlags []string
	Env        []string
	// Options.External defaults to SourceDirectives.
	Options Options
}

// Load type-checks the packages matching patterns and converts them.
// Packages with errors are converted as far as type information allows and
// their errors are reported as diagnostics.
func Load(ctx context.Context, cfg LoadConfig, patterns ...string) (*Result, error) {
	fset := token.NewFileSet()
	pcfg := &packages.Config{
		Context:    ctx,
		Mode:       LoadMode,
		Dir:        cfg.Dir,
		BuildFlags: cfg.BuildFlags,
		Env:        cfg.Env,
		Fset:       fset,
	}
	pkgs, err := packages.Load(pcfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoPackages, patterns)
	}

	opts := cfg.Options
	if opts.External == nil {
		opts.External = SourceDirectives(fset)
	}
	sfs := source.NewFileSetWithBase(cfg.Dir)
	var (
		inputs []*Package
		diags  []*diag.Diagnostic
		paths  []string
	)
	for _, p := range pkgs {
		for _, e := range p.Errors {
			diags = append(diags, diag.NewFromCode(diag.IOLoadPackageError, source.Span{}, p.PkgPath, e.Msg))
		}
		if p.Types == nil || p.TypesInfo == nil {
			continue
		}
		paths = append(paths, p.PkgPath)
		inputs = append(inputs, &Package{Path: p.PkgPath, Files: p.Syntax, Types: p.Types, Info: p.TypesInfo})
	}
	return convertAll(fset, sfs, inputs, opts, diags, paths)
}

// FromPackage converts a single already type-checked package.
func FromPackage(fset *token.FileSet, pkg *Package, opts Options) (*Result, error) {
	return convertAll(fset, source.NewFileSet(), []*Package{pkg}, opts, nil, []string{pkg.Path})
}

func convertAll(fset *token.FileSet, sfs *source.FileSet, pkgs []*Package, opts Options, diags []*diag.Diagnostic, paths []string) (*Result, error) {
	c := newConverter(fset, sfs, opts)
	g, err := c.convert(pkgs)
	if err != nil {
		return nil, err
	}
	return &Result{
		Graph:       g,
		FileSet:     sfs,
		Diagnostics: append(diags, c.diags...),
		Packages:    paths,
		fset:        fset,
		tokFiles:    c.tokFiles,
		fields:      c.fields,
	}, nil
}

// Pos maps a source span back to token positions.
func (r *Result) Pos(sp source.Span) (pos, end token.Pos, ok bool) {
	tf := r.tokFiles[sp.File]
	if tf == nil {
		return token.NoPos, token.NoPos, false
	}
	if int(sp.End) > tf.Size() || sp.Start > sp.End {
		return token.NoPos, token.NoPos, false
	}
	return tf.Pos(int(sp.Start)), tf.Pos(int(sp.End)), true
}
