package driver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// FileFilter decides which files diagnostics are reported for. Patterns
// containing a slash match the slash separated path relative to the base
// directory; other patterns match the file name.
type FileFilter struct {
	base    string
	include []pattern
	exclude []pattern
}

type pattern struct {
	g       glob.Glob
	useBase bool
}

// NewFileFilter compiles include and exclude patterns. An empty include list
// includes everything.
func NewFileFilter(base string, include, exclude []string) (*FileFilter, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve filter base: %w", err)
	}
	f := &FileFilter{base: abs}
	if f.include, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if f.exclude, err = compilePatterns(exclude); err != nil {
		return nil, err
	}
	return f, nil
}

func compilePatterns(list []string) ([]pattern, error) {
	out := make([]pattern, 0, len(list))
	for _, p := range list {
		p = filepath.ToSlash(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", p, err)
		}
		out = append(out, pattern{g: g, useBase: !strings.Contains(p, "/")})
	}
	return out, nil
}

// Match reports whether path passes the filter. A nil filter and an empty
// path match.
func (f *FileFilter) Match(path string) bool {
	if f == nil || path == "" {
		return true
	}
	rel := path
	if abs, err := filepath.Abs(path); err == nil {
		if r, err := filepath.Rel(f.base, abs); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)
	name := filepath.Base(path)

	if len(f.include) > 0 && !matchAny(f.include, rel, name) {
		return false
	}
	return !matchAny(f.exclude, rel, name)
}

func matchAny(ps []pattern, rel, name string) bool {
	for _, p := range ps {
		subject := rel
		if p.useBase {
			subject = name
		}
		if p.g.Match(subject) {
			return true
		}
	}
	return false
}
