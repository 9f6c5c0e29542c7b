package graphdoc

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"gopkg.in/yaml.v3"

	"eqlint/internal/diag"
	"eqlint/internal/fix"
	"eqlint/internal/source"
	"eqlint/internal/suggest"
	"eqlint/internal/symbols"
)

var (
	// ErrNoPosition is returned when a property has no recorded YAML node.
	ErrNoPosition = errors.New("property has no position in the document")
	// ErrUnsupportedLayout is returned for YAML layouts the fixer does not edit,
	// such as flow mappings or multi-line flow sequences.
	ErrUnsupportedLayout = errors.New("unsupported yaml layout for marker insertion")
)

// Fixer returns the edit builder for YAML documents, or nil for formats
// without positions.
func (r *Result) Fixer() suggest.EditBuilder {
	if r.Format != FormatYAML {
		return nil
	}
	return yamlFixer{r: r}
}

type yamlFixer struct{ r *Result }

// Fix adds the marker to the property's markers list, creating the list
// below the type entry when it is missing.
func (f yamlFixer) Fix(g *symbols.Graph, p suggest.Proposal) (diag.Fix, error) {
	prop := g.Prop(p.Prop)
	pd := f.r.props[p.Prop]
	if prop == nil || pd == nil || pd.node == nil {
		return diag.Fix{}, fmt.Errorf("property %d: %w", p.Prop, ErrNoPosition)
	}
	file := f.r.FileSet.Get(f.r.File)
	if file == nil {
		return diag.Fix{}, fmt.Errorf("%s: %w", prop.Name, ErrNoPosition)
	}
	node := pd.node
	if node.Kind != yaml.MappingNode || node.Style&yaml.FlowStyle != 0 {
		return diag.Fix{}, fmt.Errorf("%s: %w", prop.Name, ErrUnsupportedLayout)
	}
	opts := []fix.Option{fix.WithEquivalenceKey(p.EquivalenceKey)}

	seq := mappingValue(node, "markers")
	switch {
	case seq == nil:
		key, val := mappingKey(node, "type"), mappingValue(node, "type")
		if key == nil || val == nil || val.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
			return diag.Fix{}, fmt.Errorf("%s: %w", prop.Name, ErrUnsupportedLayout)
		}
		at, prefix := f.lineAfter(val.Line)
		text := prefix + strings.Repeat(" ", key.Column-1) + "markers: [" + p.Marker + "]\n"
		return fix.InsertText(p.Title, at, text, "", opts...), nil

	case seq.Kind == yaml.SequenceNode && seq.Style&yaml.FlowStyle != 0:
		line := f.line(seq.Line)
		start := seq.Column - 1
		if start < 0 || start >= len(line) || line[start] != '[' {
			return diag.Fix{}, fmt.Errorf("%s: %w", prop.Name, ErrUnsupportedLayout)
		}
		end := strings.IndexByte(line[start:], ']')
		if end < 0 {
			return diag.Fix{}, fmt.Errorf("%s: %w", prop.Name, ErrUnsupportedLayout)
		}
		text := p.Marker
		if len(seq.Content) > 0 {
			text = ", " + p.Marker
		}
		at := f.offset(seq.Line, start+end)
		return fix.InsertText(p.Title, at, text, "", opts...), nil

	case seq.Kind == yaml.SequenceNode && len(seq.Content) > 0:
		last := seq.Content[len(seq.Content)-1]
		line := f.line(last.Line)
		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		if !strings.HasPrefix(line[len(indent):], "- ") {
			return diag.Fix{}, fmt.Errorf("%s: %w", prop.Name, ErrUnsupportedLayout)
		}
		at, prefix := f.lineAfter(last.Line)
		return fix.InsertText(p.Title, at, prefix+indent+"- "+p.Marker+"\n", "", opts...), nil
	}
	return diag.Fix{}, fmt.Errorf("%s: %w", prop.Name, ErrUnsupportedLayout)
}

func (f yamlFixer) line(n int) string {
	file := f.r.FileSet.Get(f.r.File)
	ln, err := safecast.Conv[uint32](n)
	if err != nil {
		return ""
	}
	return file.GetLine(ln)
}

// offset returns an empty span at the 0-based byte column of a 1-based line.
func (f yamlFixer) offset(line, col int) source.Span {
	file := f.r.FileSet.Get(f.r.File)
	ln, _ := safecast.Conv[uint32](line)
	c, _ := safecast.Conv[uint32](col)
	off := file.LineStart(ln) + c
	return source.Span{File: f.r.File, Start: off, End: off}
}

// lineAfter returns the insertion point at the start of the line following
// line. When line is the last one and lacks a newline, prefix supplies it.
func (f yamlFixer) lineAfter(line int) (at source.Span, prefix string) {
	file := f.r.FileSet.Get(f.r.File)
	ln, _ := safecast.Conv[uint32](line + 1)
	off := file.LineStart(ln)
	if int(off) == len(file.Content) && len(file.Content) > 0 && file.Content[len(file.Content)-1] != '\n' {
		prefix = "\n"
	}
	return source.Span{File: f.r.File, Start: off, End: off}, prefix
}
