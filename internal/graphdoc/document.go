package graphdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the document version written by Export.
const CurrentVersion = 1

// ErrUnknownFormat is returned for file extensions and format names that do
// not map to a document encoding.
var ErrUnknownFormat = errors.New("unknown graph document format")

// Format is a document encoding.
type Format uint8

const (
	FormatYAML Format = iota
	FormatJSON
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	}
	return "unknown"
}

// ParseFormat maps a format name to Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "mpk", "mp":
		return FormatMsgpack, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return 0, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// IsDocumentPath reports whether path looks like a graph document.
func IsDocumentPath(path string) bool {
	_, err := FormatFor(path)
	return err == nil
}

// Document is a serialized symbol graph.
type Document struct {
	Version      int       `yaml:"version" json:"version" msgpack:"version"`
	Types        []TypeDoc `yaml:"types,omitempty" json:"types,omitempty" msgpack:"types,omitempty"`
	Declarations []DeclDoc `yaml:"declarations" json:"declarations" msgpack:"declarations"`
}

// TypeDoc describes a type referenced by the document but declared elsewhere.
type TypeDoc struct {
	Name    string   `yaml:"name" json:"name" msgpack:"name"`
	Kind    string   `yaml:"kind" json:"kind" msgpack:"kind"`
	Markers []string `yaml:"markers,omitempty" json:"markers,omitempty" msgpack:"markers,omitempty"`

	pos Pos
}

// DeclDoc describes a declared class or struct.
type DeclDoc struct {
	Name       string    `yaml:"name" json:"name" msgpack:"name"`
	Kind       string    `yaml:"kind,omitempty" json:"kind,omitempty" msgpack:"kind,omitempty"`
	Base       string    `yaml:"base,omitempty" json:"base,omitempty" msgpack:"base,omitempty"`
	Markers    []string  `yaml:"markers,omitempty" json:"markers,omitempty" msgpack:"markers,omitempty"`
	Properties []PropDoc `yaml:"properties,omitempty" json:"properties,omitempty" msgpack:"properties,omitempty"`

	pos     Pos
	basePos Pos
}

// PropDoc describes a member. Members whose Member is "field" are read but
// never become properties.
type PropDoc struct {
	Name    string   `yaml:"name" json:"name" msgpack:"name"`
	Type    string   `yaml:"type" json:"type" msgpack:"type"`
	Access  string   `yaml:"access,omitempty" json:"access,omitempty" msgpack:"access,omitempty"`
	Member  string   `yaml:"member,omitempty" json:"member,omitempty" msgpack:"member,omitempty"`
	Markers []string `yaml:"markers,omitempty" json:"markers,omitempty" msgpack:"markers,omitempty"`

	pos     Pos
	typePos Pos
	node    *yaml.Node
}

// Pos is a 1-based line and column inside a YAML document. The zero Pos
// means unknown.
type Pos struct {
	Line int
	Col  int
}

// IsKnown reports whether the position was recorded.
func (p Pos) IsKnown() bool { return p.Line > 0 }

// Decode parses a document in the given format.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("failed to parse yaml document: %w", err)
		}
		if len(root.Content) == 0 {
			return &Document{Version: CurrentVersion}, nil
		}
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode yaml document: %w", err)
		}
		annotate(&doc, root.Content[0])
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode json document: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode msgpack document: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
	if doc.Version > CurrentVersion {
		return nil, fmt.Errorf("unsupported graph document version %d", doc.Version)
	}
	return &doc, nil
}

// Encode writes doc in the given format.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml document: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json document: %w", err)
		}
		return nil
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode msgpack document: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownFormat, format)
}

// annotate copies node positions from the YAML tree onto the decoded document.
func annotate(doc *Document, root *yaml.Node) {
	if root.Kind != yaml.MappingNode {
		return
	}
	if seq := mappingValue(root, "types"); seq != nil && seq.Kind == yaml.SequenceNode {
		for i, n := range seq.Content {
			if i < len(doc.Types) {
				doc.Types[i].pos = nodePos(n)
			}
		}
	}
	seq := mappingValue(root, "declarations")
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return
	}
	for i, dn := range seq.Content {
		if i >= len(doc.Declarations) {
			break
		}
		d := &doc.Declarations[i]
		d.pos = valuePos(dn, "name")
		d.basePos = valuePos(dn, "base")
		props := mappingValue(dn, "properties")
		if props == nil || props.Kind != yaml.SequenceNode {
			continue
		}
		for j, pn := range props.Content {
			if j >= len(d.Properties) {
				break
			}
			p := &d.Properties[j]
			p.pos = valuePos(pn, "name")
			p.typePos = valuePos(pn, "type")
			p.node = pn
		}
	}
}

// mappingValue returns the value node stored under key, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// mappingKey returns the key node for key, or nil.
func mappingKey(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i]
		}
	}
	return nil
}

func valuePos(m *yaml.Node, key string) Pos {
	if v := mappingValue(m, key); v != nil {
		return nodePos(v)
	}
	return nodePos(m)
}

func nodePos(n *yaml.Node) Pos {
	if n == nil {
		return Pos{}
	}
	col := n.Column
	// quoted scalars start at the quote; point at the text itself
	if n.Kind == yaml.ScalarNode && n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 {
		col++
	}
	return Pos{Line: n.Line, Col: col}
}
