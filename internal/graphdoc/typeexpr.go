package graphdoc

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// typeExpr is a parsed type expression.
type typeExpr struct {
	Name string
	Args []*typeExpr
	// Suffixes holds '[' for an array level and '?' for a nullable level,
	// innermost first.
	Suffixes []byte
}

func (e *typeExpr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *typeExpr) write(b *strings.Builder) {
	b.WriteString(e.Name)
	if len(e.Args) > 0 {
		b.WriteByte('<')
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			a.write(b)
		}
		b.WriteByte('>')
	}
	for _, s := range e.Suffixes {
		if s == '[' {
			b.WriteString("[]")
		} else {
			b.WriteByte(s)
		}
	}
}

// maxTypeDepth bounds generic argument nesting.
const maxTypeDepth = 32

// parseTypeExpr parses expressions of the form
//
//	name [ '<' expr { ',' expr } '>' ] { '[' [','...] ']' | '?' }
//
// Names may be qualified with dots or slashes and may carry a global:: prefix.
func parseTypeExpr(src string) (*typeExpr, error) {
	p := typeParser{src: src}
	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return e, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *typeParser) expr(depth int) (*typeExpr, error) {
	if depth > maxTypeDepth {
		return nil, p.errorf("type arguments nested too deeply")
	}
	p.skipSpace()
	name := p.name()
	if name == "" {
		return nil, p.errorf("expected type name")
	}
	e := &typeExpr{Name: strings.TrimPrefix(name, "global::")}
	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		for {
			arg, err := p.expr(depth + 1)
			if err != nil {
				return nil, err
			}
			e.Args = append(e.Args, arg)
			p.skipSpace()
			switch p.peek() {
			case ',':
				p.pos++
				continue
			case '>':
				p.pos++
			default:
				return nil, p.errorf("expected ',' or '>'")
			}
			break
		}
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '?':
			p.pos++
			e.Suffixes = append(e.Suffixes, '?')
			continue
		case '[':
			p.pos++
			for p.peek() == ',' || p.peek() == ' ' {
				p.pos++
			}
			if p.peek() != ']' {
				return nil, p.errorf("expected ']'")
			}
			p.pos++
			e.Suffixes = append(e.Suffixes, '[')
			continue
		}
		return e, nil
	}
}

func (p *typeParser) name() string {
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '.', r == '/', r == '-':
		case r == ':' && strings.HasPrefix(p.src[p.pos:], "::"):
			p.pos += 2
			continue
		default:
			return p.src[start:p.pos]
		}
		p.pos += size
	}
	return p.src[start:p.pos]
}
