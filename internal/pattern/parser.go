package pattern

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/specialistvlad/dm2mcell/internal/model"
)

type parser struct {
	src string
	pos int
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

// componentChar reports whether c may appear between a molecule's parentheses.
func componentChar(c byte) bool {
	return isNameChar(c) || strings.IndexByte("~!+?,. *%", c) >= 0
}

func (p *parser) errorf(format string, args ...any) error {
	return generr.Syntax("", "%s at offset %d in %q", fmt.Sprintf(format, args...), p.pos, p.src)
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) name() (string, error) {
	start := p.pos
	if p.eof() || !isNameStart(p.peek()) {
		if p.eof() {
			return "", p.errorf("expected species name, found end of text")
		}
		return "", p.errorf("expected species name, found %q", p.peek())
	}
	for !p.eof() && isNameChar(p.peek()) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *parser) molecule() (Molecule, error) {
	name, err := p.name()
	if err != nil {
		return Molecule{}, err
	}
	m := Molecule{Name: name}
	if p.peek() != '(' {
		return m, nil
	}
	open := p.pos
	p.pos++
	start := p.pos
	depth := 1
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '(':
			depth++
		case c == ')':
			depth--
		case !componentChar(c):
			return Molecule{}, p.errorf("unexpected character %q in components", c)
		}
		if depth == 0 {
			break
		}
		p.pos++
	}
	if depth != 0 {
		p.pos = open
		return Molecule{}, p.errorf("unbalanced parentheses")
	}
	m.Components = p.src[start:p.pos]
	m.HasParens = true
	p.pos++ // ')'
	return m, nil
}

func (p *parser) complex() (Complex, error) {
	var c Complex
	for {
		m, err := p.molecule()
		if err != nil {
			return Complex{}, err
		}
		c.Molecules = append(c.Molecules, m)
		if p.peek() != '.' {
			break
		}
		p.pos++
	}

	// Orientation and compartment suffixes, in either order.
	for !p.eof() {
		switch ch := p.peek(); ch {
		case '\'', ',', ';':
			if c.Orientation != model.NoOrientation {
				return Complex{}, p.errorf("repeated orientation mark")
			}
			c.Orientation, _ = model.ParseOrientation(string(ch))
			p.pos++
		case '@':
			if c.Compartment != "" {
				return Complex{}, p.errorf("repeated compartment annotation")
			}
			p.pos++
			name, err := p.name()
			if err != nil {
				return Complex{}, err
			}
			c.Compartment = name
		default:
			return c, nil
		}
	}
	return c, nil
}

// ParseSide parses a '+'-separated reaction side. "NULL" and empty text
// parse to the null side.
func ParseSide(text string) (Side, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == Null {
		return Side{}, nil
	}
	p := &parser{src: text}
	var side Side
	for {
		p.skipSpace()
		c, err := p.complex()
		if err != nil {
			return Side{}, err
		}
		side.Terms = append(side.Terms, c)
		p.skipSpace()
		if p.eof() {
			return side, nil
		}
		if p.peek() != '+' {
			return Side{}, p.errorf("unexpected character %q", p.peek())
		}
		p.pos++
		p.skipSpace()
		if p.eof() {
			return Side{}, p.errorf("expected species name after '+'")
		}
	}
}

// ParseComplex parses a single complex such as a release site species.
func ParseComplex(text string) (Complex, error) {
	text = strings.TrimSpace(text)
	p := &parser{src: text}
	c, err := p.complex()
	if err != nil {
		return Complex{}, err
	}
	p.skipSpace()
	if !p.eof() {
		return Complex{}, p.errorf("unexpected character %q", p.peek())
	}
	return c, nil
}
