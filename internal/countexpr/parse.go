package countexpr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/pattern"
)

const keyword = "COUNT["

// Expression is a parsed observable expression.
type Expression struct {
	// Terms holds one entry per occurrence, in source order. Equal terms may
	// appear more than once; deduplication is the caller's concern.
	Terms []Term
	// segments interleave residual text and term references: segment i is
	// residual text, and term i sits between segments i and i+1.
	segments []string
	// Multiplier is a constant factor scaling the whole expression, taken
	// from a leading "c *" or a trailing "* c" or "/ c"; empty when unscaled.
	Multiplier string
}

// Single reports whether the expression is exactly one unscaled-or-scaled
// term with no combining operators.
func (e Expression) Single() bool {
	return len(e.Terms) == 1 &&
		strings.TrimSpace(e.segments[0]) == "" && strings.TrimSpace(e.segments[1]) == ""
}

// Combine reassembles the residual expression, spelling term i as name(i).
func (e Expression) Combine(name func(i int) string) string {
	var sb strings.Builder
	for i, seg := range e.segments {
		sb.WriteString(seg)
		if i < len(e.Terms) {
			sb.WriteString(name(i))
		}
	}
	return strings.TrimSpace(sb.String())
}

// Options control term classification.
type Options struct {
	// IsRule reports whether name is a registered reaction rule.
	IsRule func(name string) bool
	// Granularity is recorded on every term; defaults to Molecules.
	Granularity string
}

const factor = `[A-Za-z_][A-Za-z0-9_]*|[0-9]*\.?[0-9]+(?:[eE][+-]?[0-9]+)?`

var (
	residualRE = regexp.MustCompile(`^[\sA-Za-z0-9_.+\-*/()^]*$`)
	trailingRE = regexp.MustCompile(`^(.*?)\s*([*/])\s*(` + factor + `)\s*$`)
	leadingRE  = regexp.MustCompile(`^\s*(` + factor + `)\s*\*\s*(.*)$`)
	nameRE     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Parse extracts every count construct from text.
func Parse(text string, opts Options) (Expression, error) {
	if opts.Granularity == "" {
		opts.Granularity = Molecules
	}

	var e Expression
	rest := text
	for {
		i := strings.Index(rest, keyword)
		if i < 0 {
			e.segments = append(e.segments, rest)
			break
		}
		e.segments = append(e.segments, rest[:i])
		body, n, err := bracketBody(rest[i+len(keyword)-1:])
		if err != nil {
			return Expression{}, syntaxError(text, err)
		}
		term, err := parseTerm(body, opts)
		if err != nil {
			return Expression{}, syntaxError(text, err)
		}
		e.Terms = append(e.Terms, term)
		rest = rest[i+len(keyword)-1+n:]
	}

	if len(e.Terms) == 0 {
		return Expression{}, generr.Syntax(text, "no COUNT construct found")
	}
	if err := e.validateResidual(); err != nil {
		return Expression{}, syntaxError(text, err)
	}
	if err := e.extractMultiplier(); err != nil {
		return Expression{}, syntaxError(text, err)
	}
	return e, nil
}

func syntaxError(text string, err error) error {
	if errors.Is(err, generr.ErrSyntax) {
		return generr.WithItem(err, text)
	}
	return generr.Syntax(text, "%v", err)
}

// bracketBody returns the text inside the balanced [...] group at the start
// of s and the length consumed including both brackets.
func bracketBody(s string) (string, int, error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[1:i], i + 1, nil
			}
		}
	}
	return "", 0, fmt.Errorf("unbalanced brackets in %q", s)
}

// splitWhatWhere splits on the last top-level comma; the location never
// contains one while a pattern (or a ',' orientation mark) may.
func splitWhatWhere(body string) (string, string, error) {
	depth := 0
	at := -1
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				at = i
			}
		}
	}
	if at < 0 {
		return "", "", fmt.Errorf("expected COUNT[what,where], got COUNT[%s]", body)
	}
	return strings.TrimSpace(body[:at]), strings.TrimSpace(body[at+1:]), nil
}

func parseTerm(body string, opts Options) (Term, error) {
	whatText, whereText, err := splitWhatWhere(body)
	if err != nil {
		return Term{}, err
	}
	c, err := pattern.ParseComplex(whatText)
	if err != nil {
		return Term{}, err
	}
	what := Target{Kind: TargetSpecies, Orientation: c.Orientation, Complex: c}
	what.Complex.Orientation = model.NoOrientation
	if c.Simple() && c.Compartment == "" && opts.IsRule != nil && opts.IsRule(c.Name()) {
		what.Kind = TargetRule
	}
	where, err := parseLocation(whereText)
	if err != nil {
		return Term{}, err
	}
	return Term{What: what, Where: where, Granularity: opts.Granularity}, nil
}

func parseLocation(s string) (Location, error) {
	if strings.EqualFold(s, "WORLD") {
		return Location{Kind: World}, nil
	}
	s = strings.TrimPrefix(s, "Scene.")
	obj, region := s, ""
	if i := strings.IndexByte(s, '['); i >= 0 {
		if !strings.HasSuffix(s, "]") {
			return Location{}, fmt.Errorf("malformed location %q", s)
		}
		obj, region = s[:i], strings.TrimSpace(s[i+1:len(s)-1])
	}
	obj = strings.TrimSpace(obj)
	if !nameRE.MatchString(obj) {
		return Location{}, fmt.Errorf("invalid object name %q in location", obj)
	}
	if region == "" || region == "ALL" {
		return Location{Kind: Object, Object: obj}, nil
	}
	if !nameRE.MatchString(region) {
		return Location{}, fmt.Errorf("invalid region name %q in location", region)
	}
	return Location{Kind: Region, Object: obj, Region: region}, nil
}

func (e *Expression) validateResidual() error {
	depth := 0
	for _, seg := range e.segments {
		if !residualRE.MatchString(seg) {
			return fmt.Errorf("unexpected text %q between count terms", strings.TrimSpace(seg))
		}
		for _, c := range seg {
			switch c {
			case '(':
				depth++
			case ')':
				depth--
				if depth < 0 {
					return fmt.Errorf("unbalanced parentheses")
				}
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("unbalanced parentheses")
	}
	return nil
}

// extractMultiplier moves a constant factor that scales the whole expression
// into Multiplier. The factor either trails ("COUNT[...] * c", "(...) / c") or
// leads ("c * COUNT[...]", "c * (...)"). Any other multiplicative operator
// left between the terms is an error.
func (e *Expression) extractMultiplier() error {
	if !e.extractTrailing() {
		e.extractLeading()
	}
	for _, seg := range e.segments {
		if i := strings.IndexAny(seg, "*/^"); i >= 0 {
			return fmt.Errorf("operator %q is not allowed; terms combine with + and -, scaled by at most one constant factor", seg[i])
		}
	}
	return nil
}

func (e *Expression) extractTrailing() bool {
	last := len(e.segments) - 1
	m := trailingRE.FindStringSubmatch(e.segments[last])
	if m == nil {
		return false
	}
	if !e.scalesWhole(e.segments[0], m[1]) {
		return false
	}
	if m[2] == "*" {
		e.Multiplier = m[3]
	} else {
		e.Multiplier = "1/" + m[3]
	}
	return true
}

func (e *Expression) extractLeading() bool {
	m := leadingRE.FindStringSubmatch(e.segments[0])
	if m == nil {
		return false
	}
	if !e.scalesWhole(m[2], e.segments[len(e.segments)-1]) {
		return false
	}
	e.Multiplier = m[1]
	return true
}

// scalesWhole reports whether first and last, standing in for the outer
// segments once a factor is removed, leave either a lone term or one fully
// parenthesized expression. On success the outer segments are replaced and
// the enclosing parentheses dropped.
func (e *Expression) scalesWhole(first, last string) bool {
	lastAt := len(e.segments) - 1
	switch {
	case len(e.Terms) == 1 && strings.TrimSpace(first) == "" && strings.TrimSpace(last) == "":
		e.segments[0], e.segments[lastAt] = "", ""
	case e.wrapped(first, last):
		first = strings.TrimSpace(first)
		last = strings.TrimSpace(last)
		e.segments[0] = first[1:]
		e.segments[lastAt] = last[:len(last)-1]
	default:
		return false
	}
	return true
}

// wrapped reports whether the segments, with first and last in place of the
// outer ones, are enclosed in one pair of parentheses.
func (e *Expression) wrapped(first, last string) bool {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if !strings.HasPrefix(first, "(") || !strings.HasSuffix(last, ")") {
		return false
	}
	segs := append([]string(nil), e.segments...)
	segs[0] = first
	segs[len(segs)-1] = last
	depth := 0
	for si, seg := range segs {
		for ci, c := range seg {
			switch c {
			case '(':
				depth++
			case ')':
				depth--
				atEnd := si == len(segs)-1 && ci == len(seg)-1
				if depth == 0 && !atEnd {
					return false
				}
			}
		}
	}
	return depth == 0
}
