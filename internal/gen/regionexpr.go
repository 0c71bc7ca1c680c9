package gen

import (
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/generr"
)

// bareObject reports whether expr names exactly one whole object, as in
// "Scene.Cube" or "Cube", and returns that name.
func bareObject(expr string) (string, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(expr), "Scene.")
	if strings.HasSuffix(s, "[ALL]") {
		s = strings.TrimSuffix(s, "[ALL]")
	}
	if s == "" {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i], i == 0) {
			return "", false
		}
	}
	return s, true
}

func isNameByte(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

// regionExpr translates a release region expression such as
// "Scene.Cell - Scene.Nucleus[ALL] + Scene.Cube[top]" into an expression
// over the generated object and region variables.
func (c *Context) regionExpr(text string) (string, error) {
	var sb strings.Builder
	s := strings.TrimSpace(text)
	operands := 0
	for i := 0; i < len(s); {
		ch := s[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++
			continue
		case ch == '+' || ch == '-' || ch == '*':
			sb.WriteString(" " + string(ch) + " ")
			i++
			continue
		case ch == '(' || ch == ')':
			sb.WriteByte(ch)
			i++
			continue
		case !isNameByte(ch, true):
			return "", generr.Syntax(text, "unexpected character %q in region expression", ch)
		}

		start := i
		for i < len(s) && (isNameByte(s[i], false) || s[i] == '.') {
			i++
		}
		name := strings.TrimPrefix(s[start:i], "Scene.")
		region := ""
		if i < len(s) && s[i] == '[' {
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return "", generr.Syntax(text, "unbalanced brackets in region expression")
			}
			region = s[i+1 : i+end]
			i += end + 1
		}

		obj, ok := c.objects[name]
		if !ok {
			return "", generr.Semantic(text, "region expression references unknown object %q", name)
		}
		operands++
		if region == "" || region == "ALL" {
			sb.WriteString(obj)
			continue
		}
		rid, ok := c.regions[regionKey(name, region)]
		if !ok {
			return "", generr.Semantic(text, "object %q has no region %q", name, region)
		}
		sb.WriteString(rid)
	}
	if operands == 0 {
		return "", generr.Syntax(text, "empty region expression")
	}
	return strings.Join(strings.Fields(sb.String()), " "), nil
}
