package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/notation"
)

// ErrUnsupported indicates a function with no equivalent in the target notation.
var ErrUnsupported = errors.New("function not supported in target notation")

// Translate rewrites s for the target notation: recognized function names and
// the power operator are respelled, everything else is copied unchanged.
func Translate(s string, target notation.Notation) (string, error) {
	var sb strings.Builder
	for _, tok := range Scan(s) {
		switch tok.Kind {
		case Ident:
			fn, ok := functions[tok.Text]
			if !ok {
				sb.WriteString(tok.Text)
				continue
			}
			spelled := fn.procedural
			if target == notation.Declarative {
				spelled = fn.declarative
			}
			if spelled == "" {
				return "", fmt.Errorf("%w: %s (%s)", ErrUnsupported, tok.Text, target)
			}
			sb.WriteString(spelled)
		case Other:
			sb.WriteString(translatePower(tok.Text, target))
		default:
			sb.WriteString(tok.Text)
		}
	}
	return sb.String(), nil
}

// translatePower maps between `**` (procedural) and `^` (declarative).
func translatePower(s string, target notation.Notation) string {
	if target == notation.Declarative {
		return strings.ReplaceAll(s, "**", "^")
	}
	return strings.ReplaceAll(s, "^", "**")
}

// Identifiers returns the free identifiers of s in order of first appearance,
// excluding recognized function names.
func Identifiers(s string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, tok := range Scan(s) {
		if tok.Kind != Ident || IsFunction(tok.Text) || seen[tok.Text] {
			continue
		}
		seen[tok.Text] = true
		ids = append(ids, tok.Text)
	}
	return ids
}
