package gen

import (
	"strconv"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/expr"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/notation"
	"github.com/specialistvlad/dm2mcell/internal/pattern"
	"github.com/specialistvlad/dm2mcell/internal/program"
)

const indent = "    "

// arg is one named argument of a constructor call.
type arg struct {
	name  string
	value string
}

// stmt writes `name = fn(args...)` with one argument per line.
func stmt(u *program.Unit, name, fn string, args ...arg) {
	u.Raw(call(name+" = ", fn, "", args...))
}

// call renders a constructor call. lead prefixes the first line and pad
// indents continuation lines.
func call(lead, fn, pad string, args ...arg) string {
	var sb strings.Builder
	sb.WriteString(pad + lead + fn + "(")
	if len(args) == 0 {
		sb.WriteString(")")
		return sb.String()
	}
	sb.WriteString("\n")
	for i, a := range args {
		value := strings.ReplaceAll(a.value, "\n", "\n"+pad+indent)
		sb.WriteString(pad + indent + a.name + " = " + value)
		if i < len(args)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(pad + ")")
	return sb.String()
}

// list renders a Python list with one element per line.
func list(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteString("[\n")
	for i, it := range items {
		sb.WriteString(indent + strings.ReplaceAll(it, "\n", "\n"+indent))
		if i < len(items)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("]")
	return sb.String()
}

// inlineCall renders a short call on one line.
func inlineCall(fn string, args ...arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.name + " = " + a.value
	}
	return fn + "(" + strings.Join(parts, ", ") + ")"
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func pyFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func pyVec(v [3]float64) string {
	return "[" + pyFloat(v[0]) + ", " + pyFloat(v[1]) + ", " + pyFloat(v[2]) + "]"
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// pyExpr translates a data model expression for the procedural notation.
func pyExpr(s string) string {
	out, err := expr.Translate(s, notation.Procedural)
	if err != nil {
		return s
	}
	return out
}

func orientationExpr(o model.Orientation) string {
	switch o {
	case model.Up:
		return "m.Orientation.UP"
	case model.Down:
		return "m.Orientation.DOWN"
	case model.Any:
		return "m.Orientation.ANY"
	}
	return "m.Orientation.NONE"
}

// complexExpr renders a pattern as an m.Complex value.
func complexExpr(c pattern.Complex) string {
	args := []string{quote(c.Pattern())}
	if c.Orientation != model.NoOrientation {
		args = append(args, "orientation = "+orientationExpr(c.Orientation))
	}
	if c.Compartment != "" {
		args = append(args, "compartment_name = "+quote(c.Compartment))
	}
	return "m.Complex(" + strings.Join(args, ", ") + ")"
}

// bnglComplex renders a pattern in the declarative notation.
func bnglComplex(c pattern.Complex) string {
	s := c.Pattern() + pattern.OrientationMark(c.Orientation)
	if c.Compartment != "" {
		s += "@" + c.Compartment
	}
	return s
}

func moleculeNames(c pattern.Complex) []string {
	out := make([]string, len(c.Molecules))
	for i, m := range c.Molecules {
		out[i] = m.Name
	}
	return out
}

func description(u *program.Unit, text string) {
	if text != "" {
		u.Comment("", text)
	}
}
