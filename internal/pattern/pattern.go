package pattern

import (
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/model"
)

// Directional compartment markers understood by the declarative notation.
const (
	In  = "IN"
	Out = "OUT"
)

// Null is the empty reaction side.
const Null = "NULL"

// Molecule is one elementary molecule of a complex.
type Molecule struct {
	Name string
	// Components is the text between the parentheses, if any.
	Components string
	HasParens  bool
}

// Complex is one term of a reaction side.
type Complex struct {
	Molecules   []Molecule
	Orientation model.Orientation
	// Compartment follows the '@' marker; empty if not annotated.
	Compartment string
}

// Side is a parsed reaction side.
type Side struct {
	Terms []Complex
}

// IsNull reports whether the side produces or consumes nothing.
func (s Side) IsNull() bool { return len(s.Terms) == 0 }

// Name is the name of the first molecule.
func (c Complex) Name() string {
	if len(c.Molecules) == 0 {
		return ""
	}
	return c.Molecules[0].Name
}

// Simple reports whether the complex is a bare species name.
func (c Complex) Simple() bool {
	return len(c.Molecules) == 1 && !c.Molecules[0].HasParens
}

// Directional reports whether the compartment is one of the IN/OUT markers.
func (c Complex) Directional() bool {
	return c.Compartment == In || c.Compartment == Out
}

// Pattern is the complex text without orientation and compartment suffixes.
func (c Complex) Pattern() string {
	var sb strings.Builder
	for i, m := range c.Molecules {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(m.Name)
		if m.HasParens {
			sb.WriteByte('(')
			sb.WriteString(m.Components)
			sb.WriteByte(')')
		}
	}
	return sb.String()
}

// OrientationMark returns the data model mark for o.
func OrientationMark(o model.Orientation) string {
	switch o {
	case model.Up:
		return "'"
	case model.Down:
		return ","
	case model.Any:
		return ";"
	}
	return ""
}

// String renders the complex in the data model syntax.
func (c Complex) String() string {
	s := c.Pattern() + OrientationMark(c.Orientation)
	if c.Compartment != "" {
		s += "@" + c.Compartment
	}
	return s
}

// String renders the side in the data model syntax.
func (s Side) String() string {
	if s.IsNull() {
		return Null
	}
	parts := make([]string, len(s.Terms))
	for i, t := range s.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

// Compartments returns the non-directional compartment names referenced by
// the side, in order of appearance.
func (s Side) Compartments() []string {
	var out []string
	for _, t := range s.Terms {
		if t.Compartment != "" && !t.Directional() {
			out = append(out, t.Compartment)
		}
	}
	return out
}
