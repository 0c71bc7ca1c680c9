package countexpr

import (
	"github.com/specialistvlad/dm2mcell/internal/ident"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/pattern"
)

// TargetKind tells what a count term counts.
type TargetKind int

const (
	// TargetSpecies counts molecules matching a species or pattern.
	TargetSpecies TargetKind = iota
	// TargetRule counts occurrences of a reaction rule.
	TargetRule
)

func (k TargetKind) String() string {
	if k == TargetRule {
		return "reaction_rule"
	}
	return "species"
}

// Target is the "what" of a count term.
type Target struct {
	Kind        TargetKind
	Complex     pattern.Complex
	Orientation model.Orientation
}

// Text is the counted pattern or rule name without the orientation mark.
func (t Target) Text() string {
	c := t.Complex
	c.Orientation = model.NoOrientation
	return c.String()
}

// LocationKind is the scope of a count term.
type LocationKind int

const (
	World LocationKind = iota
	Object
	Region
)

// Location is the "where" of a count term.
type Location struct {
	Kind   LocationKind
	Object string
	Region string
}

func (l Location) String() string {
	switch l.Kind {
	case Object:
		return l.Object
	case Region:
		return l.Object + "[" + l.Region + "]"
	}
	return "WORLD"
}

// Granularity of molecule counting.
const (
	Molecules = "molecules"
	Species   = "species"
)

// Term is one structural count request.
type Term struct {
	What        Target
	Where       Location
	Granularity string
}

// Key is the structural identity of a term: two terms with equal keys are
// the same emitted object.
func (t Term) Key() string {
	return t.What.Kind.String() + "|" + t.What.Text() + "|" + t.Where.String() + "|" +
		pattern.OrientationMark(t.What.Orientation) + "|" + t.Granularity
}

// Name is the identifier derived for the emitted term.
func (t Term) Name() string {
	name := "ct_" + t.What.Text()
	switch t.Where.Kind {
	case World:
		name += "_world"
	case Object:
		name += "_" + t.Where.Object
	case Region:
		name += "_" + t.Where.Object + "_" + t.Where.Region
	}
	switch t.What.Orientation {
	case model.Up:
		name += "_up"
	case model.Down:
		name += "_down"
	case model.Any:
		name += "_any"
	}
	if t.Granularity == Species {
		name += "_sp"
	}
	return ident.Sanitize(name)
}

// String renders the term back into the count construct syntax.
func (t Term) String() string {
	where := t.Where.String()
	if t.Where.Kind != World {
		where = "Scene." + where
	}
	return "COUNT[" + t.What.Text() + pattern.OrientationMark(t.What.Orientation) + "," + where + "]"
}
