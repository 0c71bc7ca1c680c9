package gen

import (
	"fmt"

	"github.com/specialistvlad/dm2mcell/internal/countexpr"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/notation"
	"github.com/specialistvlad/dm2mcell/internal/pattern"
)

// Decision is the outcome of a routing predicate. Reason names the failing
// condition when the construct falls back to the procedural notation.
type Decision struct {
	Notation notation.Notation
	Reason   string
}

func declarative() Decision { return Decision{Notation: notation.Declarative} }

func procedural(format string, args ...any) Decision {
	return Decision{Notation: notation.Procedural, Reason: fmt.Sprintf(format, args...)}
}

const reasonDisabled = "declarative output not requested"

// RouteSpecies decides the notation of a molecule type.
func RouteSpecies(s model.Species, preferred bool) Decision {
	switch {
	case !preferred:
		return procedural(reasonDisabled)
	case s.CustomTimeStep != "" || s.CustomSpaceStep != "":
		return procedural("custom time or space step")
	case s.TargetOnly:
		return procedural("target-only species")
	}
	return declarative()
}

// ReactionEnv is what the reaction predicate needs to know about the run.
type ReactionEnv struct {
	Preferred bool
	// IsSurfaceClass reports whether a name is a generated surface class.
	IsSurfaceClass func(name string) bool
	// Declared reports whether every molecule name is a declaratively
	// declared species.
	Declared func(names []string) bool
	// RatesTranslate reports whether the rate expressions have a
	// declarative spelling.
	RatesTranslate bool
}

// RouteReaction decides the notation of a reaction rule.
func RouteReaction(r model.ReactionRule, reactants, products pattern.Side, env ReactionEnv) Decision {
	if !env.Preferred {
		return procedural(reasonDisabled)
	}
	for _, side := range []pattern.Side{reactants, products} {
		for _, t := range side.Terms {
			if t.Orientation != model.NoOrientation && !t.Directional() {
				return procedural("orientation mark on %q outside a directional compartment", t.Pattern())
			}
		}
	}
	if len(r.VariableRate) > 0 {
		return procedural("variable-rate table")
	}
	for _, t := range reactants.Terms {
		if t.Simple() && env.IsSurfaceClass != nil && env.IsSurfaceClass(t.Name()) {
			return procedural("surface class %q used as reactant", t.Name())
		}
	}
	if env.Declared != nil {
		for _, side := range []pattern.Side{reactants, products} {
			for _, t := range side.Terms {
				if !env.Declared(moleculeNames(t)) {
					return procedural("species %q is not declared declaratively", t.Pattern())
				}
			}
		}
	}
	if !env.RatesTranslate {
		return procedural("rate uses a function without a declarative equivalent")
	}
	return declarative()
}

// ReleaseEnv is what the release predicate needs to know about the run.
type ReleaseEnv struct {
	Preferred bool
	// Compartment reports whether an object is a declared compartment.
	Compartment func(object string) bool
	Declared    func(names []string) bool
	Surface     func(name string) bool
	// Translates reports whether an expression has a declarative spelling.
	Translates func(expr string) bool
}

// RouteReleaseSite decides whether one site could be a seed species.
func RouteReleaseSite(rs model.ReleaseSite, c pattern.Complex, env ReleaseEnv) Decision {
	if !env.Preferred {
		return procedural(reasonDisabled)
	}
	if rs.Shape != model.ShapeObject {
		return procedural("shape %s", rs.Shape)
	}
	obj, ok := bareObject(rs.ObjectExpr)
	if !ok {
		return procedural("region expression %q", rs.ObjectExpr)
	}
	if env.Compartment == nil || !env.Compartment(obj) {
		return procedural("object %q is not a compartment", obj)
	}
	if rs.QuantityType != model.NumberToRelease {
		return procedural("quantity type %s", rs.QuantityType)
	}
	if env.Translates != nil && !env.Translates(rs.Quantity) {
		return procedural("quantity has no declarative spelling")
	}
	if rs.Pattern != "" {
		return procedural("release pattern %q", rs.Pattern)
	}
	if rs.Probability != "" && rs.Probability != "1" {
		return procedural("release probability %s", rs.Probability)
	}
	if c.Compartment != "" {
		return procedural("species carries its own compartment")
	}
	if env.Declared != nil && !env.Declared(moleculeNames(c)) {
		return procedural("species %q is not declared declaratively", c.Pattern())
	}
	if rs.Orientation != model.NoOrientation && env.Surface != nil && env.Surface(c.Name()) {
		return procedural("oriented surface release")
	}
	return declarative()
}

// RouteReleaseSites applies the all-or-nothing rule: the sites are emitted
// declaratively only if every one of them qualifies.
func RouteReleaseSites(decisions []Decision) Decision {
	if len(decisions) == 0 {
		return procedural("no release sites")
	}
	for i, d := range decisions {
		if d.Notation != notation.Declarative {
			return procedural("release site %d: %s", i+1, d.Reason)
		}
	}
	return declarative()
}

// CountEnv is what the count predicate needs to know about the run.
type CountEnv struct {
	Preferred   bool
	Compartment func(object string) bool
	Declared    func(names []string) bool
}

// RouteCount decides the notation of an observable.
func RouteCount(e countexpr.Expression, env CountEnv) Decision {
	if !env.Preferred {
		return procedural(reasonDisabled)
	}
	if !e.Single() {
		return procedural("expression combines several count terms")
	}
	if e.Multiplier != "" {
		return procedural("scaled count")
	}
	t := e.Terms[0]
	if t.What.Kind == countexpr.TargetRule {
		return procedural("counts a reaction rule")
	}
	if t.What.Orientation != model.NoOrientation && !t.What.Complex.Directional() {
		return procedural("orientation mark outside a directional compartment")
	}
	switch t.Granularity {
	case countexpr.Molecules, countexpr.Species:
	default:
		return procedural("granularity %q", t.Granularity)
	}
	switch t.Where.Kind {
	case countexpr.World:
	case countexpr.Object:
		if env.Compartment == nil || !env.Compartment(t.Where.Object) {
			return procedural("object %q is not a compartment", t.Where.Object)
		}
		if t.What.Complex.Compartment != "" {
			return procedural("pattern carries its own compartment")
		}
	default:
		return procedural("counts in a surface region")
	}
	if env.Declared != nil && !env.Declared(moleculeNames(t.What.Complex)) {
		return procedural("species %q is not declared declaratively", t.What.Text())
	}
	return declarative()
}
