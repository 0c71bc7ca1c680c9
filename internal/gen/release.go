package gen

import (
	"context"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/expr"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/specialistvlad/dm2mcell/internal/ident"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/notation"
	"github.com/specialistvlad/dm2mcell/internal/pattern"
	"github.com/specialistvlad/dm2mcell/internal/program"
)

// releaseEntry is a site with its parsed species, or the error that
// prevents generating it.
type releaseEntry struct {
	site    model.ReleaseSite
	complex pattern.Complex
	err     error
}

func genInstantiation(ctx context.Context, c *Context) error {
	u := c.prog.Unit(program.Instantiation)
	u.Line("instantiation = m.Instantiation()")
	for _, name := range c.objectOrder {
		u.Line("instantiation.add_geometry_object(%s)", c.objects[name])
	}

	if err := c.model.SectionError(model.SectionPatterns, model.SectionReleases); err != nil {
		return err
	}
	c.problems(ctx, program.Instantiation, model.SectionPatterns, model.SectionReleases)

	genReleasePatterns(ctx, c, u)
	genReleaseSites(ctx, c, u)
	return nil
}

func genReleasePatterns(ctx context.Context, c *Context, u *program.Unit) {
	if len(c.model.Patterns) == 0 {
		return
	}
	u.Section("release patterns")
	for _, p := range c.model.Patterns {
		id, err := c.names.Register(ident.CategoryReleasePattern, p.Name)
		if err != nil {
			c.itemError(ctx, program.Instantiation, p.Name, err)
			continue
		}
		args := []arg{{"name", quote(p.Name)}}
		optional := []arg{
			{"release_interval", p.Interval},
			{"train_duration", p.TrainDuration},
			{"train_interval", p.TrainInterval},
			{"number_of_trains", p.NumberOfTrains},
		}
		for _, a := range optional {
			if a.value != "" {
				args = append(args, arg{a.name, pyExpr(a.value)})
			}
		}
		u.Blank()
		description(u, p.Description)
		stmt(u, id, "m.ReleasePattern", args...)
		c.patterns[p.Name] = p
		c.patternIDs[p.Name] = id
	}
}

func (c *Context) releaseEntries(ctx context.Context) []releaseEntry {
	logger := ctxlog.FromContext(ctx)
	entries := make([]releaseEntry, 0, len(c.model.Releases))
	for _, rs := range c.model.Releases {
		e := releaseEntry{site: rs}
		e.complex, e.err = pattern.ParseComplex(rs.Molecule)
		if e.err != nil {
			e.err = generr.WithItem(e.err, rs.Name)
			entries = append(entries, e)
			continue
		}
		for _, name := range moleculeNames(e.complex) {
			if _, ok := c.species[name]; !ok {
				e.err = generr.Semantic(rs.Name, "release site references undeclared species %q", name)
			}
		}
		if rs.Pattern != "" {
			if _, ok := c.patterns[rs.Pattern]; !ok {
				e.err = generr.Semantic(rs.Name, "release site references unknown release pattern %q", rs.Pattern)
			}
		}
		if e.err == nil && rs.Orientation != model.NoOrientation && !c.species[e.complex.Name()].surface {
			logger.Warn("Orientation mark on a volume species dropped.", "release_site", rs.Name, "species", e.complex.Name())
			e.site.Orientation = model.NoOrientation
		}
		if e.err == nil {
			e.complex.Orientation = e.site.Orientation
		}
		entries = append(entries, e)
	}
	return entries
}

func (c *Context) releaseEnv() ReleaseEnv {
	return ReleaseEnv{
		Preferred:   c.declarative(),
		Compartment: c.compartments.Required,
		Declared:    func(names []string) bool { return c.speciesDeclaredIn(names, notation.Declarative) },
		Surface: func(name string) bool {
			return c.species[name].surface
		},
		Translates: func(s string) bool {
			_, err := expr.Translate(s, notation.Declarative)
			return err == nil
		},
	}
}

func genReleaseSites(ctx context.Context, c *Context, u *program.Unit) {
	logger := ctxlog.FromContext(ctx)
	entries := c.releaseEntries(ctx)
	if len(entries) == 0 {
		return
	}

	env := c.releaseEnv()
	var decisions []Decision
	for _, e := range entries {
		if e.err != nil {
			continue
		}
		decisions = append(decisions, RouteReleaseSite(e.site, e.complex, env))
	}
	route := RouteReleaseSites(decisions)
	logger.Debug("Release sites routed.", "notation", route.Notation, "reason", route.Reason)

	u.Section("release sites")
	if route.Notation == notation.Declarative {
		for _, e := range entries {
			if e.err != nil {
				c.itemError(ctx, program.Instantiation, e.site.Name, e.err)
				continue
			}
			emitSeedSpecies(c, e)
		}
		u.Comment("", "release sites are declared as seed species in "+c.prog.BNGLFileName())
		logger.Info("Release sites generated.", "count", len(decisions), "notation", route.Notation)
		return
	}

	if c.declarative() && route.Reason != "" {
		u.Comment("", "procedural: "+route.Reason)
	}
	emitted := 0
	for i := 0; i < len(entries); {
		e := entries[i]
		if e.err != nil {
			c.itemError(ctx, program.Instantiation, e.site.Name, e.err)
			i++
			continue
		}
		run := mergeRun(entries, i)
		if err := c.emitReleaseSite(u, entries[i:i+run]); err != nil {
			c.itemError(ctx, program.Instantiation, e.site.Name, err)
		} else {
			emitted++
		}
		if run > 1 {
			logger.Debug("Release sites merged.", "first", e.site.Name, "count", run)
		}
		i += run
	}
	logger.Info("Release sites generated.", "count", emitted, "notation", route.Notation)
}

// mergeRun returns the length of the maximal run of list-shaped sites
// starting at i that share every non-position attribute.
func mergeRun(entries []releaseEntry, i int) int {
	first := entries[i].site
	if first.Shape != model.ShapeList {
		return 1
	}
	n := 1
	for j := i + 1; j < len(entries); j++ {
		e := entries[j]
		if e.err != nil || !mergeable(first, e.site) {
			break
		}
		n++
	}
	return n
}

func mergeable(a, b model.ReleaseSite) bool {
	return b.Shape == model.ShapeList &&
		a.Pattern == b.Pattern &&
		a.Quantity == b.Quantity &&
		a.QuantityType == b.QuantityType &&
		a.Probability == b.Probability &&
		a.Diameter == b.Diameter &&
		a.Stddev == b.Stddev
}

func emitSeedSpecies(c *Context, e releaseEntry) {
	b := c.prog.BNGL()
	b.MarkUsed()
	obj, _ := bareObject(e.site.ObjectExpr)
	quantity, _ := expr.Translate(e.site.Quantity, notation.Declarative)
	if e.site.Description != "" {
		b.Comment(program.BlockSeedSpecies, e.site.Description)
	}
	b.Line(program.BlockSeedSpecies, "%s@%s %s", e.complex.Pattern(), obj, quantity)
}

func (c *Context) emitReleaseSite(u *program.Unit, run []releaseEntry) error {
	first := run[0].site
	id, err := c.names.Register(ident.CategoryReleaseSite, first.Name)
	if err != nil {
		return err
	}

	args := []arg{{"name", quote(first.Name)}}
	switch first.Shape {
	case model.ShapeList:
		var infos []string
		for _, e := range run {
			for _, p := range e.site.Points {
				infos = append(infos, inlineCall("m.MoleculeReleaseInfo",
					arg{"complex", complexExpr(e.complex)},
					arg{"location", pyVec(p)},
				))
			}
		}
		args = append(args,
			arg{"shape", "m.Shape.LIST"},
			arg{"molecule_list", list(infos)},
			arg{"site_diameter", pyExpr(first.Diameter)},
		)
	case model.ShapeObject:
		region, err := c.regionExpr(first.ObjectExpr)
		if err != nil {
			return err
		}
		args = append(args,
			arg{"complex", complexExpr(run[0].complex)},
			arg{"shape", "m.Shape.REGION_EXPR"},
			arg{"region", region},
		)
		args = append(args, c.quantityArgs(run[0])...)
	default:
		args = append(args,
			arg{"complex", complexExpr(run[0].complex)},
			arg{"shape", "m.Shape.SPHERICAL"},
			arg{"location", locationExpr(first.Location)},
			arg{"site_diameter", pyExpr(first.Diameter)},
		)
		args = append(args, c.quantityArgs(run[0])...)
	}
	if first.Probability != "" && first.Probability != "1" {
		args = append(args, arg{"release_probability", pyExpr(first.Probability)})
	}
	if first.Pattern != "" {
		p := c.patterns[first.Pattern]
		args = append(args,
			arg{"release_time", pyExpr(p.Delay)},
			arg{"release_pattern", c.patternIDs[first.Pattern]},
		)
	}

	u.Blank()
	for _, e := range run {
		description(u, e.site.Description)
	}
	if len(run) > 1 {
		names := make([]string, len(run))
		for i, e := range run {
			names[i] = e.site.Name
		}
		u.Comment("", "merged list release sites: "+strings.Join(names, ", "))
	}
	if first.Shape == model.ShapeCubic || first.Shape == model.ShapeEllipsoidal {
		u.Comment("", "shape "+string(first.Shape)+" released as a sphere of the same diameter")
	}
	if first.QuantityType == model.GaussianReleaseNumber {
		u.Comment("", "gaussian release number with standard deviation "+first.Stddev+"; the mean is released")
	}
	stmt(u, id, "m.ReleaseSite", args...)
	u.Line("instantiation.add_release_site(%s)", id)
	return nil
}

func (c *Context) quantityArgs(e releaseEntry) []arg {
	q := pyExpr(e.site.Quantity)
	if e.site.QuantityType == model.Density {
		if c.species[e.complex.Name()].surface {
			return []arg{{"density", q}}
		}
		return []arg{{"concentration", q}}
	}
	return []arg{{"number_to_release", q}}
}

func locationExpr(loc [3]string) string {
	parts := make([]string, len(loc))
	for i, v := range loc {
		parts[i] = pyExpr(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
