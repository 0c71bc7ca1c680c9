package gen

import (
	"context"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/expr"
	"github.com/specialistvlad/dm2mcell/internal/ident"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/notation"
	"github.com/specialistvlad/dm2mcell/internal/program"
)

func genSubsystem(ctx context.Context, c *Context) error {
	u := c.prog.Unit(program.Subsystem)
	u.Line("subsystem = m.Subsystem()")

	steps := []func(context.Context, *Context) error{genSpecies, genSurfaceClasses, genReactions}
	for _, step := range steps {
		if err := step(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func diffusionParam(s model.Species) string {
	if s.Surface {
		return "MCELL_DIFFUSION_CONSTANT_2D_" + s.Name
	}
	return "MCELL_DIFFUSION_CONSTANT_3D_" + s.Name
}

func diffusionField(s model.Species) string {
	if s.Surface {
		return "diffusion_constant_2d"
	}
	return "diffusion_constant_3d"
}

func genSpecies(ctx context.Context, c *Context) error {
	logger := ctxlog.FromContext(ctx)
	if err := c.model.SectionError(model.SectionMolecules); err != nil {
		return err
	}
	u := c.prog.Unit(program.Subsystem)
	c.problems(ctx, program.Subsystem, model.SectionMolecules)
	if len(c.model.Species) > 0 {
		u.Section("species and molecule types")
	}

	var declared int
	for _, s := range c.model.Species {
		id, err := c.names.Register(ident.CategorySpecies, s.Name)
		if err != nil {
			c.itemError(ctx, program.Subsystem, s.Name, err)
			continue
		}
		d := RouteSpecies(s, c.declarative())
		if d.Notation == notation.Declarative && id != s.Name {
			d = procedural("name %q is not a valid identifier", s.Name)
		}
		if d.Notation == notation.Declarative {
			diffusion, err := expr.Translate(s.Diffusion, notation.Declarative)
			if err != nil {
				d = procedural("diffusion constant has no declarative spelling")
			} else {
				emitSpeciesBNGL(c, s, diffusion)
				declared++
			}
		}
		if d.Notation == notation.Procedural {
			emitSpeciesProcedural(u, s, id, d.Reason)
		}
		c.species[s.Name] = speciesRef{id: id, notation: d.Notation, surface: s.Surface}
		logger.Debug("Species routed.", "species", s.Name, "notation", d.Notation, "reason", d.Reason)
	}
	logger.Info("Species generated.", "count", len(c.species), "declarative", declared)
	return nil
}

func emitSpeciesBNGL(c *Context, s model.Species, diffusion string) {
	b := c.prog.BNGL()
	b.MarkUsed()
	b.Line(program.BlockParameters, "%s %s", diffusionParam(s), diffusion)
	if s.Description != "" {
		b.Comment(program.BlockMoleculeTypes, s.Description)
	}
	b.Line(program.BlockMoleculeTypes, "%s", bnglMoleculeType(s))
}

func bnglMoleculeType(s model.Species) string {
	if s.Simple() {
		return s.Name
	}
	parts := make([]string, len(s.Components))
	for i, comp := range s.Components {
		p := comp.Name
		for _, st := range comp.States {
			p += "~" + st
		}
		parts[i] = p
	}
	return s.Name + "(" + strings.Join(parts, ",") + ")"
}

func emitSpeciesProcedural(u *program.Unit, s model.Species, id, reason string) {
	u.Blank()
	description(u, s.Description)
	if reason != "" && reason != reasonDisabled {
		u.Comment("", "procedural: "+reason)
	}
	args := []arg{{"name", quote(s.Name)}}
	fn := "m.Species"
	adder := "add_species"
	if !s.Simple() {
		fn = "m.ElementaryMoleculeType"
		adder = "add_elementary_molecule_type"
		comps := make([]string, len(s.Components))
		for i, comp := range s.Components {
			if len(comp.States) == 0 {
				comps[i] = "m.ComponentType(" + quote(comp.Name) + ")"
				continue
			}
			states := make([]string, len(comp.States))
			for j, st := range comp.States {
				states[j] = quote(st)
			}
			comps[i] = "m.ComponentType(" + quote(comp.Name) + ", states = [" + strings.Join(states, ", ") + "])"
		}
		args = append(args, arg{"components", list(comps)})
	}
	args = append(args, arg{diffusionField(s), pyExpr(s.Diffusion)})
	if s.CustomTimeStep != "" {
		args = append(args, arg{"custom_time_step", pyExpr(s.CustomTimeStep)})
	}
	if s.CustomSpaceStep != "" {
		args = append(args, arg{"custom_space_step", pyExpr(s.CustomSpaceStep)})
	}
	if s.TargetOnly {
		args = append(args, arg{"target_only", "True"})
	}
	stmt(u, id, fn, args...)
	u.Line("subsystem.%s(%s)", adder, id)
}
