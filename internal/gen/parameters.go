package gen

import (
	"context"
	"errors"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/expr"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/specialistvlad/dm2mcell/internal/ident"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/notation"
	"github.com/specialistvlad/dm2mcell/internal/params"
	"github.com/specialistvlad/dm2mcell/internal/program"
)

func genParameters(ctx context.Context, c *Context) error {
	logger := ctxlog.FromContext(ctx)
	u := c.prog.Unit(program.Parameters)
	u.Module("math")
	if !c.opts.Testing {
		u.Module("sys")
	}

	if err := c.model.SectionError(model.SectionParameters); err != nil {
		return err
	}
	c.problems(ctx, program.Parameters, model.SectionParameters)

	list, err := params.ApplyOverrides(c.model.Parameters, c.opts.ParameterOverrides)
	if err != nil {
		return err
	}
	ordered, err := params.Resolve(ctx, list)
	if err != nil {
		return err
	}

	if len(ordered) > 0 {
		u.Section("model parameters")
	}
	b := c.prog.BNGL()
	for _, p := range ordered {
		if ident.Sanitize(p.Name) != p.Name {
			c.itemError(ctx, program.Parameters, p.Name,
				generr.Semantic(p.Name, "parameter name %q is not a valid identifier", p.Name))
			continue
		}
		if _, err := c.names.Register(ident.CategoryParameter, p.Name); err != nil {
			c.itemError(ctx, program.Parameters, p.Name, err)
			continue
		}
		description(u, p.Description)
		line := p.Name + " = " + pyExpr(p.Expr)
		if p.Units != "" {
			line += "  # " + p.Units
		}
		u.Raw(line)
		c.params = append(c.params, p)

		decl, err := expr.Translate(p.Expr, notation.Declarative)
		switch {
		case errors.Is(err, expr.ErrUnsupported):
			b.Line(program.BlockParameters, "%s 0 # value supplied through parameter overrides", p.Name)
		case err != nil:
			return err
		default:
			b.Line(program.BlockParameters, "%s %s", p.Name, decl)
		}
	}
	logger.Info("Parameters generated.", "count", len(c.params))

	genInitialization(ctx, c, u)
	return nil
}

// genInitialization emits the simulation constants and records the runtime
// configuration the orchestration unit applies.
func genInitialization(ctx context.Context, c *Context, u *program.Unit) {
	logger := ctxlog.FromContext(ctx)
	init := c.model.Init

	u.Section("simulation setup")
	constant := func(name, value, def string) {
		if value == "" {
			value = def
		}
		u.Line("%s = %s", name, pyExpr(value))
	}
	constant("ITERATIONS", init.Iterations, "1")
	constant("TIME_STEP", init.TimeStep, "1e-6")
	u.Line("DUMP = False")
	u.Line("EXPORT_DATA_MODEL = True")
	u.Blank()
	if c.opts.Testing {
		u.Line("SEED = 1")
	} else {
		u.Raw("if len(sys.argv) == 3 and sys.argv[1] == '-seed':\n" +
			indent + "SEED = int(sys.argv[2])\n" +
			"else:\n" +
			indent + "SEED = 1")
	}

	c.config = append(c.config,
		configSetting{"time_step", "TIME_STEP"},
		configSetting{"seed", "SEED"},
		configSetting{"total_iterations", "ITERATIONS"},
	)
	optional := []struct {
		field, constant, value string
	}{
		{"interaction_radius", "INTERACTION_RADIUS", init.InteractionRadius},
		{"surface_grid_density", "SURFACE_GRID_DENSITY", init.SurfaceGridDensity},
		{"vacancy_search_distance", "VACANCY_SEARCH_DISTANCE", init.VacancySearchDistance},
	}
	for _, o := range optional {
		if o.value == "" {
			continue
		}
		u.Line("%s = %s", o.constant, pyExpr(o.value))
		c.config = append(c.config, configSetting{o.field, o.constant})
	}
	if init.CenterMoleculesOnGrid {
		c.config = append(c.config, configSetting{"center_molecules_on_grid", "True"})
	}

	if p := init.Partitions; p != nil {
		u.Line("PARTITION_ORIGIN = [%s, %s, %s]", pyExpr(p.XStart), pyExpr(p.YStart), pyExpr(p.ZStart))
		u.Line("PARTITION_DIMENSION = max((%s) - (%s), (%s) - (%s), (%s) - (%s))",
			pyExpr(p.XEnd), pyExpr(p.XStart), pyExpr(p.YEnd), pyExpr(p.YStart), pyExpr(p.ZEnd), pyExpr(p.ZStart))
		u.Line("SUBPARTITION_DIMENSION = min(%s, %s, %s)", pyExpr(p.XStep), pyExpr(p.YStep), pyExpr(p.ZStep))
		c.config = append(c.config,
			configSetting{"initial_partition_origin", "PARTITION_ORIGIN"},
			configSetting{"partition_dimension", "PARTITION_DIMENSION"},
			configSetting{"subpartition_dimension", "SUBPARTITION_DIMENSION"},
		)
	}

	unsupported := []struct{ name, value string }{
		{"time_step_max", init.TimeStepMax},
		{"space_step", init.SpaceStep},
		{"radial_directions", init.RadialDirections},
		{"radial_subdivisions", init.RadialSubdivisions},
	}
	for _, s := range unsupported {
		if s.value != "" {
			logger.Warn("Initialization setting has no runtime equivalent; skipped.", "setting", s.name, "value", s.value)
		}
	}
}
