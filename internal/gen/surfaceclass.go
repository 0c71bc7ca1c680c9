package gen

import (
	"context"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/specialistvlad/dm2mcell/internal/ident"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/pattern"
	"github.com/specialistvlad/dm2mcell/internal/program"
)

var propertyTypes = map[model.PropertyType]string{
	model.Reflective:         "m.SurfacePropertyType.REFLECTIVE",
	model.Transparent:        "m.SurfacePropertyType.TRANSPARENT",
	model.Absorptive:         "m.SurfacePropertyType.ABSORPTIVE",
	model.ConcentrationClamp: "m.SurfacePropertyType.CONCENTRATION_CLAMP",
	model.FluxClamp:          "m.SurfacePropertyType.FLUX_CLAMP",
	model.Reactive:           "m.SurfacePropertyType.REACTIVE",
}

var wildcards = map[string]string{
	model.AllMolecules:        "m.AllMolecules",
	model.AllVolumeMolecules:  "m.AllVolumeMolecules",
	model.AllSurfaceMolecules: "m.AllSurfaceMolecules",
}

// genSurfaceClasses emits surface classes. They have no declarative form.
func genSurfaceClasses(ctx context.Context, c *Context) error {
	logger := ctxlog.FromContext(ctx)
	if err := c.model.SectionError(model.SectionSurfaceClasses); err != nil {
		return err
	}
	u := c.prog.Unit(program.Subsystem)
	c.problems(ctx, program.Subsystem, model.SectionSurfaceClasses)
	if len(c.model.SurfaceClasses) > 0 {
		u.Section("surface classes")
	}

	for _, sc := range c.model.SurfaceClasses {
		props, err := c.surfaceProperties(sc)
		if err != nil {
			c.itemError(ctx, program.Subsystem, sc.Name, err)
			continue
		}
		id, err := c.names.Register(ident.CategorySurfaceClass, sc.Name)
		if err != nil {
			c.itemError(ctx, program.Subsystem, sc.Name, err)
			continue
		}
		u.Blank()
		description(u, sc.Description)
		stmt(u, id, "m.SurfaceClass",
			arg{"name", quote(sc.Name)},
			arg{"properties", list(props)},
		)
		u.Line("subsystem.add_surface_class(%s)", id)
		c.surfaceClasses[sc.Name] = id
	}
	logger.Info("Surface classes generated.", "count", len(c.surfaceClasses))
	return nil
}

func (c *Context) surfaceProperties(sc model.SurfaceClass) ([]string, error) {
	var props []string
	for _, p := range sc.Properties {
		affected, err := c.affectedPattern(p)
		if err != nil {
			return nil, err
		}
		args := []arg{
			{"type", propertyTypes[p.Type]},
			{"affected_complex_pattern", affected},
		}
		if p.Type == model.ConcentrationClamp || p.Type == model.FluxClamp {
			if p.ClampValue == "" {
				return nil, generr.Structural("", "clamp property of %q requires clamp_value", sc.Name)
			}
			args = append(args, arg{"concentration", pyExpr(p.ClampValue)})
		}
		props = append(props, call("", "m.SurfaceProperty", "", args...))
	}
	return props, nil
}

func (c *Context) affectedPattern(p model.SurfaceClassProperty) (string, error) {
	if w, ok := wildcards[p.Affected]; ok {
		if p.Orientation == model.NoOrientation {
			return w, nil
		}
		return complexExpr(pattern.Complex{
			Molecules:   []pattern.Molecule{{Name: p.Affected}},
			Orientation: p.Orientation,
		}), nil
	}
	if _, ok := c.species[p.Affected]; !ok {
		return "", generr.Semantic(p.Affected, "surface class property references undeclared species %q", p.Affected)
	}
	cx, err := pattern.ParseComplex(p.Affected)
	if err != nil {
		return "", err
	}
	cx.Orientation = p.Orientation
	return complexExpr(cx), nil
}
