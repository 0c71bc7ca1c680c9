package gen

import (
	"context"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/specialistvlad/dm2mcell/internal/ident"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/pattern"
	"github.com/specialistvlad/dm2mcell/internal/program"
)

// surfaceSettings collects the surface class and initial releases assigned
// to one object or region.
type surfaceSettings struct {
	surfaceClass string
	releases     []string
}

func regionKey(object, region string) string { return object + "[" + region + "]" }

func genGeometry(ctx context.Context, c *Context) error {
	logger := ctxlog.FromContext(ctx)
	if err := c.model.SectionError(model.SectionGeometry, model.SectionModelObjects, model.SectionModifications); err != nil {
		return err
	}
	u := c.prog.Unit(program.Geometry)
	c.problems(ctx, program.Geometry, model.SectionGeometry, model.SectionModelObjects, model.SectionModifications)

	settings := c.surfaceModifications(ctx)
	genCompartments(ctx, c)

	for _, obj := range c.model.Objects {
		if err := c.emitObject(u, obj, settings); err != nil {
			c.itemError(ctx, program.Geometry, obj.Name, err)
		}
	}
	logger.Info("Geometry generated.", "objects", len(c.objectOrder), "regions", len(c.regions))
	return nil
}

func (c *Context) emitObject(u *program.Unit, obj model.GeometryObject, settings map[string]*surfaceSettings) error {
	id, err := c.names.Register(ident.CategoryGeometry, obj.Name)
	if err != nil {
		return err
	}
	u.Section("geometry object " + obj.Name)

	verts := make([]string, len(obj.Vertices))
	for i, v := range obj.Vertices {
		verts[i] = pyVec(v)
	}
	walls := make([]string, len(obj.Faces))
	for i, f := range obj.Faces {
		walls[i] = pyVec([3]float64{float64(f[0]), float64(f[1]), float64(f[2])})
	}
	u.Raw(id + "_vertex_list = " + list(verts))
	u.Blank()
	u.Raw(id + "_wall_list = " + list(walls))

	var regionIDs []string
	for _, r := range obj.Regions {
		rid, err := c.names.Register(ident.CategoryRegion, obj.Name+"_"+r.Name)
		if err != nil {
			return err
		}
		idx := make([]string, len(r.Faces))
		for i, f := range r.Faces {
			idx[i] = pyFloat(float64(f))
		}
		u.Blank()
		u.Raw(rid + "_wall_indices = " + list(idx))
		args := []arg{
			{"name", quote(r.Name)},
			{"wall_indices", rid + "_wall_indices"},
		}
		args = append(args, settings[regionKey(obj.Name, r.Name)].args()...)
		stmt(u, rid, "m.SurfaceRegion", args...)
		c.regions[regionKey(obj.Name, r.Name)] = rid
		regionIDs = append(regionIDs, rid)
	}

	args := []arg{
		{"name", quote(obj.Name)},
		{"vertex_list", id + "_vertex_list"},
		{"wall_list", id + "_wall_list"},
	}
	if len(regionIDs) > 0 {
		args = append(args, arg{"surface_regions", "[" + strings.Join(regionIDs, ", ") + "]"})
	}
	args = append(args, settings[obj.Name].args()...)
	if c.compartments.Required(obj.Name) {
		args = append(args, arg{"is_bngl_compartment", "True"})
		if mo, ok := c.model.FindModelObject(obj.Name); ok && mo.Membrane != "" {
			args = append(args, arg{"surface_compartment_name", quote(mo.Membrane)})
		}
	}
	u.Blank()
	stmt(u, id, "m.GeometryObject", args...)

	c.objects[obj.Name] = id
	c.objectOrder = append(c.objectOrder, obj.Name)
	return nil
}

func (s *surfaceSettings) args() []arg {
	if s == nil {
		return nil
	}
	var args []arg
	if s.surfaceClass != "" {
		args = append(args, arg{"surface_class", s.surfaceClass})
	}
	if len(s.releases) > 0 {
		args = append(args, arg{"initial_surface_releases", list(s.releases)})
	}
	return args
}

// surfaceModifications resolves every modify-surface-region entry into
// settings keyed by object name or regionKey.
func (c *Context) surfaceModifications(ctx context.Context) map[string]*surfaceSettings {
	out := make(map[string]*surfaceSettings)
	for _, mod := range c.model.Modifications {
		key, err := c.modificationTarget(mod)
		if err == nil {
			err = c.applyModification(out, key, mod)
		}
		if err != nil {
			item := mod.Name
			if item == "" {
				item = mod.Object
			}
			c.itemError(ctx, program.Geometry, item, err)
		}
	}
	return out
}

func (c *Context) modificationTarget(mod model.SurfaceModification) (string, error) {
	obj, ok := c.model.FindObject(mod.Object)
	if !ok {
		return "", generr.Semantic(mod.Object, "surface modification references unknown object %q", mod.Object)
	}
	if mod.Region == "" {
		return obj.Name, nil
	}
	for _, r := range obj.Regions {
		if r.Name == mod.Region {
			return regionKey(obj.Name, r.Name), nil
		}
	}
	return "", generr.Semantic(mod.Object, "object %q has no region %q", mod.Object, mod.Region)
}

func (c *Context) applyModification(out map[string]*surfaceSettings, key string, mod model.SurfaceModification) error {
	s := out[key]
	if s == nil {
		s = &surfaceSettings{}
	}
	switch mod.Kind {
	case model.AssignSurfaceClass:
		id, ok := c.surfaceClasses[mod.SurfaceClass]
		if !ok {
			return generr.Semantic(mod.SurfaceClass, "unknown surface class %q", mod.SurfaceClass)
		}
		if s.surfaceClass != "" && s.surfaceClass != id {
			return generr.Semantic(key, "%s already has surface class %s", key, s.surfaceClass)
		}
		s.surfaceClass = id
	default:
		ref, ok := c.species[mod.Molecule]
		if !ok {
			return generr.Semantic(mod.Molecule, "initial surface release of undeclared species %q", mod.Molecule)
		}
		if !ref.surface {
			return generr.Semantic(mod.Molecule, "initial surface release of volume species %q", mod.Molecule)
		}
		cx := pattern.Complex{Molecules: []pattern.Molecule{{Name: mod.Molecule}}, Orientation: mod.Orientation}
		quantity := arg{"number_to_release", pyExpr(mod.Quantity)}
		if mod.Kind == model.InitialDensity {
			quantity = arg{"density", pyExpr(mod.Quantity)}
		}
		s.releases = append(s.releases, inlineCall("m.InitialSurfaceRelease",
			arg{"complex", complexExpr(cx)}, quantity))
	}
	out[key] = s
	return nil
}

// genCompartments declares the required compartments in the rule file when
// the declarative notation is requested. Sizes come from the geometry objects
// at load time.
func genCompartments(ctx context.Context, c *Context) {
	set := c.compartments
	for _, name := range set.Unknown {
		c.itemError(ctx, program.Geometry, name,
			generr.Semantic(name, "compartment %q is neither a model object nor a membrane", name))
	}
	if set.Empty() || !c.declarative() {
		return
	}
	b := c.prog.BNGL()
	b.MarkUsed()
	b.Comment(program.BlockCompartments, "sizes are placeholders; volumes and areas are taken from the geometry")
	for _, comp := range set.Ordered {
		dim := 3
		if comp.Surface {
			dim = 2
		}
		if comp.Outside != "" {
			b.Line(program.BlockCompartments, "%s %d 1 %s", comp.Name, dim, comp.Outside)
		} else {
			b.Line(program.BlockCompartments, "%s %d 1", comp.Name, dim)
		}
	}
}
