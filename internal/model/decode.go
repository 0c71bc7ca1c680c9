// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file decodes each document section into typed constructs. Item-level
// failures are collected as Problems; section-level failures are recorded in
// Model.SectionErrors.
package model

import (
	"context"
	"strconv"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/datamodel"
	"github.com/specialistvlad/dm2mcell/internal/generr"
)

// Decode builds a Model from the document root. It never fails as a whole;
// problems are recorded on the returned Model.
func Decode(ctx context.Context, root datamodel.Node) *Model {
	logger := ctxlog.FromContext(ctx)
	m := &Model{SectionErrors: make(map[Section]error)}

	steps := []struct {
		section Section
		decode  func(context.Context, datamodel.Node, *Model) error
	}{
		{SectionParameters, decodeParameters},
		{SectionInitialization, decodeInitialization},
		{SectionMolecules, decodeMolecules},
		{SectionSurfaceClasses, decodeSurfaceClasses},
		{SectionReactions, decodeReactions},
		{SectionGeometry, decodeGeometry},
		{SectionModelObjects, decodeModelObjects},
		{SectionModifications, decodeModifications},
		{SectionPatterns, decodePatterns},
		{SectionReleases, decodeReleases},
		{SectionOutput, decodeOutput},
		{SectionViz, decodeViz},
	}
	for _, step := range steps {
		n := root.Get(string(step.section))
		if !n.Present() || n.IsNull() {
			logger.Debug("Section absent.", "section", step.section)
			continue
		}
		if err := step.decode(ctx, n, m); err != nil {
			logger.Error("Section could not be decoded.", "section", step.section, "error", err)
			m.SectionErrors[step.section] = err
		}
	}
	logger.Debug("Data model decoded.",
		"parameters", len(m.Parameters),
		"species", len(m.Species),
		"reactions", len(m.Reactions),
		"release_sites", len(m.Releases),
		"problems", len(m.Problems),
	)
	return m
}

func (m *Model) problem(section Section, index int, item string, err error) {
	m.Problems = append(m.Problems, Problem{Section: section, Index: index, Item: item, Err: err})
}

func decodeParameters(_ context.Context, n datamodel.Node, m *Model) error {
	for i, it := range n.Get("model_parameters").Items() {
		name, err := it.RequireString("par_name")
		if err != nil {
			m.problem(SectionParameters, i, "", err)
			continue
		}
		expr, err := it.RequireString("par_expression")
		if err != nil {
			m.problem(SectionParameters, i, name, err)
			continue
		}
		m.Parameters = append(m.Parameters, Parameter{
			Name:        name,
			Expr:        expr,
			Units:       it.String("par_units", ""),
			Description: it.String("par_description", ""),
		})
	}
	return nil
}

func decodeInitialization(_ context.Context, n datamodel.Node, m *Model) error {
	var err error
	init := Initialization{
		Iterations:            n.String("iterations", ""),
		TimeStep:              n.String("time_step", ""),
		TimeStepMax:           n.String("time_step_max", ""),
		SpaceStep:             n.String("space_step", ""),
		InteractionRadius:     n.String("interaction_radius", ""),
		SurfaceGridDensity:    n.String("surface_grid_density", ""),
		VacancySearchDistance: n.String("vacancy_search_distance", ""),
		RadialDirections:      n.String("radial_directions", ""),
		RadialSubdivisions:    n.String("radial_subdivisions", ""),
	}
	if init.Accurate3DReactions, err = n.Bool("accurate_3d_reactions", true); err != nil {
		return err
	}
	if init.CenterMoleculesOnGrid, err = n.Bool("center_molecules_on_grid", false); err != nil {
		return err
	}
	if p := n.Get("partitions"); p.Present() {
		include, err := p.Bool("include", false)
		if err != nil {
			return err
		}
		if include {
			init.Partitions = &Partitions{
				XStart: p.String("x_start", "-1"), XEnd: p.String("x_end", "1"), XStep: p.String("x_step", "0.1"),
				YStart: p.String("y_start", "-1"), YEnd: p.String("y_end", "1"), YStep: p.String("y_step", "0.1"),
				ZStart: p.String("z_start", "-1"), ZEnd: p.String("z_end", "1"), ZStep: p.String("z_step", "0.1"),
			}
		}
	}
	m.Init = init
	return nil
}

func decodeMolecules(ctx context.Context, n datamodel.Node, m *Model) error {
	if err := n.CheckVersion(ctx, VersionMolecules); err != nil {
		return err
	}
	for i, it := range n.Get("molecule_list").Items() {
		s, err := decodeSpecies(ctx, it)
		if err != nil {
			m.problem(SectionMolecules, i, it.String("mol_name", ""), err)
			continue
		}
		m.Species = append(m.Species, s)
	}
	return nil
}

func decodeSpecies(ctx context.Context, it datamodel.Node) (Species, error) {
	if err := it.CheckVersion(ctx, VersionMoleculeItem); err != nil {
		return Species{}, err
	}
	name, err := it.RequireString("mol_name")
	if err != nil {
		return Species{}, err
	}
	s := Species{
		Name:            name,
		Diffusion:       it.String("diffusion_constant", "0"),
		CustomTimeStep:  it.String("custom_time_step", ""),
		CustomSpaceStep: it.String("custom_space_step", ""),
		Description:     it.String("description", ""),
	}
	switch t := it.String("mol_type", "3D"); t {
	case "3D":
	case "2D":
		s.Surface = true
	default:
		return Species{}, generr.Structural(it.Path(), "unknown mol_type %q", t)
	}
	if s.TargetOnly, err = it.Bool("target_only", false); err != nil {
		return Species{}, err
	}
	for _, c := range it.Get("bngl_component_list").Items() {
		cname, err := c.RequireString("cname")
		if err != nil {
			return Species{}, err
		}
		s.Components = append(s.Components, Component{Name: cname, States: c.Strings("cstates")})
	}
	return s, nil
}

func parsePropertyType(s string) (PropertyType, bool) {
	switch strings.ToUpper(s) {
	case "REFLECTIVE":
		return Reflective, true
	case "TRANSPARENT":
		return Transparent, true
	case "ABSORPTIVE":
		return Absorptive, true
	case "CLAMP_CONCENTRATION", "CONCENTRATION_CLAMP":
		return ConcentrationClamp, true
	case "CLAMP_FLUX", "FLUX_CLAMP":
		return FluxClamp, true
	case "REACTIVE":
		return Reactive, true
	}
	return 0, false
}

func decodeSurfaceClasses(ctx context.Context, n datamodel.Node, m *Model) error {
	if err := n.CheckVersion(ctx, VersionSurfaceClasses); err != nil {
		return err
	}
	for i, it := range n.Get("surface_class_list").Items() {
		sc, err := decodeSurfaceClass(it)
		if err != nil {
			m.problem(SectionSurfaceClasses, i, it.String("name", ""), err)
			continue
		}
		m.SurfaceClasses = append(m.SurfaceClasses, sc)
	}
	return nil
}

func decodeSurfaceClass(it datamodel.Node) (SurfaceClass, error) {
	name, err := it.RequireString("name")
	if err != nil {
		return SurfaceClass{}, err
	}
	sc := SurfaceClass{Name: name, Description: it.String("description", "")}
	for _, p := range it.Get("surface_class_prop_list").Items() {
		raw, err := p.RequireString("surf_class_type")
		if err != nil {
			return SurfaceClass{}, err
		}
		typ, ok := parsePropertyType(raw)
		if !ok {
			return SurfaceClass{}, generr.Structural(p.Path(), "unknown surf_class_type %q", raw)
		}
		prop := SurfaceClassProperty{Type: typ, ClampValue: p.String("clamp_value", "")}
		switch affected := p.String("affected_mols", "SINGLE"); affected {
		case AllMolecules, AllVolumeMolecules, AllSurfaceMolecules:
			prop.Affected = affected
		case "SINGLE":
			if prop.Affected, err = p.RequireString("molecule"); err != nil {
				return SurfaceClass{}, err
			}
		default:
			return SurfaceClass{}, generr.Structural(p.Path(), "unknown affected_mols %q", affected)
		}
		orient, ok := ParseOrientation(p.String("surf_class_orient", ""))
		if !ok {
			return SurfaceClass{}, generr.Structural(p.Path(), "invalid surf_class_orient %q", p.String("surf_class_orient", ""))
		}
		prop.Orientation = orient
		sc.Properties = append(sc.Properties, prop)
	}
	return sc, nil
}

func decodeReactions(ctx context.Context, n datamodel.Node, m *Model) error {
	if err := n.CheckVersion(ctx, VersionReactions); err != nil {
		return err
	}
	for i, it := range n.Get("reaction_list").Items() {
		r, err := decodeReaction(ctx, it)
		if err != nil {
			m.problem(SectionReactions, i, it.String("name", ""), err)
			continue
		}
		r.Index = i
		m.Reactions = append(m.Reactions, r)
	}
	return nil
}

func decodeReaction(ctx context.Context, it datamodel.Node) (ReactionRule, error) {
	if err := it.CheckVersion(ctx, VersionReactionItem); err != nil {
		return ReactionRule{}, err
	}
	reactants, err := it.RequireString("reactants")
	if err != nil {
		return ReactionRule{}, err
	}
	r := ReactionRule{
		Name:        it.String("rxn_name", ""),
		Reactants:   reactants,
		Products:    it.String("products", "NULL"),
		FwdRate:     it.String("fwd_rate", ""),
		Description: it.String("description", ""),
	}
	switch t := it.String("rxn_type", "irreversible"); t {
	case "irreversible":
	case "reversible":
		r.Reversible = true
		if r.RevRate, err = it.RequireString("bkwd_rate"); err != nil {
			return ReactionRule{}, err
		}
	default:
		return ReactionRule{}, generr.Structural(it.Path(), "unknown rxn_type %q", t)
	}

	variable, err := it.Bool("variable_rate_switch", false)
	if err != nil {
		return ReactionRule{}, err
	}
	if variable {
		text, err := it.RequireString("variable_rate_text")
		if err != nil {
			return ReactionRule{}, err
		}
		if r.VariableRate, err = ParseRateTable(text); err != nil {
			return ReactionRule{}, generr.WithItem(err, r.Label())
		}
		if r.Reversible {
			return ReactionRule{}, generr.Structural(it.Path(), "a variable-rate reaction cannot be reversible")
		}
		return r, nil
	}
	if r.FwdRate == "" {
		return ReactionRule{}, generr.Structural(it.Path(), "missing required field %q", "fwd_rate")
	}
	return r, nil
}

// ParseRateTable parses a two-column time/rate table. Blank lines and lines
// starting with '#' are skipped; columns may be separated by whitespace or commas.
func ParseRateTable(text string) ([]RatePoint, error) {
	var out []RatePoint
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ','
		})
		if len(fields) != 2 {
			return nil, generr.Syntax("", "variable rate line %d: expected 2 columns, got %d", lineNo+1, len(fields))
		}
		for _, f := range fields {
			if _, err := strconv.ParseFloat(f, 64); err != nil {
				return nil, generr.Syntax("", "variable rate line %d: %q is not a number", lineNo+1, f)
			}
		}
		out = append(out, RatePoint{Time: fields[0], Rate: fields[1]})
	}
	if len(out) == 0 {
		return nil, generr.Syntax("", "variable rate table is empty")
	}
	return out, nil
}

func decodeGeometry(_ context.Context, n datamodel.Node, m *Model) error {
	for i, it := range n.Get("object_list").Items() {
		obj, err := decodeObject(it)
		if err != nil {
			m.problem(SectionGeometry, i, it.String("name", ""), err)
			continue
		}
		m.Objects = append(m.Objects, obj)
	}
	return nil
}

func decodeObject(it datamodel.Node) (GeometryObject, error) {
	name, err := it.RequireString("name")
	if err != nil {
		return GeometryObject{}, err
	}
	obj := GeometryObject{Name: name}
	verts, err := it.Vectors("vertex_list", 3)
	if err != nil {
		return GeometryObject{}, err
	}
	for _, v := range verts {
		obj.Vertices = append(obj.Vertices, [3]float64{v[0], v[1], v[2]})
	}
	faces, err := it.Vectors("element_connections", 3)
	if err != nil {
		return GeometryObject{}, err
	}
	for _, f := range faces {
		face := [3]int{int(f[0]), int(f[1]), int(f[2])}
		for _, idx := range face {
			if idx < 0 || idx >= len(obj.Vertices) {
				return GeometryObject{}, generr.Structural(it.Path(), "face references vertex %d of %d", idx, len(obj.Vertices))
			}
		}
		obj.Faces = append(obj.Faces, face)
	}
	for _, r := range it.Get("define_surface_regions").Items() {
		rname, err := r.RequireString("name")
		if err != nil {
			return GeometryObject{}, err
		}
		idx, err := r.Get("include_elements").Floats()
		if err != nil {
			return GeometryObject{}, err
		}
		region := Region{Name: rname}
		for _, f := range idx {
			if int(f) < 0 || int(f) >= len(obj.Faces) {
				return GeometryObject{}, generr.Structural(r.Path(), "region references face %d of %d", int(f), len(obj.Faces))
			}
			region.Faces = append(region.Faces, int(f))
		}
		obj.Regions = append(obj.Regions, region)
	}
	return obj, nil
}

func decodeModelObjects(_ context.Context, n datamodel.Node, m *Model) error {
	for i, it := range n.Get("model_object_list").Items() {
		name, err := it.RequireString("name")
		if err != nil {
			m.problem(SectionModelObjects, i, "", err)
			continue
		}
		m.ModelObjects = append(m.ModelObjects, ModelObject{
			Name:        name,
			Parent:      it.String("parent_object", ""),
			Membrane:    it.String("membrane_name", ""),
			Description: it.String("description", ""),
		})
	}
	return nil
}

func decodeModifications(_ context.Context, n datamodel.Node, m *Model) error {
	for i, it := range n.Get("modify_surface_regions_list").Items() {
		mod, err := decodeModification(it)
		if err != nil {
			m.problem(SectionModifications, i, it.String("name", ""), err)
			continue
		}
		m.Modifications = append(m.Modifications, mod)
	}
	return nil
}

func decodeModification(it datamodel.Node) (SurfaceModification, error) {
	obj, err := it.RequireString("object_name")
	if err != nil {
		return SurfaceModification{}, err
	}
	mod := SurfaceModification{Name: it.String("name", ""), Object: obj}
	if it.String("region_selection", "ALL") == "SEL" {
		if mod.Region, err = it.RequireString("region_name"); err != nil {
			return SurfaceModification{}, err
		}
	}
	switch t := it.String("modify_surf_region_type", "SURF_CLASS"); t {
	case "SURF_CLASS":
		mod.Kind = AssignSurfaceClass
		if mod.SurfaceClass, err = it.RequireString("surf_class_name"); err != nil {
			return SurfaceModification{}, err
		}
		return mod, nil
	case "INIT_MOL_NUMBER":
		mod.Kind = InitialNumber
	case "INIT_MOL_DENSITY":
		mod.Kind = InitialDensity
	default:
		return SurfaceModification{}, generr.Structural(it.Path(), "unknown modify_surf_region_type %q", t)
	}
	if mod.Molecule, err = it.RequireString("molecule"); err != nil {
		return SurfaceModification{}, err
	}
	key := "quantity"
	if mod.Kind == InitialDensity {
		key = "density"
	}
	if mod.Quantity, err = it.RequireString(key); err != nil {
		return SurfaceModification{}, err
	}
	orient, ok := ParseOrientation(it.String("orient", ""))
	if !ok {
		return SurfaceModification{}, generr.Structural(it.Path(), "invalid orient %q", it.String("orient", ""))
	}
	mod.Orientation = orient
	return mod, nil
}

func decodePatterns(_ context.Context, n datamodel.Node, m *Model) error {
	for i, it := range n.Get("release_pattern_list").Items() {
		name, err := it.RequireString("name")
		if err != nil {
			m.problem(SectionPatterns, i, "", err)
			continue
		}
		m.Patterns = append(m.Patterns, ReleasePattern{
			Name:           name,
			Delay:          it.String("delay", "0"),
			Interval:       it.String("release_interval", ""),
			TrainDuration:  it.String("train_duration", ""),
			TrainInterval:  it.String("train_interval", ""),
			NumberOfTrains: it.String("number_of_trains", "1"),
			Description:    it.String("description", ""),
		})
	}
	return nil
}

func decodeReleases(ctx context.Context, n datamodel.Node, m *Model) error {
	if err := n.CheckVersion(ctx, VersionReleases); err != nil {
		return err
	}
	for i, it := range n.Get("release_site_list").Items() {
		rs, err := decodeRelease(ctx, it)
		if err != nil {
			m.problem(SectionReleases, i, it.String("name", ""), err)
			continue
		}
		rs.Index = i
		m.Releases = append(m.Releases, rs)
	}
	return nil
}

func decodeRelease(ctx context.Context, it datamodel.Node) (ReleaseSite, error) {
	if err := it.CheckVersion(ctx, VersionReleaseItem); err != nil {
		return ReleaseSite{}, err
	}
	name, err := it.RequireString("name")
	if err != nil {
		return ReleaseSite{}, err
	}
	rs := ReleaseSite{
		Name:         name,
		Shape:        Shape(strings.ToUpper(it.String("shape", string(ShapeCubic)))),
		ObjectExpr:   it.String("object_expr", ""),
		Location:     [3]string{it.String("location_x", "0"), it.String("location_y", "0"), it.String("location_z", "0")},
		Diameter:     it.String("site_diameter", "0"),
		QuantityType: QuantityType(it.String("quantity_type", string(NumberToRelease))),
		Quantity:     it.String("quantity", "0"),
		Stddev:       it.String("stddev", "0"),
		Probability:  it.String("release_probability", "1"),
		Pattern:      it.String("pattern", ""),
		Description:  it.String("description", ""),
	}
	switch rs.Shape {
	case ShapeCubic, ShapeSpherical, ShapeEllipsoidal:
	case ShapeObject:
		if rs.ObjectExpr == "" {
			return ReleaseSite{}, generr.Structural(it.Path(), "missing required field %q", "object_expr")
		}
	case ShapeList:
		points, err := it.Vectors("points_list", 3)
		if err != nil {
			return ReleaseSite{}, err
		}
		for _, p := range points {
			rs.Points = append(rs.Points, [3]float64{p[0], p[1], p[2]})
		}
	default:
		return ReleaseSite{}, generr.Structural(it.Path(), "unknown release shape %q", rs.Shape)
	}
	switch rs.QuantityType {
	case NumberToRelease, GaussianReleaseNumber, Density:
	default:
		return ReleaseSite{}, generr.Structural(it.Path(), "unknown quantity_type %q", rs.QuantityType)
	}
	if rs.Molecule, err = it.RequireString("molecule"); err != nil {
		return ReleaseSite{}, err
	}
	orient, ok := ParseOrientation(it.String("orient", ""))
	if !ok {
		return ReleaseSite{}, generr.Structural(it.Path(), "invalid orient %q", it.String("orient", ""))
	}
	rs.Orientation = orient
	return rs, nil
}

func decodeOutput(ctx context.Context, n datamodel.Node, m *Model) error {
	if err := n.CheckVersion(ctx, VersionOutput); err != nil {
		return err
	}
	m.Output.Step = n.String("rxn_step", "")
	for i, it := range n.Get("reaction_output_list").Items() {
		item := OutputItem{
			Index:       i,
			Name:        it.String("name", ""),
			Kind:        OutputKind(it.String("rxn_or_mol", string(OutputMolecule))),
			Molecule:    it.String("molecule_name", ""),
			Reaction:    it.String("reaction_name", ""),
			Object:      it.String("object_name", ""),
			Region:      it.String("region_name", ""),
			Location:    CountLocation(it.String("count_location", string(CountWorld))),
			MDLString:   it.String("mdl_string", ""),
			Granularity: it.String("count_granularity", "molecules"),
			Description: it.String("description", ""),
		}
		if err := validateOutputItem(it, item); err != nil {
			m.problem(SectionOutput, i, item.Name, err)
			continue
		}
		m.Output.Items = append(m.Output.Items, item)
	}
	return nil
}

func validateOutputItem(it datamodel.Node, item OutputItem) error {
	switch item.Kind {
	case OutputMolecule:
		if item.Molecule == "" {
			return generr.Structural(it.Path(), "missing required field %q", "molecule_name")
		}
	case OutputReaction:
		if item.Reaction == "" {
			return generr.Structural(it.Path(), "missing required field %q", "reaction_name")
		}
	case OutputMDLString:
		if item.MDLString == "" {
			return generr.Structural(it.Path(), "missing required field %q", "mdl_string")
		}
		return nil
	case OutputFile:
		return nil
	default:
		return generr.Structural(it.Path(), "unknown rxn_or_mol %q", item.Kind)
	}
	switch item.Location {
	case CountWorld:
	case CountObject:
		if item.Object == "" {
			return generr.Structural(it.Path(), "missing required field %q", "object_name")
		}
	case CountRegion:
		if item.Object == "" || item.Region == "" {
			return generr.Structural(it.Path(), "count_location Region requires object_name and region_name")
		}
	default:
		return generr.Structural(it.Path(), "unknown count_location %q", item.Location)
	}
	switch item.Granularity {
	case "molecules", "species":
	default:
		return generr.Structural(it.Path(), "unknown count_granularity %q", item.Granularity)
	}
	return nil
}

func decodeViz(_ context.Context, n datamodel.Node, m *Model) error {
	all, err := n.Bool("all_iterations", true)
	if err != nil {
		return err
	}
	exportAll, err := n.Bool("export_all", true)
	if err != nil {
		return err
	}
	m.Viz = &Viz{
		AllIterations: all,
		Start:         n.String("start", "0"),
		End:           n.String("end", "1"),
		Step:          n.String("step", "1"),
		ExportAll:     exportAll,
	}
	return nil
}
