package gen

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx() context.Context { return ctxlog.Discard(context.Background()) }

func generate(t *testing.T, m *model.Model, opts Options) (map[string]string, *Result) {
	t.Helper()
	opts.Testing = true
	prog, res := Generate(testCtx(), m, opts)
	require.NotNil(t, res)
	out := make(map[string]string)
	for _, f := range prog.Render(program.RenderOptions{Failed: res.Failed, Testing: true}) {
		out[f.Name] = f.Content
	}
	return out, res
}

func volume(names ...string) []model.Species {
	out := make([]model.Species, len(names))
	for i, n := range names {
		out[i] = model.Species{Name: n, Diffusion: "1e-6"}
	}
	return out
}

func triangle(name string, regions ...model.Region) model.GeometryObject {
	return model.GeometryObject{
		Name:     name,
		Vertices: [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:    [][3]int{{0, 1, 2}},
		Regions:  regions,
	}
}

// assertOrdered checks that every needle occurs in s, in the given order.
func assertOrdered(t *testing.T, s string, needles ...string) {
	t.Helper()
	last := -1
	for _, n := range needles {
		i := strings.Index(s, n)
		require.GreaterOrEqual(t, i, 0, "missing %q", n)
		assert.Greater(t, i, last, "%q out of order", n)
		last = i
	}
}

func TestGenerate_ParameterOrder(t *testing.T) {
	m := &model.Model{Parameters: []model.Parameter{
		{Name: "b", Expr: "a*2"},
		{Name: "a", Expr: "5", Units: "um"},
	}}
	files, res := generate(t, m, Options{})
	require.False(t, res.Failed)
	assertOrdered(t, files["model_parameters.py"], "a = 5  # um\n", "b = a*2\n", "ITERATIONS = 1\n", "SEED = 1\n")
}

func TestGenerate_ReactionRouting(t *testing.T) {
	m := &model.Model{
		Species: volume("A", "B", "C"),
		Reactions: []model.ReactionRule{
			{Index: 0, Reactants: "A + B", Products: "C", FwdRate: "1e8"},
			{Index: 1, Reactants: "A' + B", Products: "C", FwdRate: "1e8"},
		},
	}
	files, res := generate(t, m, Options{DeclarativePreferred: true})
	require.False(t, res.Failed)
	assert.True(t, res.DeclarativeUsed)
	assert.Contains(t, res.Units, "model.bngl")

	bngl := files["model.bngl"]
	assert.Contains(t, bngl, "begin reaction rules\n  rxn_1: A + B -> C 1e8\nend reaction rules\n")
	assertOrdered(t, bngl, "begin parameters\n", "  MCELL_DIFFUSION_CONSTANT_3D_A 1e-6\n", "begin molecule types\n", "  A\n")

	sub := files["model_subsystem.py"]
	assert.NotContains(t, sub, "m.Species(")
	assert.NotContains(t, sub, "# ---- species and molecule types ----", "no banner over a section routed entirely to BNGL")
	assert.Contains(t, sub, "# ---- reaction rules ----\n\n# procedural: ")
	assert.Contains(t, sub, "# procedural: orientation mark on \"A\" outside a directional compartment\n")
	assert.Contains(t, sub, "rxn_2 = m.ReactionRule(\n    name = 'rxn_2',\n")
	assert.Contains(t, sub, "subsystem.add_reaction_rule(rxn_2)\n")
	assert.NotContains(t, sub, "rxn_1 = m.ReactionRule(")

	assert.Contains(t, files["model_model.py"], "model.load_bngl(\n    file_name = 'model.bngl',\n")
	assert.Contains(t, files["model_model.py"], "    parameter_overrides = bngl_parameter_overrides\n)")
	assert.Contains(t, files["model_parameters.py"], "bngl_parameter_overrides = {}\n")
}

func TestGenerate_ProceduralOnly(t *testing.T) {
	m := &model.Model{
		Parameters: []model.Parameter{{Name: "k", Expr: "10"}},
		Species:    volume("A", "B"),
		Reactions: []model.ReactionRule{
			{Name: "fwd", Reactants: "A", Products: "B", FwdRate: "k", Reversible: true, RevRate: "2*k"},
		},
	}
	files, res := generate(t, m, Options{})
	require.False(t, res.Failed)
	assert.False(t, res.DeclarativeUsed)
	assert.NotContains(t, res.Units, "model.bngl")
	assert.NotContains(t, files["model_model.py"], "load_bngl")

	sub := files["model_subsystem.py"]
	assert.Contains(t, sub, "A = m.Species(\n    name = 'A',\n    diffusion_constant_3d = 1e-6\n)\nsubsystem.add_species(A)\n")
	assert.Contains(t, sub, "    fwd_rate = k,\n    rev_rate = 2*k\n)")
	assert.NotContains(t, sub, "# procedural:", "no routing note when the declarative notation is off")
}

func listSite(name string, point [3]float64) model.ReleaseSite {
	return model.ReleaseSite{
		Name: name, Molecule: "a", Shape: model.ShapeList, Diameter: "0",
		QuantityType: model.NumberToRelease, Quantity: "1", Probability: "1",
		Points: [][3]float64{point},
	}
}

func TestGenerate_ListSitesMerge(t *testing.T) {
	third := listSite("rel3", [3]float64{2, 2, 2})
	third.Quantity = "5"
	m := &model.Model{
		Species: volume("a"),
		Releases: []model.ReleaseSite{
			listSite("rel1", [3]float64{0, 0, 0}),
			listSite("rel2", [3]float64{1, 1, 1}),
			third,
		},
	}
	files, res := generate(t, m, Options{})
	require.False(t, res.Failed)

	inst := files["model_instantiation.py"]
	assert.Equal(t, 2, strings.Count(inst, "m.ReleaseSite("), "rel3 differs in quantity")
	assertOrdered(t, inst,
		"rel1 = m.ReleaseSite(",
		"m.MoleculeReleaseInfo(complex = m.Complex('a'), location = [0, 0, 0])",
		"m.MoleculeReleaseInfo(complex = m.Complex('a'), location = [1, 1, 1])",
		"instantiation.add_release_site(rel1)",
		"rel3 = m.ReleaseSite(",
		"location = [2, 2, 2]",
	)
	assert.NotContains(t, inst, "rel2 = m.ReleaseSite(")
	assert.Contains(t, inst, "# merged list release sites: rel1, rel2\n")
}

func TestGenerate_ReleaseOrder(t *testing.T) {
	sphere := func(name string) model.ReleaseSite {
		return model.ReleaseSite{
			Name: name, Molecule: "a", Shape: model.ShapeSpherical,
			Location: [3]string{"0", "0", "0"}, Diameter: "0.1",
			QuantityType: model.NumberToRelease, Quantity: "10", Probability: "1",
		}
	}
	m := &model.Model{
		Species:  volume("a"),
		Releases: []model.ReleaseSite{sphere("r3"), sphere("r1"), sphere("r2")},
	}
	files, _ := generate(t, m, Options{})
	assertOrdered(t, files["model_instantiation.py"],
		"instantiation.add_release_site(r3)",
		"instantiation.add_release_site(r1)",
		"instantiation.add_release_site(r2)",
	)
}

func TestGenerate_DeclarativeReleases(t *testing.T) {
	site := func(name, obj string) model.ReleaseSite {
		return model.ReleaseSite{
			Name: name, Molecule: "a", Shape: model.ShapeObject, ObjectExpr: "Scene." + obj,
			QuantityType: model.NumberToRelease, Quantity: "100", Probability: "1",
		}
	}
	base := func() *model.Model {
		return &model.Model{
			Species:      volume("a"),
			Objects:      []model.GeometryObject{triangle("Cell"), triangle("Box")},
			ModelObjects: []model.ModelObject{{Name: "Cell", Membrane: "PM"}},
		}
	}

	t.Run("all eligible", func(t *testing.T) {
		m := base()
		m.Releases = []model.ReleaseSite{site("r1", "Cell"), site("r2", "Cell")}
		files, res := generate(t, m, Options{DeclarativePreferred: true})
		require.False(t, res.Failed)
		assert.Contains(t, files["model.bngl"], "begin seed species\n  a@Cell 100\n  a@Cell 100\nend seed species\n")
		assert.NotContains(t, files["model_instantiation.py"], "m.ReleaseSite(")
		assert.Contains(t, files["model.bngl"], "  PM 2 1\n  Cell 3 1 PM\n")
		assert.Contains(t, files["model_geometry.py"], "    is_bngl_compartment = True,\n    surface_compartment_name = 'PM'\n")
	})

	t.Run("one ineligible site forces all procedural", func(t *testing.T) {
		m := base()
		m.Releases = []model.ReleaseSite{site("r1", "Cell"), site("r2", "Box")}
		files, res := generate(t, m, Options{DeclarativePreferred: true})
		require.False(t, res.Failed)
		assert.NotContains(t, files["model.bngl"], "seed species")
		inst := files["model_instantiation.py"]
		assert.Contains(t, inst, "# procedural: release site 2: object \"Box\" is not a compartment\n")
		assertOrdered(t, inst, "r1 = m.ReleaseSite(", "shape = m.Shape.REGION_EXPR", "region = Cell", "r2 = m.ReleaseSite(", "region = Box")
	})
}

func TestGenerate_OrientationOnVolumeSpeciesDropped(t *testing.T) {
	m := &model.Model{
		Species: volume("a"),
		Releases: []model.ReleaseSite{{
			Name: "r", Molecule: "a", Orientation: model.Up, Shape: model.ShapeSpherical,
			Location: [3]string{"0", "0", "0"}, Diameter: "0",
			QuantityType: model.NumberToRelease, Quantity: "1", Probability: "1",
		}},
	}
	files, res := generate(t, m, Options{})
	require.False(t, res.Failed, "a dropped orientation is a warning")
	assert.Contains(t, files["model_instantiation.py"], "complex = m.Complex('a'),\n")
}

func TestGenerate_CountTerms(t *testing.T) {
	m := &model.Model{
		Species: volume("a", "b"),
		Objects: []model.GeometryObject{triangle("Cube", model.Region{Name: "top", Faces: []int{0}})},
		Output: model.Output{Items: []model.OutputItem{
			{Index: 0, Name: "c1", Kind: model.OutputMolecule, Molecule: "a", Location: model.CountWorld, Granularity: "molecules"},
			{Index: 1, Name: "c2", Kind: model.OutputMolecule, Molecule: "a", Location: model.CountWorld, Granularity: "molecules"},
			{Index: 2, Kind: model.OutputMDLString, MDLString: "(COUNT[a,WORLD] + COUNT[b,Scene.Cube[top]]) / 2", Granularity: "molecules"},
			{Index: 3, Kind: model.OutputMolecule, Molecule: "b", Location: model.CountObject, Object: "Cube", Granularity: "species"},
			{Index: 4, Kind: model.OutputFile},
		}},
	}
	files, res := generate(t, m, Options{})
	require.False(t, res.Failed)

	obs := files["model_observables.py"]
	assert.Equal(t, 1, strings.Count(obs, "ct_a_world = m.CountTerm("), "identical terms share one object")
	assert.Equal(t, 4, strings.Count(obs, "= m.Count(\n"))
	assert.Equal(t, 2, strings.Count(obs, "    expression = ct_a_world,\n"))
	assert.Contains(t, obs, "    expression = ct_a_world + ct_b_Cube_top,\n    multiplier = 1/2,\n")
	assert.Contains(t, obs, "ct_b_Cube_top = m.CountTerm(\n    molecules_pattern = m.Complex('b'),\n    region = Cube_top\n)")
	assert.Contains(t, obs, "ct_b_Cube_sp = m.CountTerm(\n    species_pattern = m.Complex('b'),\n    region = Cube\n)")
	assert.Contains(t, obs, "count_3 = m.Count(\n    name = 'count_3',\n")
	assert.NotContains(t, obs, "count_count_3")
	assert.Contains(t, obs, "count_mol_b_Cube = m.Count(")
	assert.Contains(t, obs, "    file_name = './react_data/seed_' + str(SEED).zfill(5) + '/' + 'c1.dat',\n    every_n_timesteps = 1\n)")
	assert.Contains(t, obs, "observables.add_count(count_c2)\n")
}

func TestGenerate_RuleCounts(t *testing.T) {
	m := &model.Model{
		Species:   volume("a", "b"),
		Reactions: []model.ReactionRule{{Name: "r1", Reactants: "a", Products: "b", FwdRate: "1"}},
		Output: model.Output{Items: []model.OutputItem{
			{Name: "r1_count", Kind: model.OutputReaction, Reaction: "r1", Location: model.CountWorld, Granularity: "molecules"},
		}},
	}

	t.Run("procedural rule", func(t *testing.T) {
		files, res := generate(t, m, Options{})
		require.False(t, res.Failed)
		assert.Contains(t, files["model_observables.py"], "ct_r1_world = m.CountTerm(\n    reaction_rule = r1\n)")
		assert.NotContains(t, files["model_model.py"], "create_bngl_rule_counts")
	})

	t.Run("declarative rule", func(t *testing.T) {
		files, res := generate(t, m, Options{DeclarativePreferred: true})
		require.False(t, res.Failed)
		obs := files["model_observables.py"]
		assert.Contains(t, obs, "def create_bngl_rule_counts(model):\n    ct_r1_world = m.CountTerm(\n        reaction_rule = model.find_reaction_rule('r1')\n    )\n")
		assert.Contains(t, obs, "    model.add_count(count_r1_count)\n")
		assert.NotContains(t, obs, "observables.add_count(count_r1_count)")
		assertOrdered(t, files["model_model.py"], "model.load_bngl(", "create_bngl_rule_counts(model)\n", "model.initialize()\n")
	})
}

func TestGenerate_DeclarativeObservables(t *testing.T) {
	m := &model.Model{
		Species:      volume("a"),
		Objects:      []model.GeometryObject{triangle("Cell")},
		ModelObjects: []model.ModelObject{{Name: "Cell", Membrane: "PM"}},
		Output: model.Output{Items: []model.OutputItem{
			{Name: "a_cell", Kind: model.OutputMolecule, Molecule: "a", Location: model.CountObject, Object: "Cell", Granularity: "molecules"},
			{Name: "a_all", Kind: model.OutputMolecule, Molecule: "a", Location: model.CountWorld, Granularity: "species"},
		}},
	}
	files, res := generate(t, m, Options{DeclarativePreferred: true})
	require.False(t, res.Failed)
	assert.Contains(t, files["model.bngl"], "begin observables\n  Molecules a_cell a@Cell\n  Species a_all a\nend observables\n")
	assert.NotContains(t, files["model_observables.py"], "m.Count(")
}

func TestGenerate_ItemErrorsDoNotStopThePhase(t *testing.T) {
	m := &model.Model{
		Species: volume("A", "B"),
		Reactions: []model.ReactionRule{
			{Index: 0, Reactants: "A +", Products: "B", FwdRate: "1"},
			{Index: 1, Reactants: "A", Products: "Z", FwdRate: "1"},
			{Index: 2, Reactants: "A", Products: "B", FwdRate: "1"},
		},
		Output: model.Output{Items: []model.OutputItem{
			{Name: "bad", Kind: model.OutputMDLString, MDLString: "COUNT[A,WORLD", Granularity: "molecules"},
			{Name: "good", Kind: model.OutputMolecule, Molecule: "A", Location: model.CountWorld, Granularity: "molecules"},
		}},
	}
	files, res := generate(t, m, Options{})
	require.True(t, res.Failed)

	sub := files["model_subsystem.py"]
	assert.Equal(t, 2, strings.Count(sub, "# ERROR: "))
	assert.Contains(t, sub, `undeclared species "Z"`)
	assert.Contains(t, sub, "rxn_3 = m.ReactionRule(")
	assert.Contains(t, files["model_observables.py"], "count_good = m.Count(")
	for name, content := range files {
		assert.True(t, strings.HasPrefix(content, "# "+program.FailureWarning+"\n"), name)
	}
}

func TestGenerate_PhaseErrorsAreContained(t *testing.T) {
	m := &model.Model{
		Species: volume("a"),
		SectionErrors: map[model.Section]error{
			model.SectionGeometry: generr.Structural("mcell.geometrical_objects", "missing required field %q", "object_list"),
		},
	}
	files, res := generate(t, m, Options{})
	require.True(t, res.Failed)
	assert.Contains(t, files["model_geometry.py"], "# ERROR: ")
	assert.Contains(t, files["model_geometry.py"], "object_list")
	assert.Contains(t, files["model_subsystem.py"], "subsystem.add_species(a)\n")
	assert.Contains(t, files["model_instantiation.py"], "instantiation = m.Instantiation()\n")
	assert.Contains(t, files["model_model.py"], "model.run_iterations(ITERATIONS)\n")
}

func TestGenerate_Idempotent(t *testing.T) {
	build := func() *model.Model {
		return &model.Model{
			Parameters: []model.Parameter{{Name: "k", Expr: "1e6"}, {Name: "n", Expr: "k/1e4"}},
			Species:    append(volume("a", "b"), model.Species{Name: "s", Surface: true, Diffusion: "0"}),
			SurfaceClasses: []model.SurfaceClass{{Name: "refl", Properties: []model.SurfaceClassProperty{
				{Type: model.Reflective, Affected: model.AllMolecules},
			}}},
			Reactions: []model.ReactionRule{
				{Reactants: "a + b", Products: "NULL", FwdRate: "k"},
				{Reactants: "a' + s'", Products: "s'", FwdRate: "k"},
			},
			Objects:  []model.GeometryObject{triangle("Cube")},
			Releases: []model.ReleaseSite{listSite("r1", [3]float64{0, 0, 0}), listSite("r2", [3]float64{1, 0, 0})},
			Output: model.Output{Step: "1e-5", Items: []model.OutputItem{
				{Kind: model.OutputMDLString, MDLString: "COUNT[a,WORLD] - COUNT[b,Scene.Cube]", Granularity: "molecules"},
			}},
		}
	}
	for _, preferred := range []bool{false, true} {
		first, _ := generate(t, build(), Options{DeclarativePreferred: preferred})
		second, _ := generate(t, build(), Options{DeclarativePreferred: preferred})
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("output differs between runs (declarative=%v) (-first +second):\n%s", preferred, diff)
		}
	}
}

func TestGenerate_ParameterOverrides(t *testing.T) {
	m := &model.Model{Parameters: []model.Parameter{{Name: "k", Expr: "1"}}}
	files, res := generate(t, m, Options{ParameterOverrides: map[string]string{"k": "42"}})
	require.False(t, res.Failed)
	assert.Contains(t, files["model_parameters.py"], "k = 42\n")

	files, res = generate(t, m, Options{ParameterOverrides: map[string]string{"missing": "1"}})
	require.True(t, res.Failed)
	assert.Contains(t, files["model_parameters.py"], "# ERROR: ")
}
