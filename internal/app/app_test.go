package app_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/dm2mcell/internal/app"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/specialistvlad/dm2mcell/internal/program"
	"github.com/specialistvlad/dm2mcell/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basicDoc() *testutil.Doc {
	return testutil.NewDoc().
		Parameter("k_on", "1e8").
		Species("a", "1e-6").
		Species("b", "1e-6").
		Reaction("a", "b", "k_on", testutil.Fields{"rxn_name": "conv"}).
		Box("Cube", 0.5).
		Release("rel_a", "a", testutil.Fields{"shape": "OBJECT", "object_expr": "Scene.Cube"}).
		Count(testutil.Fields{"name": "b_total", "rxn_or_mol": "Molecule", "molecule_name": "b", "count_location": "World"})
}

func TestRun_Procedural(t *testing.T) {
	result := testutil.RunGeneration(t, basicDoc(), app.Config{Testing: true})
	require.NoError(t, result.Err)
	require.False(t, result.Summary.Failed)

	assert.ElementsMatch(t, []string{
		"model_parameters.py", "model_subsystem.py", "model_geometry.py",
		"model_instantiation.py", "model_observables.py", "model_model.py",
	}, keys(result.Files))

	assert.Contains(t, result.Files["model_parameters.py"], "k_on = 1e8\n")
	assert.Contains(t, result.Files["model_subsystem.py"], "conv = m.ReactionRule(")
	assert.Contains(t, result.Files["model_geometry.py"], "Cube = m.GeometryObject(")
	testutil.AssertOrdered(t, result.Files["model_instantiation.py"],
		"instantiation.add_geometry_object(Cube)", "rel_a = m.ReleaseSite(", "region = Cube")
	assert.Contains(t, result.Files["model_observables.py"], "count_b_total = m.Count(")
	assert.Contains(t, result.Files["model_model.py"], "model.run_iterations(ITERATIONS)\n")

	testutil.AssertLogged(t, result, "Conversion finished.", "failed", "false")
}

func TestRun_Declarative(t *testing.T) {
	result := testutil.RunGeneration(t, basicDoc(), app.Config{Testing: true, DeclarativePreferred: true, OutputPrefix: "cell"})
	require.NoError(t, result.Err)
	require.False(t, result.Summary.Failed)
	assert.True(t, result.Summary.DeclarativeUsed)

	bngl, ok := result.Files["cell.bngl"]
	require.True(t, ok, "declarative file written")
	assert.Contains(t, bngl, "  conv: a -> b k_on\n")
	assert.Contains(t, bngl, "  k_on 1e8\n")
	assert.Contains(t, result.Files["cell_model.py"], "file_name = 'cell.bngl'")
	assert.Contains(t, result.Files["cell_subsystem.py"], "from cell_parameters import *\n")
}

func TestRun_FailuresProduceBestEffortOutput(t *testing.T) {
	doc := basicDoc().Reaction("a +", "b", "1")
	result := testutil.RunGeneration(t, doc, app.Config{Testing: true})
	require.NoError(t, result.Err)
	require.True(t, result.Summary.Failed)

	for name, content := range result.Files {
		assert.True(t, strings.HasPrefix(content, "# "+program.FailureWarning+"\n"), name)
	}
	assert.Contains(t, result.Files["model_subsystem.py"], "# ERROR: ")
	assert.Contains(t, result.Files["model_subsystem.py"], "conv = m.ReactionRule(", "other reactions still generated")
	testutil.AssertLogged(t, result, "Item could not be generated.", "unit", "subsystem")
}

func TestRun_VersionMismatchFailsThePhase(t *testing.T) {
	doc := basicDoc()
	doc.Set("define_molecules", map[string]any{"data_model_version": "DM_1999", "molecule_list": []any{}})
	result := testutil.RunGeneration(t, doc, app.Config{Testing: true})
	require.NoError(t, result.Err)
	require.True(t, result.Summary.Failed)
	assert.Contains(t, result.Files["model_subsystem.py"], "# ERROR: ")
	assert.Contains(t, result.Files["model_geometry.py"], "Cube = m.GeometryObject(", "later phases still run")
	testutil.AssertLogged(t, result, "Phase failed.", "phase", "subsystem")
}

func TestRun_RerunTruncates(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	first := testutil.RunGeneration(t, basicDoc(), app.Config{Testing: true, OutputDir: out})
	require.NoError(t, first.Err)
	second := testutil.RunGeneration(t, basicDoc(), app.Config{Testing: true, OutputDir: out})
	require.NoError(t, second.Err)
	assert.Equal(t, first.Files, second.Files)
}

func TestRun_InputErrors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		result := testutil.RunGeneration(t, basicDoc(), app.Config{InputPath: filepath.Join(t.TempDir(), "none.json")})
		require.Error(t, result.Err)
		assert.True(t, errors.Is(result.Err, generr.ErrIO))
		assert.Nil(t, result.Summary)
	})

	t.Run("not a data model", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "other.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"blender": {}}`), 0o644))
		result := testutil.RunGeneration(t, basicDoc(), app.Config{InputPath: path})
		require.Error(t, result.Err)
		assert.True(t, errors.Is(result.Err, generr.ErrStructural))
	})

	t.Run("directory input", func(t *testing.T) {
		dir := t.TempDir()
		basicDoc().Write(t, dir)
		result := testutil.RunGeneration(t, basicDoc(), app.Config{InputPath: dir, Testing: true})
		require.NoError(t, result.Err)
		assert.Equal(t, filepath.Join(dir, "model.json"), result.Summary.Input)
	})
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
