package datamodel

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
	"mcell": {
		"define_molecules": {
			"data_model_version": "DM_2014_10_24_1638",
			"molecule_list": [
				{"mol_name": "a", "diffusion_constant": "1e-6", "target_only": false},
				{"mol_name": "b", "diffusion_constant": 2.5, "target_only": 1}
			]
		},
		"geometrical_objects": {
			"object_list": [{"name": "Cube", "vertex_list": [[0, 0, 0], [1, 0, 0]]}]
		},
		"empty": null
	}
}`

func testContext(buf *bytes.Buffer) context.Context {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestParse(t *testing.T) {
	root, err := Parse([]byte(sampleDoc), "sample.json")
	require.NoError(t, err)
	require.True(t, root.Present())
	assert.Equal(t, "mcell", root.Path())

	mols, err := root.Get("define_molecules").RequireItems("molecule_list")
	require.NoError(t, err)
	require.Len(t, mols, 2)

	assert.Equal(t, "mcell.define_molecules.molecule_list[0]", mols[0].Path())
	assert.Equal(t, "1e-6", mols[0].String("diffusion_constant", "0"), "literal text kept")
	assert.Equal(t, "2.5", mols[1].String("diffusion_constant", "0"))

	only, err := mols[1].Bool("target_only", false)
	require.NoError(t, err)
	assert.True(t, only)

	assert.False(t, root.Has("empty"))
	assert.False(t, root.Get("nope").Present())
	assert.Empty(t, root.Get("nope").Items())
}

func TestParse_Errors(t *testing.T) {
	t.Run("missing root object", func(t *testing.T) {
		_, err := Parse([]byte(`{"other": {}}`), "x.json")
		require.Error(t, err)
		assert.True(t, errors.Is(err, generr.ErrStructural))
		assert.ErrorContains(t, err, `missing required field "mcell"`)
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := Parse([]byte(`[1, 2]`), "x.json")
		assert.ErrorIs(t, err, generr.ErrStructural)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Parse([]byte(`{"mcell": {`), "x.json")
		assert.ErrorIs(t, err, generr.ErrStructural)
	})
}

func TestRequire(t *testing.T) {
	root, err := Parse([]byte(sampleDoc), "sample.json")
	require.NoError(t, err)

	obj := root.Get("geometrical_objects").Get("object_list").Items()[0]
	_, err = obj.RequireString("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, generr.ErrStructural)
	assert.ErrorContains(t, err, "mcell.geometrical_objects.object_list[0]")
	assert.ErrorContains(t, err, "line")

	verts, err := obj.Vectors("vertex_list", 3)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0, 0}, {1, 0, 0}}, verts)

	_, err = obj.Vectors("vertex_list", 2)
	assert.ErrorIs(t, err, generr.ErrStructural)
}

func TestCheckVersion(t *testing.T) {
	var logs bytes.Buffer
	ctx := testContext(&logs)
	root, err := Parse([]byte(sampleDoc), "sample.json")
	require.NoError(t, err)

	assert.NoError(t, root.Get("define_molecules").CheckVersion(ctx, "DM_2014_10_24_1638"))

	err = root.Get("define_molecules").CheckVersion(ctx, "DM_2099_01_01_0000")
	assert.ErrorIs(t, err, generr.ErrStructural)

	assert.NoError(t, root.Get("geometrical_objects").CheckVersion(ctx, "DM_2014_10_24_1638"))
	assert.Contains(t, logs.String(), "Data model version tag missing.")
}

func TestLoad(t *testing.T) {
	var logs bytes.Buffer
	ctx := testContext(&logs)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	root, err := Load(ctx, path)
	require.NoError(t, err)
	assert.True(t, root.Has("define_molecules"))

	_, err = Load(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, generr.ErrIO)
}
