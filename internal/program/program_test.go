package program

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileNames(files []File) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Name)
	}
	return out
}

func TestRender_UnitsAndImports(t *testing.T) {
	p := New("demo")
	p.Unit(Parameters).Module("math")
	p.Unit(Parameters).Line("a = %d", 5)
	p.Unit(Subsystem).Comment("", "first\nsecond")

	files := p.Render(RenderOptions{Testing: true})
	assert.Equal(t, []string{
		"demo_parameters.py", "demo_subsystem.py", "demo_geometry.py",
		"demo_instantiation.py", "demo_observables.py", "demo_model.py",
	}, fileNames(files), "no declarative file unless used")

	assert.Equal(t, "# Generated by dm2mcell.\n\nimport math\nimport mcell as m\n\na = 5\n", files[0].Content)
	assert.Contains(t, files[1].Content, "from demo_parameters import *\n")
	assert.Contains(t, files[1].Content, "# first\n# second\n")

	model := files[5].Content
	for _, dep := range []string{"parameters", "subsystem", "geometry", "instantiation", "observables"} {
		assert.Contains(t, model, "from demo_"+dep+" import *\n")
	}
	assert.NotContains(t, model, "from demo_model import")
}

func TestRender_Headers(t *testing.T) {
	p := New("x")
	files := p.Render(RenderOptions{})
	assert.True(t, strings.HasPrefix(files[0].Content, "# Generated by dm2mcell "+Version+".\n"))

	files = p.Render(RenderOptions{Failed: true, Testing: true})
	for _, f := range files {
		assert.True(t, strings.HasPrefix(f.Content, "# "+FailureWarning+"\n"), f.Name)
	}
}

func TestRender_BNGL(t *testing.T) {
	p := New("m")
	b := p.BNGL()
	b.Line(BlockReactionRules, "r1: a -> b %s", "k")
	b.Line(BlockParameters, "k 1")
	assert.False(t, b.Used())
	assert.Len(t, p.Render(RenderOptions{Testing: true}), 6)

	b.MarkUsed()
	files := p.Render(RenderOptions{Testing: true})
	require.Len(t, files, 7)
	assert.Equal(t, "m.bngl", files[6].Name)
	assert.Equal(t,
		"# Generated by dm2mcell.\n\n"+
			"begin parameters\n  k 1\nend parameters\n\n"+
			"begin reaction rules\n  r1: a -> b k\nend reaction rules\n",
		files[6].Content)
	assert.NotContains(t, files[6].Content, "begin observables", "empty blocks are omitted")
}

func TestUnit_Error(t *testing.T) {
	p := New("m")
	u := p.Unit(Geometry)
	u.Error("Cube", errors.New("bad vertex"))
	u.Error("Cube", errors.New("Cube: already named"))
	files := p.Render(RenderOptions{Testing: true})
	assert.Contains(t, files[2].Content, "# ERROR: Cube: bad vertex\n# ERROR: Cube: already named\n")
	assert.Equal(t, 2, u.Len())
}

func TestUnit_UnknownPanics(t *testing.T) {
	assert.Panics(t, func() { New("m").Unit("nope") })
}

func TestWrite_Truncates(t *testing.T) {
	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := Write(ctx, dir, []File{{Name: "a.py", Content: "long content\n"}})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.py")}, paths)

	_, err = Write(ctx, dir, []File{{Name: "a.py", Content: "x\n"}})
	require.NoError(t, err)
	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(data))
}

func TestWrite_IOError(t *testing.T) {
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := Write(ctx, filepath.Join(blocker, "sub"), []File{{Name: "a.py"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, generr.ErrIO)
}

func TestUnit_Section(t *testing.T) {
	p := New("m")
	u := p.Unit(Subsystem)
	u.Line("subsystem = m.Subsystem()")
	u.Section("species")
	u.Blank()
	u.Section("reaction rules")
	u.Line("r = 1")
	u.Section("trailing")

	files := p.Render(RenderOptions{Testing: true})
	body := files[1].Content
	assert.NotContains(t, body, "# ---- species ----", "a section without lines leaves no banner")
	assert.NotContains(t, body, "# ---- trailing ----")
	assert.Contains(t, body, "subsystem = m.Subsystem()\n\n# ---- reaction rules ----\n\nr = 1\n")
}
