package compartment

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/stretchr/testify/assert"
)

func testCtx(buf *bytes.Buffer) context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(buf, nil)))
}

func TestResolve(t *testing.T) {
	testCases := []struct {
		name     string
		model    *model.Model
		want     []Compartment
		required []string
		absent   []string
	}{
		{
			name:  "no annotations",
			model: &model.Model{ModelObjects: []model.ModelObject{{Name: "Cube"}}},
			want:  nil,
		},
		{
			name: "directional markers are not compartments",
			model: &model.Model{
				ModelObjects: []model.ModelObject{{Name: "Cube"}},
				Reactions:    []model.ReactionRule{{Reactants: "a@IN + b@OUT", Products: "c"}},
			},
			want:   nil,
			absent: []string{"IN", "OUT", "Cube"},
		},
		{
			name: "membrane link pulls in both",
			model: &model.Model{
				ModelObjects: []model.ModelObject{{Name: "Cell", Membrane: "PM"}},
			},
			want: []Compartment{
				{Name: "PM", Surface: true, Object: "Cell"},
				{Name: "Cell", Object: "Cell", Outside: "PM"},
			},
			required: []string{"Cell", "PM"},
		},
		{
			name: "nested objects order parents first",
			model: &model.Model{
				ModelObjects: []model.ModelObject{
					{Name: "Nucleus", Parent: "Cell", Membrane: "NM"},
					{Name: "Cell", Parent: "EC", Membrane: "PM"},
					{Name: "EC"},
					{Name: "Other"},
				},
			},
			want: []Compartment{
				{Name: "EC", Object: "EC"},
				{Name: "PM", Surface: true, Object: "Cell", Outside: "EC"},
				{Name: "Cell", Object: "Cell", Outside: "PM"},
				{Name: "NM", Surface: true, Object: "Nucleus", Outside: "Cell"},
				{Name: "Nucleus", Object: "Nucleus", Outside: "NM"},
			},
			absent: []string{"Other"},
		},
		{
			name: "direct references from reactions and releases",
			model: &model.Model{
				ModelObjects: []model.ModelObject{{Name: "A"}, {Name: "B"}, {Name: "C"}},
				Reactions:    []model.ReactionRule{{Reactants: "x@A", Products: "NULL"}},
				Releases:     []model.ReleaseSite{{Name: "r", Molecule: "y@B"}},
			},
			want: []Compartment{
				{Name: "A", Object: "A"},
				{Name: "B", Object: "B"},
			},
			absent: []string{"C"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			set := Resolve(testCtx(&logs), tc.model)
			if diff := cmp.Diff(tc.want, set.Ordered); diff != "" {
				t.Errorf("Ordered mismatch (-want +got):\n%s", diff)
			}
			for _, name := range tc.required {
				assert.True(t, set.Required(name), name)
			}
			for _, name := range tc.absent {
				assert.False(t, set.Required(name), name)
			}
			assert.Equal(t, len(tc.want) == 0, set.Empty())
		})
	}
}

func TestResolve_UnknownCompartment(t *testing.T) {
	var logs bytes.Buffer
	m := &model.Model{
		Reactions: []model.ReactionRule{
			{Reactants: "a@nowhere", Products: "b@nowhere"},
			{Reactants: "broken(", Products: "x"},
		},
	}
	set := Resolve(testCtx(&logs), m)
	assert.Equal(t, []string{"nowhere"}, set.Unknown)
	assert.True(t, set.Empty())
	assert.Contains(t, logs.String(), "does not name a model object or membrane")
}
