package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/stretchr/testify/require"
)

// Fields are extra attributes merged into a built item.
type Fields map[string]any

// Doc builds a data model document. Sections carry the version tags the
// decoder expects.
type Doc struct {
	mcell map[string]any
}

// NewDoc returns an empty document.
func NewDoc() *Doc {
	return &Doc{mcell: make(map[string]any)}
}

// Set replaces a top-level section.
func (d *Doc) Set(section string, value any) *Doc {
	d.mcell[section] = value
	return d
}

func (d *Doc) add(section, version, list string, item map[string]any, extra []Fields) *Doc {
	s, ok := d.mcell[section].(map[string]any)
	if !ok {
		s = make(map[string]any)
		if version != "" {
			s["data_model_version"] = version
		}
		d.mcell[section] = s
	}
	for _, f := range extra {
		for k, v := range f {
			item[k] = v
		}
	}
	items, _ := s[list].([]any)
	s[list] = append(items, item)
	return d
}

// Parameter adds a model parameter.
func (d *Doc) Parameter(name, expr string, extra ...Fields) *Doc {
	return d.add(string(model.SectionParameters), "", "model_parameters",
		map[string]any{"par_name": name, "par_expression": expr}, extra)
}

// Species adds a volume molecule.
func (d *Doc) Species(name, diffusion string, extra ...Fields) *Doc {
	return d.add(string(model.SectionMolecules), model.VersionMolecules, "molecule_list", map[string]any{
		"data_model_version": model.VersionMoleculeItem,
		"mol_name":           name,
		"mol_type":           "3D",
		"diffusion_constant": diffusion,
	}, extra)
}

// SurfaceSpecies adds a surface molecule.
func (d *Doc) SurfaceSpecies(name, diffusion string, extra ...Fields) *Doc {
	return d.Species(name, diffusion, append([]Fields{{"mol_type": "2D"}}, extra...)...)
}

// Reaction adds an irreversible reaction.
func (d *Doc) Reaction(reactants, products, fwd string, extra ...Fields) *Doc {
	return d.add(string(model.SectionReactions), model.VersionReactions, "reaction_list", map[string]any{
		"data_model_version": model.VersionReactionItem,
		"reactants":          reactants,
		"products":           products,
		"rxn_type":           "irreversible",
		"fwd_rate":           fwd,
	}, extra)
}

// Box adds an axis-aligned cube of side 2*half centered on the origin.
func (d *Doc) Box(name string, half float64, extra ...Fields) *Doc {
	h := half
	verts := [][]float64{
		{-h, -h, -h}, {-h, -h, h}, {-h, h, -h}, {-h, h, h},
		{h, -h, -h}, {h, -h, h}, {h, h, -h}, {h, h, h},
	}
	faces := [][]int{
		{1, 2, 0}, {3, 6, 2}, {7, 4, 6}, {5, 0, 4}, {6, 0, 2}, {3, 5, 7},
		{1, 3, 2}, {3, 7, 6}, {7, 5, 4}, {5, 1, 0}, {6, 4, 0}, {3, 1, 5},
	}
	return d.add(string(model.SectionGeometry), "", "object_list", map[string]any{
		"name":                name,
		"vertex_list":         verts,
		"element_connections": faces,
	}, extra)
}

// ModelObject adds a model object entry with optional parent and membrane.
func (d *Doc) ModelObject(name, parent, membrane string) *Doc {
	return d.add(string(model.SectionModelObjects), "", "model_object_list", map[string]any{
		"name":          name,
		"parent_object": parent,
		"membrane_name": membrane,
	}, nil)
}

// Release adds a release site; extra sets shape, location and quantities.
func (d *Doc) Release(name, molecule string, extra ...Fields) *Doc {
	return d.add(string(model.SectionReleases), model.VersionReleases, "release_site_list", map[string]any{
		"data_model_version": model.VersionReleaseItem,
		"name":               name,
		"molecule":           molecule,
		"shape":              "SPHERICAL",
		"quantity_type":      "NUMBER_TO_RELEASE",
		"quantity":           "100",
	}, extra)
}

// Count adds a reaction data output item.
func (d *Doc) Count(extra Fields) *Doc {
	return d.add(string(model.SectionOutput), model.VersionOutput, "reaction_output_list", map[string]any{}, []Fields{extra})
}

// JSON renders the document.
func (d *Doc) JSON(t *testing.T) []byte {
	t.Helper()
	data, err := json.MarshalIndent(map[string]any{"mcell": d.mcell}, "", "  ")
	require.NoError(t, err)
	return data
}

// Write stores the document as model.json under dir and returns its path.
func (d *Doc) Write(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(path, d.JSON(t), 0o644))
	return path
}
