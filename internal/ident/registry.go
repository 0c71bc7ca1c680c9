package ident

import "github.com/specialistvlad/dm2mcell/internal/generr"

// Category classifies what an identifier is bound to.
type Category string

const (
	CategoryParameter      Category = "parameter"
	CategorySpecies        Category = "species"
	CategorySurfaceClass   Category = "surface class"
	CategoryReactionRule   Category = "reaction rule"
	CategoryReleaseSite    Category = "release site"
	CategoryReleasePattern Category = "release pattern"
	CategoryGeometry       Category = "geometry object"
	CategoryRegion         Category = "surface region"
	CategoryCount          Category = "count"
	CategoryCountTerm      Category = "count term"
	// CategoryInternal covers names the generated program defines itself.
	CategoryInternal Category = "generator"
)

// Binding is one registered identifier.
type Binding struct {
	ID       string
	Source   string
	Category Category
}

// Registry is the run-scoped name registry. It is not safe for concurrent use.
type Registry struct {
	bindings map[string]Binding
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]Binding)}
}

// Register sanitizes source and binds the result to category. Registering the
// same (category, source) pair again returns the same identifier. Any other
// reuse of the identifier is a duplicate object name.
func (r *Registry) Register(category Category, source string) (string, error) {
	id := Sanitize(source)
	if existing, ok := r.bindings[id]; ok {
		if existing.Category == category && existing.Source == source {
			return id, nil
		}
		return "", generr.Semantic(source,
			"duplicate object name %q: already bound to %s %q", id, existing.Category, existing.Source)
	}
	r.bindings[id] = Binding{ID: id, Source: source, Category: category}
	return id, nil
}

// Lookup returns the binding for a sanitized identifier.
func (r *Registry) Lookup(id string) (Binding, bool) {
	b, ok := r.bindings[id]
	return b, ok
}
