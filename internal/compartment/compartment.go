// Package compartment is the Compartment Resolver. It computes the set of
// compartments a document requires from '@' annotations in reactions and
// release sites and from the parent/membrane links of model objects.
package compartment

import (
	"context"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/pattern"
)

// Compartment is one declared compartment.
type Compartment struct {
	Name string
	// Surface is true for membranes (2-D compartments).
	Surface bool
	// Object is the geometry object enclosed by the compartment, or bounded
	// by it for membranes.
	Object string
	// Outside is the enclosing compartment, empty at the top level.
	Outside string
}

// Set is the resolved requirement set.
type Set struct {
	required map[string]bool
	// Ordered lists required compartments so that every compartment comes
	// after its outside compartment.
	Ordered []Compartment
	// Unknown lists referenced names that are neither objects nor membranes.
	Unknown []string
}

// Required reports whether name is a required object or membrane.
func (s *Set) Required(name string) bool {
	return s != nil && s.required[name]
}

// Empty reports whether no compartment is required.
func (s *Set) Empty() bool { return s == nil || len(s.Ordered) == 0 }

// Resolve scans m and returns the closed requirement set.
func Resolve(ctx context.Context, m *model.Model) *Set {
	logger := ctxlog.FromContext(ctx)

	objects := make(map[string]model.ModelObject)
	membraneOf := make(map[string]string) // membrane name -> object name
	for _, o := range m.ModelObjects {
		objects[o.Name] = o
		if o.Membrane != "" {
			membraneOf[o.Membrane] = o.Name
		}
	}

	set := &Set{required: make(map[string]bool)}
	unknown := make(map[string]bool)
	var queue []string

	reference := func(name, source string) {
		if _, ok := objects[name]; !ok {
			if _, ok := membraneOf[name]; !ok {
				if !unknown[name] {
					unknown[name] = true
					set.Unknown = append(set.Unknown, name)
					logger.Warn("Compartment annotation does not name a model object or membrane.", "compartment", name, "item", source)
				}
				return
			}
		}
		queue = append(queue, name)
	}

	for _, r := range m.Reactions {
		for _, text := range []string{r.Reactants, r.Products} {
			side, err := pattern.ParseSide(text)
			if err != nil {
				// Reported by the reaction generator.
				continue
			}
			for _, c := range side.Compartments() {
				reference(c, r.Label())
			}
		}
	}
	for _, rs := range m.Releases {
		c, err := pattern.ParseComplex(rs.Molecule)
		if err != nil || c.Compartment == "" || c.Directional() {
			continue
		}
		reference(c.Compartment, rs.Name)
	}
	for _, o := range m.ModelObjects {
		if o.Parent != "" {
			queue = append(queue, o.Parent)
		}
		if o.Membrane != "" {
			queue = append(queue, o.Name)
		}
	}

	// Closure: an object requires its membrane and parent; a membrane
	// requires its object.
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if set.required[name] {
			continue
		}
		set.required[name] = true
		if o, ok := objects[name]; ok {
			if o.Membrane != "" {
				queue = append(queue, o.Membrane)
			}
			if o.Parent != "" {
				queue = append(queue, o.Parent)
			}
		}
		if obj, ok := membraneOf[name]; ok {
			queue = append(queue, obj)
		}
	}

	set.order(m.ModelObjects, objects)
	logger.Debug("Compartments resolved.", "required", len(set.Ordered), "unknown", len(set.Unknown))
	return set
}

func (s *Set) order(list []model.ModelObject, objects map[string]model.ModelObject) {
	done := make(map[string]bool)
	var visit func(name string)
	visit = func(name string) {
		if done[name] || !s.required[name] {
			return
		}
		done[name] = true
		o, ok := objects[name]
		if !ok {
			return
		}
		outside := ""
		if o.Parent != "" {
			visit(o.Parent)
			outside = o.Parent
		}
		if o.Membrane != "" {
			s.Ordered = append(s.Ordered, Compartment{Name: o.Membrane, Surface: true, Object: o.Name, Outside: outside})
			outside = o.Membrane
		}
		s.Ordered = append(s.Ordered, Compartment{Name: o.Name, Object: o.Name, Outside: outside})
	}
	for _, o := range list {
		visit(o.Name)
	}
}
