// Package params is the Parameter Dependency Resolver. It orders named
// parameters so each one is emitted only after every parameter its
// expression references.
package params

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/dag"
	"github.com/specialistvlad/dm2mcell/internal/expr"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/specialistvlad/dm2mcell/internal/model"
)

// Resolve returns params in dependency order. Parameters already in a valid
// order keep their input order.
func Resolve(ctx context.Context, params []model.Parameter) ([]model.Parameter, error) {
	logger := ctxlog.FromContext(ctx)

	byName := make(map[string]model.Parameter, len(params))
	g := dag.New()
	for _, p := range params {
		if _, dup := byName[p.Name]; dup {
			return nil, generr.Semantic(p.Name, "duplicate object name %q: parameter declared twice", p.Name)
		}
		byName[p.Name] = p
		g.AddNode(p.Name)
	}

	for _, p := range params {
		for _, id := range expr.Identifiers(p.Expr) {
			if id == p.Name {
				return nil, generr.Semantic(p.Name, "circular parameter dependency: %q references itself", p.Name)
			}
			if !g.Has(id) {
				return nil, generr.Semantic(p.Name, "undefined identifier %q in expression %q", id, p.Expr)
			}
			if err := g.AddEdge(id, p.Name); err != nil {
				return nil, err
			}
		}
	}

	order, err := g.Order()
	if err != nil {
		var cycle *dag.CycleError
		if errors.As(err, &cycle) {
			deps, _ := g.Dependencies(cycle.Node)
			return nil, generr.Semantic(cycle.Node, "circular parameter dependency involving %q, which depends on %s",
				cycle.Node, strings.Join(deps, ", "))
		}
		return nil, err
	}

	out := make([]model.Parameter, len(order))
	for i, name := range order {
		out[i] = byName[name]
	}
	logger.Debug("Parameters ordered.", "count", g.Len())
	return out, nil
}

// ApplyOverrides replaces the expressions of the named parameters. Every
// override must name a declared parameter.
func ApplyOverrides(params []model.Parameter, overrides map[string]string) ([]model.Parameter, error) {
	if len(overrides) == 0 {
		return params, nil
	}
	declared := make(map[string]int, len(params))
	for i, p := range params {
		declared[p.Name] = i
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	out := append([]model.Parameter(nil), params...)
	for _, name := range names {
		i, ok := declared[name]
		if !ok {
			return nil, generr.Semantic(name, "parameter override names undeclared parameter %q", name)
		}
		out[i].Expr = overrides[name]
	}
	return out, nil
}
