package gen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/expr"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/specialistvlad/dm2mcell/internal/ident"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/notation"
	"github.com/specialistvlad/dm2mcell/internal/pattern"
	"github.com/specialistvlad/dm2mcell/internal/program"
)

// reaction is a rule with its parsed sides and generated name.
type reaction struct {
	rule      model.ReactionRule
	id        string
	reactants pattern.Side
	products  pattern.Side
}

func parseReaction(r model.ReactionRule) (reaction, error) {
	reactants, err := pattern.ParseSide(r.Reactants)
	if err != nil {
		return reaction{}, generr.WithItem(err, r.Label())
	}
	if reactants.IsNull() {
		return reaction{}, generr.Syntax(r.Label(), "reaction has no reactants")
	}
	products, err := pattern.ParseSide(r.Products)
	if err != nil {
		return reaction{}, generr.WithItem(err, r.Label())
	}
	return reaction{rule: r, reactants: reactants, products: products}, nil
}

// bnglRates returns the declarative spelling of the rates.
func bnglRates(r model.ReactionRule) (string, error) {
	fwd, err := expr.Translate(r.FwdRate, notation.Declarative)
	if err != nil {
		return "", err
	}
	if !r.Reversible {
		return fwd, nil
	}
	rev, err := expr.Translate(r.RevRate, notation.Declarative)
	if err != nil {
		return "", err
	}
	return fwd + ", " + rev, nil
}

func genReactions(ctx context.Context, c *Context) error {
	logger := ctxlog.FromContext(ctx)
	if err := c.model.SectionError(model.SectionReactions); err != nil {
		return err
	}
	u := c.prog.Unit(program.Subsystem)
	c.problems(ctx, program.Subsystem, model.SectionReactions)
	if len(c.model.Reactions) > 0 {
		u.Section("reaction rules")
	}

	env := ReactionEnv{
		Preferred: c.declarative(),
		IsSurfaceClass: func(name string) bool {
			_, ok := c.surfaceClasses[name]
			return ok
		},
		Declared: func(names []string) bool { return c.speciesDeclaredIn(names, notation.Declarative) },
	}

	var declared int
	for _, r := range c.model.Reactions {
		rx, err := parseReaction(r)
		if err != nil {
			c.itemError(ctx, program.Subsystem, r.Label(), err)
			continue
		}
		if err := c.checkReactionSpecies(rx); err != nil {
			c.itemError(ctx, program.Subsystem, r.Label(), err)
			continue
		}
		source := r.Name
		if source == "" {
			source = fmt.Sprintf("rxn_%d", r.Index+1)
		}
		if c.isRule(source) {
			c.itemError(ctx, program.Subsystem, r.Label(),
				generr.Semantic(source, "duplicate object name %q: reaction rule declared twice", source))
			continue
		}
		if rx.id, err = c.names.Register(ident.CategoryReactionRule, source); err != nil {
			c.itemError(ctx, program.Subsystem, r.Label(), err)
			continue
		}

		var rates string
		var rateErr error
		if len(r.VariableRate) == 0 {
			rates, rateErr = bnglRates(r)
			if rateErr != nil && !errors.Is(rateErr, expr.ErrUnsupported) {
				c.itemError(ctx, program.Subsystem, r.Label(), rateErr)
				continue
			}
		}
		env.RatesTranslate = rateErr == nil
		d := RouteReaction(r, rx.reactants, rx.products, env)

		if d.Notation == notation.Declarative {
			emitReactionBNGL(c, rx, rates)
			declared++
		} else {
			emitReactionProcedural(u, rx, d.Reason)
		}
		c.rules[source] = ruleRef{id: rx.id, notation: d.Notation}
		logger.Debug("Reaction rule routed.", "rule", r.Label(), "notation", d.Notation, "reason", d.Reason)
	}
	logger.Info("Reaction rules generated.", "count", len(c.rules), "declarative", declared)
	return nil
}

// checkReactionSpecies verifies that every molecule is a declared species or,
// on the reactant side, a surface class.
func (c *Context) checkReactionSpecies(rx reaction) error {
	for i, side := range []pattern.Side{rx.reactants, rx.products} {
		for _, t := range side.Terms {
			for _, name := range moleculeNames(t) {
				if _, ok := c.species[name]; ok {
					continue
				}
				if _, ok := c.surfaceClasses[name]; ok && i == 0 {
					continue
				}
				return generr.Semantic(rx.rule.Label(), "reaction references undeclared species %q", name)
			}
		}
	}
	return nil
}

func bnglSide(s pattern.Side) string {
	if s.IsNull() {
		return "0"
	}
	parts := make([]string, len(s.Terms))
	for i, t := range s.Terms {
		parts[i] = bnglComplex(t)
	}
	return strings.Join(parts, " + ")
}

func emitReactionBNGL(c *Context, rx reaction, rates string) {
	b := c.prog.BNGL()
	b.MarkUsed()
	if rx.rule.Description != "" {
		b.Comment(program.BlockReactionRules, rx.rule.Description)
	}
	arrow := "->"
	if rx.rule.Reversible {
		arrow = "<->"
	}
	b.Line(program.BlockReactionRules, "%s: %s %s %s %s", rx.id, bnglSide(rx.reactants), arrow, bnglSide(rx.products), rates)
}

func procSide(s pattern.Side) string {
	if s.IsNull() {
		return "[]"
	}
	parts := make([]string, len(s.Terms))
	for i, t := range s.Terms {
		parts[i] = complexExpr(t)
	}
	return list(parts)
}

func emitReactionProcedural(u *program.Unit, rx reaction, reason string) {
	r := rx.rule
	u.Blank()
	description(u, r.Description)
	if reason != "" && reason != reasonDisabled {
		u.Comment("", "procedural: "+reason)
	}
	args := []arg{
		{"name", quote(rx.id)},
		{"reactants", procSide(rx.reactants)},
		{"products", procSide(rx.products)},
	}
	if len(r.VariableRate) > 0 {
		rows := make([]string, len(r.VariableRate))
		for i, p := range r.VariableRate {
			rows[i] = "[" + p.Time + ", " + p.Rate + "]"
		}
		args = append(args, arg{"variable_rate", list(rows)})
	} else {
		args = append(args, arg{"fwd_rate", pyExpr(r.FwdRate)})
		if r.Reversible {
			args = append(args, arg{"rev_rate", pyExpr(r.RevRate)})
		}
	}
	stmt(u, rx.id, "m.ReactionRule", args...)
	u.Line("subsystem.add_reaction_rule(%s)", rx.id)
}
