package gen

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/countexpr"
	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"github.com/specialistvlad/dm2mcell/internal/ident"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/notation"
	"github.com/specialistvlad/dm2mcell/internal/program"
)

const ruleCountsFunc = "create_bngl_rule_counts"

const seedDir = "'./react_data/seed_' + str(SEED).zfill(5) + '/'"

func genObservables(ctx context.Context, c *Context) error {
	u := c.prog.Unit(program.Observables)
	u.Line("observables = m.Observables()")

	if err := c.model.SectionError(model.SectionOutput, model.SectionViz); err != nil {
		return err
	}
	c.problems(ctx, program.Observables, model.SectionOutput, model.SectionViz)

	genCounts(ctx, c, u)
	genViz(ctx, c, u)

	if len(c.localCounts) > 0 {
		u.Blank()
		u.Comment("", "counts of reaction rules declared in "+c.prog.BNGLFileName())
		u.Line("def %s(model):", ruleCountsFunc)
		for _, block := range c.localCounts {
			u.Raw(indent + strings.ReplaceAll(block, "\n", "\n"+indent))
		}
	}
	return nil
}

// countText rewrites an output item into the count construct syntax.
func countText(item model.OutputItem) (string, bool) {
	var what string
	switch item.Kind {
	case model.OutputMolecule:
		what = item.Molecule
	case model.OutputReaction:
		what = item.Reaction
	case model.OutputMDLString:
		return item.MDLString, true
	default:
		return "", false
	}
	switch item.Location {
	case model.CountObject:
		return "COUNT[" + what + ",Scene." + item.Object + "]", true
	case model.CountRegion:
		return "COUNT[" + what + ",Scene." + item.Object + "[" + item.Region + "]]", true
	}
	return "COUNT[" + what + ",WORLD]", true
}

// countName returns the identifier source for an output item.
func countName(item model.OutputItem) string {
	if item.Name != "" && ident.Sanitize(item.Name) == item.Name {
		return item.Name
	}
	where := "world"
	switch item.Location {
	case model.CountObject:
		where = item.Object
	case model.CountRegion:
		where = item.Object + "_" + item.Region
	}
	switch item.Kind {
	case model.OutputMolecule:
		return ident.Sanitize("mol_" + item.Molecule + "_" + where)
	case model.OutputReaction:
		return ident.Sanitize("rxn_" + item.Reaction + "_" + where)
	}
	return fmt.Sprintf("count_%d", item.Index+1)
}

// countVar is the variable bound to a procedural count named name.
func countVar(name string) string {
	if strings.HasPrefix(name, "count_") {
		return name
	}
	return "count_" + name
}

func (c *Context) countEnv() CountEnv {
	return CountEnv{
		Preferred:   c.declarative(),
		Compartment: c.compartments.Required,
		Declared:    func(names []string) bool { return c.speciesDeclaredIn(names, notation.Declarative) },
	}
}

func genCounts(ctx context.Context, c *Context, u *program.Unit) {
	logger := ctxlog.FromContext(ctx)
	items := c.model.Output.Items
	if len(items) == 0 {
		return
	}
	u.Section("counts")

	env := c.countEnv()
	emitted := 0
	for _, item := range items {
		text, ok := countText(item)
		if !ok {
			logger.Warn("Output item kind not supported; skipped.", "item", item.Name, "kind", item.Kind)
			continue
		}
		name := countName(item)
		e, err := countexpr.Parse(text, countexpr.Options{IsRule: c.isRule, Granularity: item.Granularity})
		if err != nil {
			c.itemError(ctx, program.Observables, name, generr.WithItem(err, name))
			continue
		}
		if err := c.checkCountTargets(name, e); err != nil {
			c.itemError(ctx, program.Observables, name, err)
			continue
		}
		d := RouteCount(e, env)
		if d.Notation == notation.Declarative {
			if err := c.emitObservableBNGL(name, item, e); err != nil {
				c.itemError(ctx, program.Observables, name, err)
				continue
			}
		} else if err := c.emitCount(u, name, item, e, d.Reason); err != nil {
			c.itemError(ctx, program.Observables, name, err)
			continue
		}
		emitted++
		logger.Debug("Count routed.", "count", name, "notation", d.Notation, "reason", d.Reason)
	}
	logger.Info("Counts generated.", "count", emitted, "terms", len(c.terms))
}

// checkCountTargets verifies that every term refers to generated constructs.
func (c *Context) checkCountTargets(name string, e countexpr.Expression) error {
	for _, t := range e.Terms {
		if t.What.Kind == countexpr.TargetSpecies {
			for _, mol := range moleculeNames(t.What.Complex) {
				if _, ok := c.species[mol]; !ok {
					return generr.Semantic(name, "count references undeclared species %q", mol)
				}
			}
		}
		switch t.Where.Kind {
		case countexpr.Object:
			if _, ok := c.objects[t.Where.Object]; !ok {
				return generr.Semantic(name, "count references unknown object %q", t.Where.Object)
			}
		case countexpr.Region:
			if _, ok := c.regions[regionKey(t.Where.Object, t.Where.Region)]; !ok {
				return generr.Semantic(name, "count references unknown region %q", regionKey(t.Where.Object, t.Where.Region))
			}
		}
	}
	return nil
}

func (c *Context) emitObservableBNGL(name string, item model.OutputItem, e countexpr.Expression) error {
	id, err := c.names.Register(ident.CategoryCount, name)
	if err != nil {
		return err
	}
	t := e.Terms[0]
	cx := t.What.Complex
	cx.Orientation = t.What.Orientation
	target := bnglComplex(cx)
	if t.Where.Kind == countexpr.Object {
		target += "@" + t.Where.Object
	}
	kind := "Molecules"
	if t.Granularity == countexpr.Species {
		kind = "Species"
	}
	b := c.prog.BNGL()
	b.MarkUsed()
	if item.Description != "" {
		b.Comment(program.BlockObservables, item.Description)
	}
	b.Line(program.BlockObservables, "%s %s %s", kind, id, target)
	return nil
}

// localTerm reports whether t must be built after the declarative rules are
// loaded into the model.
func (c *Context) localTerm(t countexpr.Term) bool {
	if t.What.Kind != countexpr.TargetRule {
		return false
	}
	return c.rules[t.What.Text()].notation == notation.Declarative
}

func (c *Context) emitCount(u *program.Unit, name string, item model.OutputItem, e countexpr.Expression, reason string) error {
	local := false
	for _, t := range e.Terms {
		if c.localTerm(t) {
			local = true
		}
	}

	countID, err := c.names.Register(ident.CategoryCount, countVar(name))
	if err != nil {
		return err
	}

	var block strings.Builder
	out := func(s string) {
		if local {
			block.WriteString(s + "\n")
		} else {
			u.Raw(s)
		}
	}

	termIDs := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		ref, isNew, err := c.countTerm(t)
		if err != nil {
			return err
		}
		termIDs[i] = ref.id
		switch {
		case !isNew:
		case ref.local:
			block.WriteString(c.countTermStmt(ref.id, t) + "\n")
		default:
			u.Blank()
			u.Raw(c.countTermStmt(ref.id, t))
		}
	}

	if !local {
		u.Blank()
		description(u, item.Description)
		if reason != "" && reason != reasonDisabled {
			u.Comment("", "procedural: "+reason)
		}
	}
	args := []arg{
		{"name", quote(name)},
		{"expression", e.Combine(func(i int) string { return termIDs[i] })},
	}
	if e.Multiplier != "" {
		args = append(args, arg{"multiplier", pyExpr(e.Multiplier)})
	}
	args = append(args,
		arg{"file_name", seedDir + " + '" + name + ".dat'"},
		arg{"every_n_timesteps", c.countEvery()},
	)
	out(call(countID+" = ", "m.Count", "", args...))
	if local {
		out("model.add_count(" + countID + ")")
		c.localCounts = append(c.localCounts, strings.TrimSuffix(block.String(), "\n"))
		return nil
	}
	u.Line("observables.add_count(%s)", countID)
	return nil
}

func (c *Context) countEvery() string {
	step := c.model.Output.Step
	if step == "" {
		return "1"
	}
	return "(" + pyExpr(step) + ") / TIME_STEP"
}

// countTerm returns the emitted term for t, registering a new one the first
// time a structural key is seen.
func (c *Context) countTerm(t countexpr.Term) (termRef, bool, error) {
	key := t.Key()
	if ref, ok := c.terms[key]; ok {
		return ref, false, nil
	}
	base := t.Name()
	candidate := base
	for n := 2; c.taken(candidate); n++ {
		candidate = fmt.Sprintf("%s_%d", base, n)
	}
	id, err := c.names.Register(ident.CategoryCountTerm, candidate)
	if err != nil {
		return termRef{}, false, err
	}
	ref := termRef{id: id, local: c.localTerm(t)}
	c.terms[key] = ref
	return ref, true, nil
}

func (c *Context) taken(id string) bool {
	_, ok := c.names.Lookup(id)
	return ok
}

func (c *Context) countTermStmt(id string, t countexpr.Term) string {
	var args []arg
	if t.What.Kind == countexpr.TargetRule {
		rule := c.rules[t.What.Text()]
		if rule.notation == notation.Declarative {
			args = append(args, arg{"reaction_rule", "model.find_reaction_rule(" + quote(rule.id) + ")"})
		} else {
			args = append(args, arg{"reaction_rule", rule.id})
		}
	} else {
		cx := t.What.Complex
		cx.Orientation = t.What.Orientation
		field := "molecules_pattern"
		if t.Granularity == countexpr.Species {
			field = "species_pattern"
		}
		args = append(args, arg{field, complexExpr(cx)})
	}
	switch t.Where.Kind {
	case countexpr.Object:
		args = append(args, arg{"region", c.objects[t.Where.Object]})
	case countexpr.Region:
		args = append(args, arg{"region", c.regions[regionKey(t.Where.Object, t.Where.Region)]})
	}
	return call(id+" = ", "m.CountTerm", "", args...)
}

func genViz(ctx context.Context, c *Context, u *program.Unit) {
	v := c.model.Viz
	if v == nil {
		return
	}
	logger := ctxlog.FromContext(ctx)
	if c.opts.Testing {
		logger.Debug("Viz output disabled in testing mode.")
		return
	}
	if !v.AllIterations && (v.Start != "" || v.End != "") {
		logger.Warn("Viz output start and end iterations are not supported; every step is exported.", "start", v.Start, "end", v.End)
	}
	step := v.Step
	if step == "" {
		step = "1"
	}
	id, err := c.names.Register(ident.CategoryInternal, "viz_output")
	if err != nil {
		c.itemError(ctx, program.Observables, "viz_output", err)
		return
	}
	u.Section("visualization")
	stmt(u, id, "m.VizOutput",
		arg{"mode", "m.VizMode.CELLBLENDER"},
		arg{"output_files_prefix", "'./viz_data/seed_' + str(SEED).zfill(5) + '/Scene'"},
		arg{"every_n_timesteps", pyExpr(step)},
	)
	u.Line("observables.add_viz_output(%s)", id)
}
