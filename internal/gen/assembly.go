package gen

import (
	"context"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/program"
)

const overridesVar = "bngl_parameter_overrides"

// genAssembly writes the orchestration unit. It runs last so it sees which
// notations the other phases used.
func genAssembly(ctx context.Context, c *Context) error {
	logger := ctxlog.FromContext(ctx)
	u := c.prog.Unit(program.Model)
	u.Line("model = m.Model()")

	if len(c.config) > 0 {
		u.Blank()
		for _, s := range c.config {
			u.Line("model.config.%s = %s", s.field, s.value)
		}
	}

	u.Blank()
	u.Line("model.add_subsystem(subsystem)")
	u.Line("model.add_instantiation(instantiation)")
	u.Line("model.add_observables(observables)")

	if c.prog.BNGL().Used() {
		emitOverrides(c)
		u.Blank()
		u.Raw(call("model.", "load_bngl", "",
			arg{"file_name", quote(c.prog.BNGLFileName())},
			arg{"observables_path_or_file", seedDir},
			arg{"parameter_overrides", overridesVar},
		))
		logger.Debug("Declarative file loaded by the orchestration unit.", "file", c.prog.BNGLFileName())
	}
	if len(c.localCounts) > 0 {
		u.Line("%s(model)", ruleCountsFunc)
	}

	u.Blank()
	u.Line("model.initialize()")
	u.Blank()
	u.Raw("if DUMP:\n" + indent + "model.dump_internal_state()")
	u.Blank()
	u.Raw("if EXPORT_DATA_MODEL and model.viz_outputs:\n" + indent + "model.export_data_model()")
	u.Blank()
	u.Line("model.run_iterations(ITERATIONS)")
	u.Line("model.end_simulation()")
	return nil
}

// emitOverrides appends the table that lets procedural parameter values
// replace the ones in the declarative file.
func emitOverrides(c *Context) {
	u := c.prog.Unit(program.Parameters)
	u.Section("declarative parameter overrides")
	if len(c.params) == 0 {
		u.Line("%s = {}", overridesVar)
		return
	}
	entries := make([]string, len(c.params))
	for i, p := range c.params {
		entries[i] = indent + quote(p.Name) + ": " + p.Name
	}
	u.Raw(overridesVar + " = {\n" + strings.Join(entries, ",\n") + "\n}")
}
