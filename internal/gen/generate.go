package gen

import (
	"context"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/program"
)

// phase is one independently recovered step of a run.
type phase struct {
	name string
	unit string
	run  func(context.Context, *Context) error
}

var phases = []phase{
	{"parameters", program.Parameters, genParameters},
	{"subsystem", program.Subsystem, genSubsystem},
	{"geometry", program.Geometry, genGeometry},
	{"instantiation", program.Instantiation, genInstantiation},
	{"observables", program.Observables, genObservables},
	{"assembly", program.Model, genAssembly},
}

// Generate runs every phase against m. A failing phase is logged and
// recorded in its unit, and the remaining phases still run, so the returned
// program is always complete enough to render.
func Generate(ctx context.Context, m *model.Model, opts Options) (*program.Program, *Result) {
	logger := ctxlog.FromContext(ctx)
	c := newContext(ctx, m, opts)

	for _, p := range phases {
		logger.Debug("Phase started.", "phase", p.name)
		if err := p.run(ctx, c); err != nil {
			logger.Error("Phase failed.", "phase", p.name, "error", err)
			c.failed = true
			c.prog.Unit(p.unit).Error(p.name, err)
			continue
		}
		logger.Debug("Phase finished.", "phase", p.name, "lines", c.prog.Unit(p.unit).Len())
	}

	res := &Result{
		Failed:          c.failed,
		Units:           c.prog.FileNames(),
		DeclarativeUsed: c.prog.BNGL().Used(),
	}
	if res.Failed {
		logger.Warn("Generation finished with errors.", "units", len(res.Units))
	} else {
		logger.Info("Generation finished.", "units", len(res.Units), "declarative", res.DeclarativeUsed)
	}
	return c.prog, res
}
