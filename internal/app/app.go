package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/datamodel"
	"github.com/specialistvlad/dm2mcell/internal/fsutil"
	"github.com/specialistvlad/dm2mcell/internal/gen"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/program"
)

// App encapsulates the application's configuration and logger.
type App struct {
	logger *slog.Logger
	config *Config
}

// Summary reports the outcome of a run.
type Summary struct {
	gen.Result
	Input string
	// Written lists the paths of the output files.
	Written []string
}

// NewApp is the constructor for the main application. Logs are written to
// logW with the configured level and format.
func NewApp(logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")
	return &App{logger: logger, config: cfg}
}

// Run converts the configured input. A returned error means no usable output
// was produced; a generation failure is instead reported by Summary.Failed
// with best-effort files written.
func (a *App) Run(ctx context.Context) (*Summary, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	input, err := fsutil.ResolveInput(a.config.InputPath)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Input resolved.", "path", input)

	root, err := datamodel.Load(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to load data model: %w", err)
	}
	m := model.Decode(ctx, root)
	a.logger.Debug("Data model decoded.",
		"species", len(m.Species), "reactions", len(m.Reactions),
		"objects", len(m.Objects), "release_sites", len(m.Releases),
		"problems", len(m.Problems), "section_errors", len(m.SectionErrors))

	prog, res := gen.Generate(ctx, m, gen.Options{
		Prefix:               a.config.OutputPrefix,
		Testing:              a.config.Testing,
		DeclarativePreferred: a.config.DeclarativePreferred,
		ParameterOverrides:   a.config.ParameterOverrides,
	})

	files := prog.Render(program.RenderOptions{Failed: res.Failed, Testing: a.config.Testing})
	written, err := program.Write(ctx, a.config.OutputDir, files)
	if err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	a.logger.Info("Conversion finished.", "input", input, "files", len(written), "failed", res.Failed)
	a.logger.Debug("App.Run method finished.")
	return &Summary{Result: *res, Input: input, Written: written}, nil
}
