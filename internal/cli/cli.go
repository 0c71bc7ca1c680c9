package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/dm2mcell/internal/app"
	"github.com/specialistvlad/dm2mcell/internal/config"
	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes.
const (
	ExitFailed = 1 // generation failed or output could not be written
	ExitUsage  = 2
)

type options struct {
	outputPrefix string
	outputDir    string
	testing      bool
	bngl         bool
	settingsPath string
	logLevel     string
	logFormat    string
	overrides    map[string]string
}

type runFunc func(ctx context.Context, out, errW io.Writer, cfg *app.Config) error

// NewCommand builds the root command. Written file paths go to out, logs to
// errW.
func NewCommand(out, errW io.Writer) *cobra.Command {
	return newCommand(out, errW, convert)
}

func newCommand(out, errW io.Writer, run runFunc) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "dm2mcell [flags] INPUT",
		Short: "convert a CellBlender data model into MCell4 Python and BNGL",
		Long: `dm2mcell converts a CellBlender data model (a .json file, or a directory
holding exactly one) into MCell4 Python modules. With --bngl, constructs
that can be expressed in BioNetGen language are written to a .bngl file
instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, opts, args[0])
			if err != nil {
				return &ExitError{Code: ExitUsage, Message: err.Error()}
			}
			return run(cmd.Context(), out, errW, cfg)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errW)

	flags := cmd.Flags()
	flags.StringVarP(&opts.outputPrefix, "output-prefix", "o", app.DefaultOutputPrefix, "prefix of the generated file names")
	flags.StringVar(&opts.outputDir, "output-dir", app.DefaultOutputDir, "directory the files are written to")
	flags.BoolVarP(&opts.testing, "testing", "t", false, "fixed seed, no visualization output and no version banner")
	flags.BoolVarP(&opts.bngl, "bngl", "b", false, "prefer BNGL for constructs it can express")
	flags.StringVar(&opts.settingsPath, "config", "", "HCL settings file")
	flags.StringVar(&opts.logLevel, "log-level", "info", "logging level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log output format: text or json")
	flags.StringToStringVarP(&opts.overrides, "set", "s", nil, "override a parameter expression, NAME=EXPR (repeatable)")
	return cmd
}

// Execute runs the command with args. Every returned error is an *ExitError.
func Execute(ctx context.Context, args []string, out, errW io.Writer) error {
	return execute(ctx, NewCommand(out, errW), args)
}

func execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Flag and argument errors raised by cobra itself.
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf("%v\nRun '%s --help' for usage.", err, cmd.Name())}
}

// buildConfig merges the settings file under the flags. A flag given on the
// command line always wins.
func buildConfig(cmd *cobra.Command, opts *options, input string) (*app.Config, error) {
	// The configured logger does not exist yet.
	logger := slog.Default()
	ctx := ctxlog.WithLogger(cmd.Context(), logger)
	cfg := app.Config{
		InputPath:            input,
		OutputPrefix:         opts.outputPrefix,
		OutputDir:            opts.outputDir,
		Testing:              opts.testing,
		DeclarativePreferred: opts.bngl,
		LogLevel:             opts.logLevel,
		LogFormat:            opts.logFormat,
	}

	overrides := map[string]string{}
	if opts.settingsPath != "" {
		s, err := config.Load(ctx, opts.settingsPath)
		if err != nil {
			return nil, err
		}
		changed := cmd.Flags().Changed
		setString(&cfg.OutputPrefix, s.OutputPrefix, !changed("output-prefix"))
		setString(&cfg.OutputDir, s.OutputDir, !changed("output-dir"))
		setString(&cfg.LogLevel, s.LogLevel, !changed("log-level"))
		setString(&cfg.LogFormat, s.LogFormat, !changed("log-format"))
		if s.Testing != nil && !changed("testing") {
			cfg.Testing = *s.Testing
		}
		if s.DeclarativePreferred != nil && !changed("bngl") {
			cfg.DeclarativePreferred = *s.DeclarativePreferred
		}
		for name, expr := range s.ParameterOverrides {
			overrides[name] = expr
		}
	}
	for name, expr := range opts.overrides {
		overrides[name] = expr
	}
	if len(overrides) > 0 {
		cfg.ParameterOverrides = overrides
	}

	logger.Debug("CLI parameter validation complete.", "input", input, "settings", opts.settingsPath)
	return app.NewConfig(cfg)
}

func setString(dst *string, v *string, apply bool) {
	if v != nil && apply {
		*dst = *v
	}
}

func convert(ctx context.Context, out, errW io.Writer, cfg *app.Config) error {
	summary, err := app.NewApp(errW, cfg).Run(ctx)
	if err != nil {
		return &ExitError{Code: ExitFailed, Message: err.Error()}
	}
	for _, path := range summary.Written {
		fmt.Fprintln(out, path)
	}
	if summary.Failed {
		return &ExitError{
			Code:    ExitFailed,
			Message: fmt.Sprintf("conversion of %s failed; the written files are best-effort and need manual repair", summary.Input),
		}
	}
	return nil
}
