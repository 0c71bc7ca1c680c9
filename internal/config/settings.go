package config

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Settings are the values read from a settings file. Nil fields were not set.
type Settings struct {
	OutputPrefix         *string
	OutputDir            *string
	Testing              *bool
	DeclarativePreferred *bool
	LogLevel             *string
	LogFormat            *string
	ParameterOverrides   map[string]string
}

// fileRoot is the decoding target for the whole file.
type fileRoot struct {
	OutputPrefix         *string        `hcl:"output_prefix,optional"`
	OutputDir            *string        `hcl:"output_dir,optional"`
	Testing              *bool          `hcl:"testing,optional"`
	DeclarativePreferred *bool          `hcl:"declarative_preferred,optional"`
	Log                  *logBlock      `hcl:"log,block"`
	ParameterOverrides   hcl.Expression `hcl:"parameter_overrides,optional"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

// Load reads and decodes the settings file at path.
func Load(ctx context.Context, path string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading settings file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}
	s, err := decode(file.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, err)
	}
	logger.Debug("Settings file loaded.", "path", path, "parameter_overrides", len(s.ParameterOverrides))
	return s, nil
}

// Parse decodes settings from src; filename is used in diagnostics.
func Parse(src []byte, filename string) (*Settings, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", filename, diags)
	}
	s, err := decode(file.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", filename, err)
	}
	return s, nil
}

func decode(body hcl.Body) (*Settings, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	s := &Settings{
		OutputPrefix:         root.OutputPrefix,
		OutputDir:            root.OutputDir,
		Testing:              root.Testing,
		DeclarativePreferred: root.DeclarativePreferred,
	}
	if root.Log != nil {
		s.LogLevel = root.Log.Level
		s.LogFormat = root.Log.Format
	}

	overrides, err := decodeOverrides(root.ParameterOverrides)
	if err != nil {
		return nil, err
	}
	s.ParameterOverrides = overrides
	return s, nil
}

// decodeOverrides evaluates the parameter_overrides expression into a map of
// expression strings.
func decodeOverrides(expr hcl.Expression) (map[string]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("parameter_overrides must be known at load time")
	}

	converted, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("parameter_overrides must map parameter names to strings or numbers: %w", err)
	}
	var out map[string]string
	if err := gocty.FromCtyValue(converted, &out); err != nil {
		return nil, fmt.Errorf("failed to decode parameter_overrides: %w", err)
	}
	return out, nil
}
