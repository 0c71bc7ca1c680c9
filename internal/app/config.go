package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/dm2mcell/internal/ident"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	InputPath    string // data model document, or a directory holding one
	OutputPrefix string
	OutputDir    string

	Testing              bool
	DeclarativePreferred bool
	ParameterOverrides   map[string]string

	LogFormat string
	LogLevel  string
}

// Defaults applied by NewConfig.
const (
	DefaultOutputPrefix = "model"
	DefaultOutputDir    = "."
)

func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}
	if cfg.OutputPrefix == "" {
		cfg.OutputPrefix = DefaultOutputPrefix
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	// Units import each other by module name.
	if ident.Sanitize(cfg.OutputPrefix) != cfg.OutputPrefix {
		return nil, fmt.Errorf("output prefix %q is not a valid module name", cfg.OutputPrefix)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q: expected text or json", cfg.LogFormat)
	}
	return &cfg, nil
}
