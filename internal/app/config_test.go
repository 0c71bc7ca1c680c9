package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "input required", cfg: Config{}, wantErr: "InputPath is a required"},
		{name: "bad prefix", cfg: Config{InputPath: "m.json", OutputPrefix: "my-model"}, wantErr: "not a valid module name"},
		{name: "bad level", cfg: Config{InputPath: "m.json", LogLevel: "loud"}, wantErr: "unknown log level"},
		{name: "bad format", cfg: Config{InputPath: "m.json", LogFormat: "xml"}, wantErr: "unknown log format"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	cfg, err := NewConfig(Config{InputPath: "m.json"})
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputPrefix, cfg.OutputPrefix)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "phase", "geometry")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "geometry", rec["phase"])

	buf.Reset()
	newLogger("", "", &buf).Debug("dropped at the default level")
	assert.Empty(t, buf.String())
}
