package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/dm2mcell/internal/app"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a generation run.
type HarnessResult struct {
	LogOutput string
	Err       error
	Summary   *app.Summary
	// Files maps output file names to their contents.
	Files map[string]string
	// OutputDir is where the files were written.
	OutputDir string
}

// RunGeneration writes doc to a temporary directory and converts it with
// cfg. InputPath and OutputDir are filled in when empty; logs are captured
// at debug level in text format.
func RunGeneration(t *testing.T, doc *Doc, cfg app.Config) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	if cfg.InputPath == "" {
		cfg.InputPath = doc.Write(t, tmpDir)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(tmpDir, "out")
	}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"

	appCfg, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	a := app.NewApp(logBuffer, appCfg)
	summary, runErr := a.Run(context.Background())

	result := &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		Summary:   summary,
		Files:     make(map[string]string),
		OutputDir: cfg.OutputDir,
	}
	if summary != nil {
		for _, path := range summary.Written {
			content, err := os.ReadFile(path)
			require.NoError(t, err)
			result.Files[filepath.Base(path)] = string(content)
		}
	}
	return result
}
