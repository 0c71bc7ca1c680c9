package program

import (
	"context"
	"os"
	"path/filepath"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/generr"
)

// Write creates or truncates each file under dir and returns the written paths.
func Write(ctx context.Context, dir string, files []File) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, generr.IO(dir, err)
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return paths, generr.IO(path, err)
		}
		logger.Debug("Output unit written.", "path", path, "bytes", len(f.Content))
		paths = append(paths, path)
	}
	return paths, nil
}
