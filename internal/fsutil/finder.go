// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/generr"
)

// DataModelExtension is the extension of exported data model documents.
const DataModelExtension = ".json"

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns their full paths, sorted.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ResolveInput returns the data model document named by path. A directory
// must contain exactly one document.
func ResolveInput(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", generr.IO(path, err)
	}
	if !info.IsDir() {
		return path, nil
	}

	files, err := FindFilesByExtension(path, DataModelExtension)
	if err != nil {
		return "", generr.IO(path, err)
	}
	switch len(files) {
	case 0:
		return "", generr.IO(path, fmt.Errorf("no %s data model found in directory", DataModelExtension))
	case 1:
		return files[0], nil
	}
	return "", generr.IO(path, fmt.Errorf("directory holds %d %s files, expected one: %s",
		len(files), DataModelExtension, strings.Join(files, ", ")))
}
