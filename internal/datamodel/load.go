package datamodel

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"gopkg.in/yaml.v3"
)

// RootKey is the required top-level object of a data model document.
const RootKey = "mcell"

// Load reads the document at path and returns its root object (the value of
// the top-level "mcell" member).
func Load(ctx context.Context, path string) (Node, error) {
	logger := ctxlog.FromContext(ctx)
	data, err := os.ReadFile(path)
	if err != nil {
		return Node{}, generr.IO(path, err)
	}
	logger.Debug("Data model file read.", "path", path, "bytes", len(data))
	return Parse(data, path)
}

// Parse decodes a JSON data model document.
func Parse(data []byte, name string) (Node, error) {
	// JSON only permits tabs as whitespace between tokens, where a space is
	// equivalent; YAML rejects tabs that start a line.
	data = bytes.ReplaceAll(data, []byte{'\t'}, []byte{' '})

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Node{}, generr.Structural(name, "cannot parse document: %v", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Node{}, generr.Structural(name, "document is empty")
	}
	top := Node{n: doc.Content[0]}
	if top.n.Kind != yaml.MappingNode {
		return Node{}, generr.Structural(name, "document must be an object")
	}
	root, err := top.Require(RootKey)
	if err != nil {
		return Node{}, fmt.Errorf("%s: %w", name, err)
	}
	return root, nil
}
