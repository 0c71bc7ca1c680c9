package datamodel

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/generr"
	"gopkg.in/yaml.v3"
)

// Node is a position in the document tree. The zero Node is absent.
type Node struct {
	n    *yaml.Node
	path string
}

// Present reports whether the node exists in the document.
func (n Node) Present() bool { return n.n != nil }

// Path is the dotted location of the node, e.g. "mcell.define_reactions.reaction_list[2]".
func (n Node) Path() string { return n.path }

// Line is the 1-based source line, or 0 for an absent node.
func (n Node) Line() int {
	if n.n == nil {
		return 0
	}
	return n.n.Line
}

func (n Node) where() string {
	if line := n.Line(); line > 0 {
		return fmt.Sprintf("%s (line %d)", n.path, line)
	}
	return n.path
}

func (n Node) child(key string) string {
	if n.path == "" {
		return key
	}
	return n.path + "." + key
}

// Get returns the member named key of an object node.
func (n Node) Get(key string) Node {
	if n.n == nil || n.n.Kind != yaml.MappingNode {
		return Node{path: n.child(key)}
	}
	for i := 0; i+1 < len(n.n.Content); i += 2 {
		if n.n.Content[i].Value == key {
			return Node{n: n.n.Content[i+1], path: n.child(key)}
		}
	}
	return Node{path: n.child(key)}
}

// Has reports whether key is present and not null.
func (n Node) Has(key string) bool {
	c := n.Get(key)
	return c.Present() && !c.IsNull()
}

// IsNull reports whether the node is an explicit null.
func (n Node) IsNull() bool {
	return n.n != nil && n.n.Kind == yaml.ScalarNode && n.n.Tag == "!!null"
}

// Require returns the member named key or a StructuralError if it is missing.
func (n Node) Require(key string) (Node, error) {
	c := n.Get(key)
	if !c.Present() || c.IsNull() {
		return c, generr.Structural(n.where(), "missing required field %q", key)
	}
	return c, nil
}

// Items returns the elements of an array node. Absent nodes have no items.
func (n Node) Items() []Node {
	if n.n == nil || n.n.Kind != yaml.SequenceNode {
		return nil
	}
	items := make([]Node, len(n.n.Content))
	for i, c := range n.n.Content {
		items[i] = Node{n: c, path: fmt.Sprintf("%s[%d]", n.path, i)}
	}
	return items
}

// RequireItems returns the elements of the array named key, which must exist.
func (n Node) RequireItems(key string) ([]Node, error) {
	c, err := n.Require(key)
	if err != nil {
		return nil, err
	}
	if c.n.Kind != yaml.SequenceNode {
		return nil, generr.Structural(c.where(), "field %q must be an array", key)
	}
	return c.Items(), nil
}

// Text returns the literal text of a scalar node and "" otherwise.
func (n Node) Text() string {
	if n.n == nil || n.n.Kind != yaml.ScalarNode || n.IsNull() {
		return ""
	}
	return n.n.Value
}

// String returns the trimmed text of member key, or def when it is absent or empty.
func (n Node) String(key, def string) string {
	s := strings.TrimSpace(n.Get(key).Text())
	if s == "" {
		return def
	}
	return s
}

// RequireString returns the trimmed, non-empty text of member key.
func (n Node) RequireString(key string) (string, error) {
	c, err := n.Require(key)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(c.Text())
	if s == "" {
		return "", generr.Structural(c.where(), "field %q must be a non-empty value", key)
	}
	return s, nil
}

// Bool returns member key as a boolean. The document tool writes booleans as
// JSON booleans, but older files use 0/1 and "True"/"False".
func (n Node) Bool(key string, def bool) (bool, error) {
	c := n.Get(key)
	s := strings.TrimSpace(c.Text())
	if s == "" {
		return def, nil
	}
	switch strings.ToLower(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return def, generr.Structural(c.where(), "field %q is not a boolean: %q", key, s)
}

// Float returns member key as a number.
func (n Node) Float(key string, def float64) (float64, error) {
	c := n.Get(key)
	s := strings.TrimSpace(c.Text())
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def, generr.Structural(c.where(), "field %q is not a number: %q", key, s)
	}
	return f, nil
}

// Floats decodes an array of numbers.
func (n Node) Floats() ([]float64, error) {
	items := n.Items()
	out := make([]float64, len(items))
	for i, it := range items {
		f, err := strconv.ParseFloat(strings.TrimSpace(it.Text()), 64)
		if err != nil {
			return nil, generr.Structural(it.where(), "expected a number, got %q", it.Text())
		}
		out[i] = f
	}
	return out, nil
}

// Vectors decodes member key as an array of fixed-width numeric tuples,
// e.g. vertex lists or face index triples.
func (n Node) Vectors(key string, width int) ([][]float64, error) {
	c := n.Get(key)
	var out [][]float64
	for _, it := range c.Items() {
		v, err := it.Floats()
		if err != nil {
			return nil, err
		}
		if len(v) != width {
			return nil, generr.Structural(it.where(), "expected %d values, got %d", width, len(v))
		}
		out = append(out, v)
	}
	return out, nil
}

// Strings decodes member key as an array of scalars.
func (n Node) Strings(key string) []string {
	var out []string
	for _, it := range n.Get(key).Items() {
		out = append(out, strings.TrimSpace(it.Text()))
	}
	return out
}

// CheckVersion compares the node's data_model_version tag with want. An absent
// tag is logged as a warning; a different tag is a StructuralError.
func (n Node) CheckVersion(ctx context.Context, want string) error {
	got := n.String("data_model_version", "")
	if got == "" {
		ctxlog.FromContext(ctx).Warn("Data model version tag missing.", "path", n.path, "expected", want)
		return nil
	}
	if got != want {
		return generr.Structural(n.where(), "data model version %q does not match expected %q", got, want)
	}
	return nil
}
