// Package layout reads a destination layout file and compiles it into
// classification rules.
package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docsort/internal/rules"
	"github.com/dgallion1/docsort/internal/tree"
)

// RootKey holds the directory list when the document root is a table, which
// TOML requires and YAML/JSON allow.
const RootKey = "layout"

// Format is a layout file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ErrEmptyDocument is returned when the file decodes to nothing.
var ErrEmptyDocument = errors.New("no root element found")

// FormatFor picks a format from the file extension; unknown extensions are
// read as YAML, the original layout format.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	}
	return FormatYAML
}

// Raw returns the layout file contents unmodified.
func Raw(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout file %q: %w", path, err)
	}
	return data, nil
}

// Load reads, decodes and compiles the layout file at path.
func Load(path string) ([]rules.Rule, error) {
	data, err := Raw(path)
	if err != nil {
		return nil, err
	}
	root, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("parse layout file %q: %w", path, err)
	}
	rs, err := rules.CompileDocument(root)
	if err != nil {
		return nil, fmt.Errorf("layout file %q: %w", path, err)
	}
	return rs, nil
}

// Decode converts raw layout bytes into a generic tree. A root table with a
// "layout" key is unwrapped to that key's value.
func Decode(data []byte, format Format) (tree.Value, error) {
	var (
		root tree.Value
		err  error
	)
	switch format {
	case FormatYAML:
		root, err = decodeYAML(data)
	case FormatTOML:
		root, err = decodeTOML(data)
	case FormatJSON:
		root, err = decodeJSON(data)
	default:
		return tree.Value{}, fmt.Errorf("unsupported layout format %q", format)
	}
	if err != nil {
		return tree.Value{}, err
	}
	if root.IsNull() {
		return tree.Value{}, ErrEmptyDocument
	}
	if inner, ok := root.Get(RootKey); ok {
		return inner, nil
	}
	return root, nil
}

func decodeYAML(data []byte) (tree.Value, error) {
	var doc yaml.Node
	// Only the first document of a multi-document stream is used.
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return tree.Null(), nil
		}
		return tree.Value{}, fmt.Errorf("yaml: %w", err)
	}
	return fromYAML(&doc, 0)
}

const maxYAMLDepth = 1000

func fromYAML(n *yaml.Node, depth int) (tree.Value, error) {
	if depth > maxYAMLDepth {
		return tree.Value{}, fmt.Errorf("yaml: nesting deeper than %d at line %d", maxYAMLDepth, n.Line)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return tree.Null(), nil
		}
		return fromYAML(n.Content[0], depth+1)
	case yaml.SequenceNode:
		items := make([]tree.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAML(c, depth+1)
			if err != nil {
				return tree.Value{}, err
			}
			items = append(items, v)
		}
		return tree.List(items...), nil
	case yaml.MappingNode:
		fields := make([]tree.Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return tree.Value{}, fmt.Errorf("yaml: line %d: mapping keys must be scalars", k.Line)
			}
			val, err := fromYAML(v, depth+1)
			if err != nil {
				return tree.Value{}, err
			}
			fields = append(fields, tree.F(k.Value, val))
		}
		return tree.Map(fields...), nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return tree.Null(), nil
		}
		return tree.String(n.Value), nil
	case yaml.AliasNode:
		if n.Alias == nil {
			return tree.Null(), nil
		}
		return fromYAML(n.Alias, depth+1)
	}
	return tree.Value{}, fmt.Errorf("yaml: line %d: unsupported node kind %d", n.Line, n.Kind)
}

func decodeTOML(data []byte) (tree.Value, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return tree.Value{}, fmt.Errorf("toml: %w", err)
	}
	if len(raw) == 0 {
		return tree.Null(), nil
	}
	v, err := tree.FromAny(raw)
	if err != nil {
		return tree.Value{}, fmt.Errorf("toml: %w", err)
	}
	return v, nil
}

func decodeJSON(data []byte) (tree.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return tree.Null(), nil
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return tree.Value{}, fmt.Errorf("json: %w", err)
	}
	v, err := tree.FromAny(raw)
	if err != nil {
		return tree.Value{}, fmt.Errorf("json: %w", err)
	}
	return v, nil
}
