// Package rules turns a nested directory layout into flat classification
// rules and matches those rules against document text.
package rules

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dgallion1/docsort/internal/tree"
)

// Layout node field names.
const (
	FieldDir      = "dir"
	FieldKeywords = "keywords"
	FieldSub      = "sub"
)

// Rule is one destination with the full set of keywords, inherited from
// every ancestor, that a document must contain to be filed there.
type Rule struct {
	Destination string   `json:"destination"`
	Keywords    []string `json:"keywords"`
}

// Path returns the destination as an OS-specific relative path.
func (r Rule) Path() string {
	return filepath.FromSlash(r.Destination)
}

func (r Rule) String() string {
	return fmt.Sprintf("(path: %q, keywords: %s)", r.Destination, r.KeywordList())
}

// KeywordList renders the keywords as a bracketed list of quoted strings.
func (r Rule) KeywordList() string {
	quoted := make([]string, len(r.Keywords))
	for i, kw := range r.Keywords {
		quoted[i] = fmt.Sprintf("%q", kw)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// scope is the inherited context of a subtree. It is passed by value and
// every extension copies, so sibling subtrees never share backing arrays.
type scope struct {
	path     string
	keywords []string
}

func (s scope) child(name string, own []string) scope {
	path := name
	if s.path != "" {
		path = s.path + "/" + name
	}
	kws := slices.Clone(s.keywords)
	for _, kw := range own {
		if !slices.Contains(kws, kw) {
			kws = append(kws, kw)
		}
	}
	return scope{path: path, keywords: kws}
}

// CompileDocument compiles a whole layout document, whose root must be a
// list of nodes.
func CompileDocument(root tree.Value) ([]Rule, error) {
	nodes, ok := root.Items()
	if !ok {
		return nil, &ConfigError{
			Kind:   InvalidNode,
			Detail: fmt.Sprintf("layout root must be a list of directories, got %s", root.Kind()),
		}
	}
	return Compile(nodes)
}

// Compile flattens layout nodes into rules in depth-first pre-order: every
// node yields exactly one rule, and a parent's rule precedes its
// descendants'. It stops at the first malformed node.
func Compile(nodes []tree.Value) ([]Rule, error) {
	rules := []Rule{}
	if err := compileNodes(nodes, scope{}, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func compileNodes(nodes []tree.Value, parent scope, out *[]Rule) error {
	for _, node := range nodes {
		if node.Kind() != tree.KindMap {
			return &ConfigError{
				Kind:   InvalidNode,
				Path:   parent.path,
				Detail: fmt.Sprintf("expected a mapping, got %s", node.Kind()),
			}
		}

		name, err := nodeName(node, parent.path)
		if err != nil {
			return err
		}
		// The destination exists as soon as the name is known; keyword
		// errors below report it.
		path := parent.child(name, nil).path

		own, err := nodeKeywords(node, path)
		if err != nil {
			return err
		}
		current := parent.child(name, own)
		*out = append(*out, Rule{Destination: current.path, Keywords: current.keywords})

		children, err := nodeChildren(node, path)
		if err != nil {
			return err
		}
		if err := compileNodes(children, current, out); err != nil {
			return err
		}
	}
	return nil
}

func nodeName(node tree.Value, parentPath string) (string, error) {
	v, ok := node.Get(FieldDir)
	if !ok {
		return "", &ConfigError{Kind: MissingField, Field: FieldDir, Path: parentPath}
	}
	name, ok := v.Str()
	if !ok {
		return "", &ConfigError{
			Kind:   InvalidName,
			Field:  FieldDir,
			Path:   parentPath,
			Detail: fmt.Sprintf("expected a string, got %s", v.Kind()),
		}
	}
	name = strings.TrimSpace(name)
	switch {
	case name == "", name == ".", name == "..":
		return "", &ConfigError{Kind: InvalidName, Field: FieldDir, Path: parentPath, Detail: fmt.Sprintf("%q is not a directory name", name)}
	case strings.ContainsAny(name, `/\`):
		return "", &ConfigError{Kind: InvalidName, Field: FieldDir, Path: parentPath, Detail: fmt.Sprintf("%q contains a path separator, use sub instead", name)}
	}
	return name, nil
}

func nodeKeywords(node tree.Value, path string) ([]string, error) {
	v, ok := node.Get(FieldKeywords)
	if !ok || v.IsNull() {
		return nil, nil
	}
	items, ok := v.Items()
	if !ok {
		return nil, &ConfigError{
			Kind:   InvalidKeywords,
			Field:  FieldKeywords,
			Path:   path,
			Detail: fmt.Sprintf("expected a list of strings, got %s", v.Kind()),
		}
	}
	kws := make([]string, 0, len(items))
	for i, item := range items {
		kw, ok := item.Str()
		if !ok {
			return nil, &ConfigError{
				Kind:   InvalidKeywords,
				Field:  FieldKeywords,
				Path:   path,
				Detail: fmt.Sprintf("item %d: expected a string, got %s", i, item.Kind()),
			}
		}
		if kw == "" {
			return nil, &ConfigError{
				Kind:   InvalidKeywords,
				Field:  FieldKeywords,
				Path:   path,
				Detail: fmt.Sprintf("item %d is empty", i),
			}
		}
		kws = append(kws, kw)
	}
	return kws, nil
}

func nodeChildren(node tree.Value, path string) ([]tree.Value, error) {
	v, ok := node.Get(FieldSub)
	if !ok || v.IsNull() {
		return nil, nil
	}
	items, ok := v.Items()
	if !ok {
		return nil, &ConfigError{
			Kind:   InvalidChildren,
			Field:  FieldSub,
			Path:   path,
			Detail: fmt.Sprintf("expected a list of directories, got %s", v.Kind()),
		}
	}
	return items, nil
}
