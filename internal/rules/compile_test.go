package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/docsort/internal/tree"
)

func dir(name string, keywords []string, sub ...tree.Value) tree.Value {
	fields := []tree.Field{tree.F(FieldDir, tree.String(name))}
	if keywords != nil {
		fields = append(fields, tree.F(FieldKeywords, tree.Strings(keywords...)))
	}
	if sub != nil {
		fields = append(fields, tree.F(FieldSub, tree.List(sub...)))
	}
	return tree.Map(fields...)
}

func TestCompile_BillsExample(t *testing.T) {
	nodes := []tree.Value{
		dir("bills", []string{"bill"}, dir("electric", []string{"kwh"})),
	}

	got, err := Compile(nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Rule{
		{Destination: "bills", Keywords: []string{"bill"}},
		{Destination: "bills/electric", Keywords: []string{"bill", "kwh"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_Empty(t *testing.T) {
	got, err := Compile(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil rule list, got %#v", got)
	}
}

func TestCompile_PreOrderAndOneRulePerNode(t *testing.T) {
	nodes := []tree.Value{
		dir("finance", []string{"bank"},
			dir("statements", []string{"statement"},
				dir("2023", []string{"2023"}),
				dir("2024", []string{"2024"}),
			),
			dir("loans", nil),
		),
		dir("misc", nil),
		dir("taxes", []string{"tax"}),
	}

	got, err := Compile(nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var dests []string
	for _, r := range got {
		dests = append(dests, r.Destination)
	}
	want := []string{
		"finance",
		"finance/statements",
		"finance/statements/2023",
		"finance/statements/2024",
		"finance/loans",
		"misc",
		"taxes",
	}
	if diff := cmp.Diff(want, dests); diff != "" {
		t.Errorf("destination order mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_ChildRulesExtendParents(t *testing.T) {
	nodes := []tree.Value{
		dir("a", []string{"x"},
			dir("b", []string{"y", "x"},
				dir("c", nil),
				dir("d", []string{"z"}),
			),
		),
	}

	got, err := Compile(nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byDest := make(map[string]Rule)
	for _, r := range got {
		byDest[r.Destination] = r
	}

	for _, r := range got {
		idx := strings.LastIndex(r.Destination, "/")
		if idx < 0 {
			continue
		}
		parent, ok := byDest[r.Destination[:idx]]
		if !ok {
			t.Fatalf("no parent rule for %q", r.Destination)
		}
		for _, kw := range parent.Keywords {
			found := false
			for _, ck := range r.Keywords {
				if ck == kw {
					found = true
				}
			}
			if !found {
				t.Errorf("%q is missing inherited keyword %q", r.Destination, kw)
			}
		}
	}

	// Repeated keywords are collapsed.
	if diff := cmp.Diff([]string{"x", "y"}, byDest["a/b"].Keywords); diff != "" {
		t.Errorf("a/b keywords mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y", "z"}, byDest["a/b/d"].Keywords); diff != "" {
		t.Errorf("a/b/d keywords mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_SiblingsDoNotShareKeywords(t *testing.T) {
	// Appending to an inherited slice must not leak into a sibling.
	nodes := []tree.Value{
		dir("p", []string{"a", "b", "c"},
			dir("left", []string{"l"}),
			dir("right", []string{"r"}),
		),
	}
	got, err := Compile(nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "l"}, got[1].Keywords); diff != "" {
		t.Errorf("left keywords mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "r"}, got[2].Keywords); diff != "" {
		t.Errorf("right keywords mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_NullFieldsAreAbsent(t *testing.T) {
	nodes := []tree.Value{
		tree.Map(
			tree.F(FieldDir, tree.String("inbox")),
			tree.F(FieldKeywords, tree.Null()),
			tree.F(FieldSub, tree.Null()),
		),
	}
	got, err := Compile(nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || len(got[0].Keywords) != 0 {
		t.Errorf("expected one keyword-less rule, got %v", got)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []tree.Value
		kind     ErrorKind
		sentinel error
		path     string
	}{
		{
			name:     "missing dir",
			nodes:    []tree.Value{tree.Map(tree.F(FieldKeywords, tree.Strings("x")))},
			kind:     MissingField,
			sentinel: ErrMissingField,
		},
		{
			name:     "node is not a mapping",
			nodes:    []tree.Value{tree.String("bills")},
			kind:     InvalidNode,
			sentinel: ErrInvalidNode,
		},
		{
			name: "keywords not a list",
			nodes: []tree.Value{
				dir("bills", nil, tree.Map(
					tree.F(FieldDir, tree.String("electric")),
					tree.F(FieldKeywords, tree.String("kwh")),
				)),
			},
			kind:     InvalidKeywords,
			sentinel: ErrInvalidKeywords,
			path:     "bills/electric",
		},
		{
			name: "keyword not a string",
			nodes: []tree.Value{tree.Map(
				tree.F(FieldDir, tree.String("bills")),
				tree.F(FieldKeywords, tree.List(tree.String("bill"), tree.List())),
			)},
			kind:     InvalidKeywords,
			sentinel: ErrInvalidKeywords,
			path:     "bills",
		},
		{
			name: "empty keyword",
			nodes: []tree.Value{tree.Map(
				tree.F(FieldDir, tree.String("bills")),
				tree.F(FieldKeywords, tree.Strings("")),
			)},
			kind:     InvalidKeywords,
			sentinel: ErrInvalidKeywords,
			path:     "bills",
		},
		{
			name: "sub not a list",
			nodes: []tree.Value{tree.Map(
				tree.F(FieldDir, tree.String("bills")),
				tree.F(FieldSub, tree.Map(tree.F(FieldDir, tree.String("electric")))),
			)},
			kind:     InvalidChildren,
			sentinel: ErrInvalidChildren,
			path:     "bills",
		},
		{
			name:     "child not a mapping",
			nodes:    []tree.Value{dir("bills", nil, tree.String("electric"))},
			kind:     InvalidNode,
			sentinel: ErrInvalidNode,
			path:     "bills",
		},
		{
			name:     "dir not a string",
			nodes:    []tree.Value{tree.Map(tree.F(FieldDir, tree.List()))},
			kind:     InvalidName,
			sentinel: ErrInvalidName,
		},
		{
			name:     "dir with separator",
			nodes:    []tree.Value{dir("bills", nil, dir("a/b", nil))},
			kind:     InvalidName,
			sentinel: ErrInvalidName,
			path:     "bills",
		},
		{
			name:     "dir is dot-dot",
			nodes:    []tree.Value{dir("..", nil)},
			kind:     InvalidName,
			sentinel: ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := Compile(tt.nodes)
			if err == nil {
				t.Fatalf("expected error, got rules %v", rules)
			}
			if rules != nil {
				t.Errorf("expected no rules on error, got %v", rules)
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConfigError, got %T: %v", err, err)
			}
			if cerr.Kind != tt.kind {
				t.Errorf("expected kind %d, got %d", tt.kind, cerr.Kind)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("expected errors.Is(%v)", tt.sentinel)
			}
			if cerr.Path != tt.path {
				t.Errorf("expected path %q, got %q", tt.path, cerr.Path)
			}
		})
	}
}

func TestCompile_FailsFastOnFirstMalformedNode(t *testing.T) {
	nodes := []tree.Value{
		dir("ok", []string{"a"}),
		tree.Map(tree.F(FieldDir, tree.String("bad")), tree.F(FieldKeywords, tree.String("x"))),
		tree.Map(tree.F(FieldKeywords, tree.Strings("y"))),
	}
	_, err := Compile(nodes)
	if !errors.Is(err, ErrInvalidKeywords) {
		t.Fatalf("expected first error to be invalid keywords, got %v", err)
	}
}

func TestCompileDocument_RootMustBeList(t *testing.T) {
	_, err := CompileDocument(dir("bills", nil))
	if !errors.Is(err, ErrInvalidNode) {
		t.Fatalf("expected invalid node error, got %v", err)
	}

	got, err := CompileDocument(tree.List(dir("bills", []string{"bill"})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 rule, got %d", len(got))
	}
}

func TestConfigError_Message(t *testing.T) {
	err := &ConfigError{Kind: MissingField, Field: FieldDir, Path: "bills"}
	if got, want := err.Error(), `missing field "dir" at "bills"`; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	err = &ConfigError{Kind: InvalidNode, Detail: "expected a mapping, got string"}
	if got, want := err.Error(), "invalid node at top level: expected a mapping, got string"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRule_String(t *testing.T) {
	r := Rule{Destination: "bills/electric", Keywords: []string{"bill", "kwh"}}
	want := `(path: "bills/electric", keywords: ["bill", "kwh"])`
	if r.String() != want {
		t.Errorf("expected %q, got %q", want, r.String())
	}
}
