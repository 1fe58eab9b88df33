package yamlschema_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/dsl/yamlschema"
)

const createUser = `
command: create_user
required:
  name: {type: string, max_length: 10}
  email:
    type: string
    matches: '^[^@]+@[^@]+$'
optional:
  amount: integer
  role: {type: string, in: [admin, member], default: member}
  tags:
    type: array
    max_length: 2
    elem: {type: string, min_length: 2}
  address:
    type: hash
    required:
      city: string
    optional:
      zip: {type: string, discard_empty: true}
  due: {type: date, after: "2020-01-01"}
`

func TestParse_Document(t *testing.T) {
	doc, err := yamlschema.Parse([]byte(createUser))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Command != "create_user" {
		t.Fatalf("command: %q", doc.Command)
	}
	fields := doc.Schema.Fields()
	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "name,email,amount,role,tags,address,due" {
		t.Fatalf("declaration order: %v", names)
	}
	if !fields[0].Required || fields[0].Options["max_length"] != 10 {
		t.Fatalf("name: %+v", fields[0])
	}
	if fields[3].Default != "member" {
		t.Fatalf("role default: %+v", fields[3])
	}
}

func TestParse_SchemaValidates(t *testing.T) {
	doc, err := yamlschema.Parse([]byte(createUser))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	errs := mutations.NewErrorSet()
	out := doc.Schema.FilterInputs(context.Background(), mutations.Inputs{
		"name":    "John",
		"email":   "nope",
		"amount":  "3",
		"tags":    []any{"ok", "x"},
		"address": map[string]any{"zip": ""},
		"due":     "2019-12-31",
	}, errs)
	want := map[string]string{
		"email":        mutations.CodeFormat,
		"tags.1":       mutations.CodeLength,
		"address.city": mutations.CodeRequired,
		"due":          mutations.CodeRange,
	}
	got := errs.Symbolic()
	if len(got) != len(want) {
		t.Fatalf("symbolic: %v", got)
	}
	for p, c := range want {
		if got[p] != c {
			t.Fatalf("%s: got %q want %q", p, got[p], c)
		}
	}
	if out["role"] != "member" || out["amount"] != int64(3) {
		t.Fatalf("filtered: %v", out)
	}
	if out.Hash("address").Has("zip") {
		t.Fatalf("discard_empty: %v", out["address"])
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want string
	}{
		"empty":          {"", "empty document"},
		"unknown top":    {"commands: x\n", "field commands not found"},
		"unknown type":   {"required:\n  a: decimal\n", `unknown type "decimal"`},
		"unknown option": {"required:\n  a: {type: string, maximum: 3}\n", `a: unknown option "maximum"`},
		"missing type":   {"required:\n  a: {max_length: 3}\n", "a: line 2: missing type"},
		"bad option":     {"required:\n  a: {type: integer, min: many}\n", "a: min: line 2"},
		"bad regexp":     {"required:\n  a: {type: string, matches: '('}\n", "a: matches: line 2"},
		"custom":         {"required:\n  a: custom\n", "cannot be declared in YAML"},
		"nested":         {"optional:\n  h:\n    type: hash\n    required:\n      x: nope\n", `h.x: line 5: unknown type "nope"`},
		"elem":           {"optional:\n  l: {type: array, elem: {type: bool, min: 1}}\n", `l.elem: unknown option "min"`},
		"not a mapping":  {"required: [a, b]\n", "expected a mapping of fields"},
		"default req":    {"required:\n  a: {type: string, default: x}\n", "required field cannot have a default"},
		"duplicate":      {"required:\n  a: string\noptional:\n  a: integer\n", "a: duplicate field"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := yamlschema.Parse([]byte(tc.doc))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user.yaml")
	if err := os.WriteFile(path, []byte("required:\n  name: string\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	doc, err := yamlschema.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Command != "" || len(doc.Schema.Fields()) != 1 {
		t.Fatalf("doc: %+v", doc)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("required:\n  a: nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := yamlschema.Load(bad); err == nil || !strings.HasPrefix(err.Error(), bad+": ") {
		t.Fatalf("error must name the file: %v", err)
	}
	if _, err := yamlschema.Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
