// Package yamlschema loads command schemas declared in YAML.
//
// A document lists required and optional fields in declaration order:
//
//	command: create_user
//	required:
//	  name: {type: string, max_length: 10}
//	  amount: integer
//	optional:
//	  email: {type: string, matches: '^[^@]+@[^@]+$'}
//	  tags:
//	    type: array
//	    max_length: 5
//	    elem: string
//	  address:
//	    type: hash
//	    required:
//	      city: string
//
// A field is either a bare type name or a mapping with a "type" key plus the
// options of that type. Option names follow FieldSpec.Options: nils,
// discard_empty, default, strict, strip, empty, min_length, max_length, in,
// matches, min, max, layouts, before, after, arrayize, elem, required and
// optional. Custom filters cannot be declared in YAML.
package yamlschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/dsl"
)

// Document is a parsed schema file.
type Document struct {
	// Command is the optional command name declared by the document.
	Command string
	Schema  *dsl.HashFilter
}

type rawDocument struct {
	Command  string    `yaml:"command"`
	Required yaml.Node `yaml:"required"`
	Optional yaml.Node `yaml:"optional"`
}

// Parse decodes a YAML schema document. Unknown top-level keys, unknown
// options and malformed values are errors; so are the checks of dsl.Build.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var raw rawDocument
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("yamlschema: empty document")
		}
		return nil, fmt.Errorf("yamlschema: %w", err)
	}
	blocks, err := parseBlocks("", &raw.Required, &raw.Optional)
	if err != nil {
		return nil, err
	}
	schema, err := dsl.Build(blocks...)
	if err != nil {
		return nil, fmt.Errorf("yamlschema: %w", err)
	}
	return &Document{Command: raw.Command, Schema: schema}, nil
}

// Load reads and parses the schema file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("yamlschema: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func parseBlocks(path string, required, optional *yaml.Node) ([]dsl.Block, error) {
	req, err := parseFields(path, required)
	if err != nil {
		return nil, err
	}
	opt, err := parseFields(path, optional)
	if err != nil {
		return nil, err
	}
	return []dsl.Block{dsl.Required(req...), dsl.Optional(opt...)}, nil
}

func parseFields(path string, n *yaml.Node) ([]dsl.Filter, error) {
	if n == nil || n.Kind == 0 {
		return nil, nil
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("yamlschema: %s: line %d: expected a mapping of fields", where(path), n.Line)
	}
	out := make([]dsl.Filter, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		f, err := parseField(mutations.JoinPath(path, name), name, n.Content[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func where(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

// options tracks the option nodes of one field; consumed keys are removed so
// leftovers can be reported as unknown.
type options struct {
	path  string
	nodes map[string]*yaml.Node
	err   error
}

func (o *options) fail(key string, line int, err error) {
	if o.err == nil {
		o.err = fmt.Errorf("yamlschema: %s: %s: line %d: %w", where(o.path), key, line, err)
	}
}

func (o *options) take(key string) (*yaml.Node, bool) {
	n, ok := o.nodes[key]
	if ok {
		delete(o.nodes, key)
	}
	return n, ok
}

func (o *options) leftover() error {
	if o.err != nil || len(o.nodes) == 0 {
		return o.err
	}
	keys := make([]string, 0, len(o.nodes))
	for k := range o.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("yamlschema: %s: unknown option %q", where(o.path), keys[0])
}

func opt[T any](o *options, key string, apply func(T)) {
	n, ok := o.take(key)
	if !ok || o.err != nil {
		return
	}
	var v T
	if err := n.Decode(&v); err != nil {
		o.fail(key, n.Line, err)
		return
	}
	apply(v)
}

func flag(o *options, key string, apply func()) {
	opt(o, key, func(b bool) {
		if b {
			apply()
		}
	})
}

func parseTime(s string) (time.Time, error) {
	for _, l := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a time", s)
}

func timeOpt(o *options, key string, apply func(time.Time)) {
	n := o.nodes[key]
	opt(o, key, func(s string) {
		t, err := parseTime(s)
		if err != nil {
			o.fail(key, n.Line, err)
			return
		}
		apply(t)
	})
}

func parseField(path, name string, n *yaml.Node) (dsl.Filter, error) {
	o := &options{path: path, nodes: map[string]*yaml.Node{}}
	var typeName string
	switch n.Kind {
	case yaml.ScalarNode:
		typeName = n.Value
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			o.nodes[n.Content[i].Value] = n.Content[i+1]
		}
		tn, ok := o.take("type")
		if !ok {
			return nil, fmt.Errorf("yamlschema: %s: line %d: missing type", where(path), n.Line)
		}
		typeName = tn.Value
	default:
		return nil, fmt.Errorf("yamlschema: %s: line %d: expected a type name or a mapping", where(path), n.Line)
	}
	typ, ok := mutations.ParseType(typeName)
	if !ok {
		return nil, fmt.Errorf("yamlschema: %s: line %d: unknown type %q", where(path), n.Line, typeName)
	}

	var f dsl.Filter
	switch typ {
	case mutations.TypeString:
		s := dsl.String(name)
		flag(o, "strict", func() { s.Strict() })
		opt(o, "strip", func(b bool) {
			if !b {
				s.NoStrip()
			}
		})
		flag(o, "empty", func() { s.AllowEmpty() })
		opt(o, "min_length", func(v int) { s.MinLength(v) })
		opt(o, "max_length", func(v int) { s.MaxLength(v) })
		opt(o, "in", func(v []string) { s.In(v...) })
		if mn, ok := o.nodes["matches"]; ok {
			opt(o, "matches", func(v string) {
				re, err := regexp.Compile(v)
				if err != nil {
					o.fail("matches", mn.Line, err)
					return
				}
				s.Matches(re)
			})
		}
		opt(o, "default", func(v string) { s.Default(v) })
		flag(o, "nils", func() { s.AllowNil() })
		flag(o, "discard_empty", func() { s.DiscardEmpty() })
		f = s
	case mutations.TypeInteger:
		i := dsl.Integer(name)
		opt(o, "min", func(v int64) { i.Min(v) })
		opt(o, "max", func(v int64) { i.Max(v) })
		opt(o, "in", func(v []int64) { i.In(v...) })
		opt(o, "default", func(v int64) { i.Default(v) })
		flag(o, "nils", func() { i.AllowNil() })
		flag(o, "discard_empty", func() { i.DiscardEmpty() })
		f = i
	case mutations.TypeFloat:
		fl := dsl.Float(name)
		opt(o, "min", func(v float64) { fl.Min(v) })
		opt(o, "max", func(v float64) { fl.Max(v) })
		opt(o, "default", func(v float64) { fl.Default(v) })
		flag(o, "nils", func() { fl.AllowNil() })
		flag(o, "discard_empty", func() { fl.DiscardEmpty() })
		f = fl
	case mutations.TypeBoolean:
		b := dsl.Boolean(name)
		opt(o, "default", func(v bool) { b.Default(v) })
		flag(o, "nils", func() { b.AllowNil() })
		f = b
	case mutations.TypeTime:
		t := dsl.Time(name)
		opt(o, "layouts", func(v []string) { t.Layouts(v...) })
		timeOpt(o, "before", func(v time.Time) { t.Before(v) })
		timeOpt(o, "after", func(v time.Time) { t.After(v) })
		timeOpt(o, "default", func(v time.Time) { t.Default(v) })
		flag(o, "nils", func() { t.AllowNil() })
		flag(o, "discard_empty", func() { t.DiscardEmpty() })
		f = t
	case mutations.TypeArray:
		var elem dsl.Filter
		if en, ok := o.take("elem"); ok {
			e, err := parseField(path+".elem", "", en)
			if err != nil {
				return nil, err
			}
			elem = e
		}
		a := dsl.Array(name, elem)
		opt(o, "min_length", func(v int) { a.MinLength(v) })
		opt(o, "max_length", func(v int) { a.MaxLength(v) })
		flag(o, "arrayize", func() { a.Arrayize() })
		opt(o, "default", func(v []any) { a.Default(v) })
		flag(o, "nils", func() { a.AllowNil() })
		f = a
	case mutations.TypeHash:
		req, _ := o.take("required")
		optional, _ := o.take("optional")
		blocks, err := parseBlocks(path, req, optional)
		if err != nil {
			return nil, err
		}
		h := dsl.Hash(name, blocks...)
		opt(o, "default", func(v map[string]any) { h.Default(v) })
		flag(o, "nils", func() { h.AllowNil() })
		f = h
	case mutations.TypeAny:
		a := dsl.Any(name)
		opt(o, "default", func(v any) { a.Default(v) })
		flag(o, "nils", func() { a.AllowNil() })
		f = a
	default:
		return nil, fmt.Errorf("yamlschema: %s: line %d: type %s cannot be declared in YAML", where(path), n.Line, typ)
	}
	if err := o.leftover(); err != nil {
		return nil, err
	}
	return f, nil
}
