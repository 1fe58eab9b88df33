package dsl

import (
	"context"
	"errors"
	"fmt"

	mutations "github.com/reoring/mutations"
	js "github.com/reoring/mutations/jsonschema"
)

// HashFilter declares a hash field: an ordered set of nested declarations.
// Unknown keys are dropped. A HashFilter returned by Build is also the
// top-level mutations.Schema of a command.
type HashFilter struct {
	base
	fields []field
}

// Ensure HashFilter implements mutations.Schema
var _ mutations.Schema = (*HashFilter)(nil)

// Hash declares a nested hash field.
func Hash(name string, blocks ...Block) *HashFilter {
	h := &HashFilter{base: base{name: name}}
	for _, b := range blocks {
		h.add(b)
	}
	return h
}

func (h *HashFilter) add(b Block) {
	for _, f := range b.filters {
		h.fields = append(h.fields, field{filter: f, required: b.required})
	}
}

// Required appends required declarations.
func (h *HashFilter) Required(fs ...Filter) *HashFilter { h.add(Required(fs...)); return h }

// Optional appends optional declarations.
func (h *HashFilter) Optional(fs ...Filter) *HashFilter { h.add(Optional(fs...)); return h }

// AllowNil accepts nil values.
func (h *HashFilter) AllowNil() *HashFilter { h.allowNil = true; return h }

// Default fills an absent optional field.
func (h *HashFilter) Default(v map[string]any) *HashFilter { h.def, h.hasDefault = v, true; return h }

// Check adds a cross-field validation callback, run only when every nested
// field is valid.
func (h *HashFilter) Check(fn CheckFunc) *HashFilter { h.checks = append(h.checks, fn); return h }

// Build assembles a top-level schema from required/optional blocks and
// verifies it: names must be unique per hash and non-empty, and required
// fields cannot carry defaults.
func Build(blocks ...Block) (*HashFilter, error) {
	h := Hash("", blocks...)
	if err := h.verify(""); err != nil {
		return nil, err
	}
	return h, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(blocks ...Block) *HashFilter {
	h, err := Build(blocks...)
	if err != nil {
		panic(err)
	}
	return h
}

func (h *HashFilter) verify(path string) error {
	var errs []error
	seen := make(map[string]struct{}, len(h.fields))
	for _, fd := range h.fields {
		if fd.filter == nil {
			errs = append(errs, fmt.Errorf("dsl: %s: nil filter", displayPath(path)))
			continue
		}
		name := fd.filter.Name()
		p := mutations.JoinPath(path, name)
		if name == "" {
			errs = append(errs, fmt.Errorf("dsl: %s: field without a name", displayPath(path)))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("dsl: %s: duplicate field", p))
		}
		seen[name] = struct{}{}
		if fd.required && fd.filter.settings().hasDefault {
			errs = append(errs, fmt.Errorf("dsl: %s: required field cannot have a default", p))
		}
		if err := verifyNested(p, fd.filter); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func verifyNested(path string, f Filter) error {
	switch t := f.(type) {
	case *HashFilter:
		return t.verify(path)
	case *ArrayFilter:
		if t.elem != nil {
			return verifyNested(path, t.elem)
		}
	}
	return nil
}

func displayPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}

func (h *HashFilter) Type() mutations.Type { return mutations.TypeHash }

// Fields describes the nested declarations in declaration order.
func (h *HashFilter) Fields() []mutations.FieldSpec {
	out := make([]mutations.FieldSpec, 0, len(h.fields))
	for _, fd := range h.fields {
		out = append(out, Spec(fd.filter, fd.required))
	}
	return out
}

// FilterInputs implements mutations.Schema: coerce every declared field, then
// validate the whole tree into errs.
func (h *HashFilter) FilterInputs(ctx context.Context, in mutations.Inputs, errs *mutations.ErrorSet) mutations.Inputs {
	if in == nil {
		in = mutations.Inputs{}
	}
	out, _ := h.coerce(ctx, in).(mutations.Inputs)
	validateValue(ctx, h, "", out, errs)
	if !errs.Empty() {
		resolve(h, out)
	}
	return out
}

func (h *HashFilter) coerce(ctx context.Context, raw any) any {
	m, ok := mutations.NormalizeMap(raw)
	if !ok {
		return mismatch{raw}
	}
	out := make(mutations.Inputs, len(h.fields))
	for _, fd := range h.fields {
		name := fd.filter.Name()
		b := fd.filter.settings()
		v, present := m[name]
		if present && v == nil && !b.allowNil && !fd.required {
			present = false
		}
		if present && b.discardEmpty && isBlank(v) {
			present = false
		}
		if !present {
			if b.hasDefault && !fd.required {
				out[name] = coerceValue(ctx, fd.filter, b.def)
			}
			continue
		}
		out[name] = coerceValue(ctx, fd.filter, v)
	}
	return out
}

func (h *HashFilter) check(ctx context.Context, path string, v any, errs *mutations.ErrorSet) {
	m := v.(mutations.Inputs)
	for _, fd := range h.fields {
		name := fd.filter.Name()
		p := mutations.JoinPath(path, name)
		val, ok := m[name]
		if !ok {
			if fd.required {
				errs.Add(p, mutations.CodeRequired, "")
			}
			continue
		}
		validateValue(ctx, fd.filter, p, val, errs)
	}
}

func (h *HashFilter) options() map[string]any { return h.commonOptions(nil) }

func (h *HashFilter) JSONSchema() (*js.Schema, error) {
	props := make(map[string]*js.Schema, len(h.fields))
	var req []string
	for _, fd := range h.fields {
		ps, err := fd.filter.JSONSchema()
		if err != nil {
			return nil, err
		}
		if ps == nil {
			ps = &js.Schema{}
		}
		props[fd.filter.Name()] = ps
		if fd.required {
			req = append(req, fd.filter.Name())
		}
	}
	// Unknown keys are accepted then dropped, so they are allowed in JSON
	// Schema terms.
	s := &js.Schema{Type: "object", Properties: props, Required: req, AdditionalProperties: true}
	return withDefault(s, &h.base), nil
}
