package dsl

import (
	"context"
	"strings"

	mutations "github.com/reoring/mutations"
	js "github.com/reoring/mutations/jsonschema"
)

// Filter is one field declaration: a coercion policy plus the constraint
// checks run on the coerced value. Filters are built with the constructors of
// this package (String, Integer, Hash, Array, Custom, ...) and are immutable
// once placed in a schema.
type Filter interface {
	// Name returns the declared field name ("" for array elements).
	Name() string
	// Type returns the declared type tag.
	Type() mutations.Type
	// JSONSchema projects the declaration into a JSON Schema representation.
	JSONSchema() (*js.Schema, error)

	settings() *base
	// coerce converts a non-nil raw value to the declared type. It never
	// fails: values it cannot convert come back as a mismatch marker.
	coerce(ctx context.Context, raw any) any
	// check runs type-specific constraints on a coerced, non-nil value.
	check(ctx context.Context, path string, v any, errs *mutations.ErrorSet)
	options() map[string]any
}

// CheckFunc is a custom validation callback. It reports pass/fail and, on
// failure, the symbolic code to record (CodeInvalid when empty).
type CheckFunc func(ctx context.Context, v any) (ok bool, code string)

// base holds the options every filter shares.
type base struct {
	name         string
	allowNil     bool
	discardEmpty bool
	def          any
	hasDefault   bool
	checks       []CheckFunc
}

func (b *base) settings() *base { return b }

// Name returns the declared field name.
func (b *base) Name() string { return b.name }

func (b *base) commonOptions(opts map[string]any) map[string]any {
	if opts == nil {
		opts = map[string]any{}
	}
	if b.allowNil {
		opts["nils"] = true
	}
	if b.discardEmpty {
		opts["discard_empty"] = true
	}
	if len(b.checks) > 0 {
		opts["checks"] = len(b.checks)
	}
	return opts
}

func (b *base) runChecks(ctx context.Context, path string, v any, errs *mutations.ErrorSet) {
	for _, fn := range b.checks {
		if fn == nil {
			continue
		}
		if ok, code := fn(ctx, v); !ok {
			if code == "" {
				code = mutations.CodeInvalid
			}
			errs.Add(path, code, "")
		}
	}
}

// mismatch marks a present value that could not be coerced.
type mismatch struct{ raw any }

func isMismatch(v any) bool {
	_, ok := v.(mismatch)
	return ok
}

func coerceValue(ctx context.Context, f Filter, raw any) any {
	if raw == nil {
		return nil
	}
	return f.coerce(ctx, raw)
}

// validateValue is the per-value validator entry point shared by hashes and
// arrays: type mismatch and nil handling first, then constraint checks.
func validateValue(ctx context.Context, f Filter, path string, v any, errs *mutations.ErrorSet) {
	switch v.(type) {
	case nil:
		if !f.settings().allowNil {
			errs.Add(path, mutations.CodeNils, "")
		}
		return
	case mismatch:
		errs.AddParams(path, mutations.CodeInvalid, "", expectedParams(f.Type()))
		return
	}
	before := errs.Len()
	f.check(ctx, path, v, errs)
	if nestedFailed(path, errs, before) {
		return
	}
	f.settings().runChecks(ctx, path, v, errs)
}

// nestedFailed reports whether an atom below path was recorded since the
// first before atoms. Checks of a hash or array only see valid children.
func nestedFailed(path string, errs *mutations.ErrorSet, before int) bool {
	if errs.Len() == before {
		return false
	}
	prefix := path + "."
	for _, a := range errs.Atoms()[before:] {
		if path == "" || strings.HasPrefix(a.Path, prefix) {
			return true
		}
	}
	return false
}

func expectedParams(t mutations.Type) map[string]any {
	phrase := ""
	switch t {
	case mutations.TypeString:
		phrase = "a string"
	case mutations.TypeInteger:
		phrase = "an integer"
	case mutations.TypeFloat:
		phrase = "a number"
	case mutations.TypeBoolean:
		phrase = "a boolean"
	case mutations.TypeTime:
		phrase = "a valid time"
	case mutations.TypeArray:
		phrase = "an array"
	case mutations.TypeHash:
		phrase = "a hash"
	default:
		return nil
	}
	return map[string]any{"expected": phrase}
}

// isBlank reports whether raw is a string that is empty after trimming.
func isBlank(raw any) bool {
	s, ok := raw.(string)
	return ok && strings.TrimSpace(s) == ""
}

// resolve replaces mismatch markers by the raw values they wrap so failed
// inputs can be reported back to callers. It descends only into the
// containers built by hash and array filters; values passed through as is
// belong to the caller and are left untouched.
func resolve(f Filter, v any) any {
	if m, ok := v.(mismatch); ok {
		return m.raw
	}
	switch t := f.(type) {
	case *HashFilter:
		m, ok := v.(mutations.Inputs)
		if !ok {
			return v
		}
		for _, fd := range t.fields {
			name := fd.filter.Name()
			if val, ok := m[name]; ok {
				m[name] = resolve(fd.filter, val)
			}
		}
	case *ArrayFilter:
		arr, ok := v.([]any)
		if !ok || t.elem == nil {
			return v
		}
		for i := range arr {
			arr[i] = resolve(t.elem, arr[i])
		}
	}
	return v
}

// Block groups declarations sharing the same required flag.
type Block struct {
	required bool
	filters  []Filter
}

// Required declares fields that must be present.
func Required(fs ...Filter) Block { return Block{required: true, filters: fs} }

// Optional declares fields that may be absent.
func Optional(fs ...Filter) Block { return Block{required: false, filters: fs} }

type field struct {
	filter   Filter
	required bool
}

// Spec describes a filter as a mutations.FieldSpec.
func Spec(f Filter, required bool) mutations.FieldSpec {
	b := f.settings()
	fs := mutations.FieldSpec{
		Name:       f.Name(),
		Required:   required,
		Type:       f.Type(),
		Options:    f.options(),
		Default:    b.def,
		HasDefault: b.hasDefault,
	}
	switch t := f.(type) {
	case *HashFilter:
		fs.Fields = t.Fields()
	case *ArrayFilter:
		if t.elem != nil {
			e := Spec(t.elem, false)
			fs.Elem = &e
		}
	}
	return fs
}

func withDefault(s *js.Schema, b *base) *js.Schema {
	if b.hasDefault {
		s.Default = b.def
	}
	if b.allowNil {
		return js.Nullable(s)
	}
	return s
}
