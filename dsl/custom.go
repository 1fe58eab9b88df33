package dsl

import (
	"context"
	"fmt"

	mutations "github.com/reoring/mutations"
	js "github.com/reoring/mutations/jsonschema"
)

// CoerceFunc converts a non-nil raw value. Returning false marks the value as
// a type mismatch, reported with code "invalid".
type CoerceFunc func(ctx context.Context, raw any) (any, bool)

// CustomFilter declares a field with caller-supplied coercion.
type CustomFilter struct {
	base
	coerceFn CoerceFunc
	schema   *js.Schema
}

// Custom declares a field coerced by fn. A nil fn passes values through.
func Custom(name string, fn CoerceFunc) *CustomFilter {
	return &CustomFilter{base: base{name: name}, coerceFn: fn}
}

// Model declares a field accepting only values of type T (or *T, which is
// dereferenced).
func Model[T any](name string) *CustomFilter {
	return Custom(name, func(_ context.Context, raw any) (any, bool) {
		switch v := raw.(type) {
		case T:
			return v, true
		case *T:
			if v != nil {
				return *v, true
			}
		}
		return nil, false
	}).describeAs(fmt.Sprintf("%T", *new(T)))
}

func (f *CustomFilter) describeAs(goType string) *CustomFilter {
	f.schema = &js.Schema{Description: goType}
	return f
}

// Describe sets the JSON Schema reported for this field.
func (f *CustomFilter) Describe(s *js.Schema) *CustomFilter { f.schema = s; return f }

// AllowNil accepts nil values.
func (f *CustomFilter) AllowNil() *CustomFilter { f.allowNil = true; return f }

// DiscardEmpty treats a blank string of an optional field as absent.
func (f *CustomFilter) DiscardEmpty() *CustomFilter { f.discardEmpty = true; return f }

// Default fills an absent optional field.
func (f *CustomFilter) Default(v any) *CustomFilter { f.def, f.hasDefault = v, true; return f }

// Check adds a validation callback.
func (f *CustomFilter) Check(fn CheckFunc) *CustomFilter { f.checks = append(f.checks, fn); return f }

func (f *CustomFilter) Type() mutations.Type { return mutations.TypeCustom }

func (f *CustomFilter) coerce(ctx context.Context, raw any) any {
	if f.coerceFn == nil {
		return raw
	}
	v, ok := f.coerceFn(ctx, raw)
	if !ok {
		return mismatch{raw}
	}
	return v
}

func (f *CustomFilter) check(context.Context, string, any, *mutations.ErrorSet) {}

func (f *CustomFilter) options() map[string]any { return f.commonOptions(nil) }

func (f *CustomFilter) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{}
	if f.schema != nil {
		cp := *f.schema
		s = &cp
	}
	return withDefault(s, &f.base), nil
}
