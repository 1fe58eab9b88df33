package dsl

import (
	"context"
	"reflect"

	mutations "github.com/reoring/mutations"
	js "github.com/reoring/mutations/jsonschema"
)

// ArrayFilter declares an array field. Elements are filtered and validated
// with the element filter; their errors are reported at "<field>.<index>".
type ArrayFilter struct {
	base
	elem     Filter
	minLen   int
	maxLen   int
	arrayize bool
}

// Array declares an array field whose elements are declared by elem. Element
// filters are declared with an empty name, e.g. Array("tags", String("")).
// A nil elem accepts elements as they come.
func Array(name string, elem Filter) *ArrayFilter {
	return &ArrayFilter{base: base{name: name}, elem: elem, minLen: -1, maxLen: -1}
}

// MinLength sets the minimum number of elements.
func (f *ArrayFilter) MinLength(n int) *ArrayFilter { f.minLen = n; return f }

// MaxLength sets the maximum number of elements.
func (f *ArrayFilter) MaxLength(n int) *ArrayFilter { f.maxLen = n; return f }

// Arrayize wraps a single non-array value into a one-element array.
func (f *ArrayFilter) Arrayize() *ArrayFilter { f.arrayize = true; return f }

// AllowNil accepts nil values.
func (f *ArrayFilter) AllowNil() *ArrayFilter { f.allowNil = true; return f }

// Default fills an absent optional field.
func (f *ArrayFilter) Default(v []any) *ArrayFilter { f.def, f.hasDefault = v, true; return f }

// Check adds a custom validation callback on the whole array, skipped when an
// element is invalid.
func (f *ArrayFilter) Check(fn CheckFunc) *ArrayFilter { f.checks = append(f.checks, fn); return f }

// Elem returns the element filter.
func (f *ArrayFilter) Elem() Filter { return f.elem }

func (f *ArrayFilter) Type() mutations.Type { return mutations.TypeArray }

func (f *ArrayFilter) coerce(ctx context.Context, raw any) any {
	var items []any
	switch t := raw.(type) {
	case []any:
		items = t
	default:
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			items = make([]any, rv.Len())
			for i := range items {
				items[i] = rv.Index(i).Interface()
			}
		default:
			if !f.arrayize {
				return mismatch{raw}
			}
			items = []any{raw}
		}
	}
	out := make([]any, len(items))
	for i, it := range items {
		if f.elem == nil {
			out[i] = it
			continue
		}
		out[i] = coerceValue(ctx, f.elem, it)
	}
	return out
}

func (f *ArrayFilter) check(ctx context.Context, path string, v any, errs *mutations.ErrorSet) {
	arr := v.([]any)
	if f.minLen >= 0 && len(arr) < f.minLen {
		errs.AddParams(path, mutations.CodeLength, "", map[string]any{"bound": "min", "min": f.minLen})
	}
	if f.maxLen >= 0 && len(arr) > f.maxLen {
		errs.AddParams(path, mutations.CodeLength, "", map[string]any{"bound": "max", "max": f.maxLen})
	}
	if f.elem == nil {
		return
	}
	for i, it := range arr {
		validateValue(ctx, f.elem, mutations.IndexPath(path, i), it, errs)
	}
}

func (f *ArrayFilter) options() map[string]any {
	opts := map[string]any{}
	if f.minLen >= 0 {
		opts["min_length"] = f.minLen
	}
	if f.maxLen >= 0 {
		opts["max_length"] = f.maxLen
	}
	if f.arrayize {
		opts["arrayize"] = true
	}
	return f.commonOptions(opts)
}

func (f *ArrayFilter) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "array"}
	if f.elem != nil {
		es, err := f.elem.JSONSchema()
		if err != nil {
			return nil, err
		}
		s.Items = es
	}
	if f.minLen >= 0 {
		s.MinItems = js.IntPtr(f.minLen)
	}
	if f.maxLen >= 0 {
		s.MaxItems = js.IntPtr(f.maxLen)
	}
	return withDefault(s, &f.base), nil
}
