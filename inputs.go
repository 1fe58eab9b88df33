package mutations

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// Symbol is a symbolic key. Maps keyed by Symbol merge indifferently with
// string-keyed maps: both normalize to the same plain string.
type Symbol string

// Inputs is a key-normalized input map. After filtering it is the
// ValidatedInput of a run: declared fields only, values coerced to their
// declared types.
type Inputs map[string]any

// MergeInputs merges zero or more mappings left to right; later keys win.
// Keys are normalized to plain strings before comparison, so Symbol("a") and
// "a" collide. Any argument that is nil or not a mapping yields an
// *ArgumentError.
func MergeInputs(args ...any) (Inputs, error) {
	out := Inputs{}
	for i, a := range args {
		if a == nil {
			return nil, &ArgumentError{Index: i}
		}
		m, ok := NormalizeMap(a)
		if !ok {
			return nil, &ArgumentError{Index: i, Got: a}
		}
		for k, v := range m {
			out[k] = v
		}
	}
	return out, nil
}

// NormalizeMap views v as a string-keyed map. It accepts Inputs,
// map[string]any, map[Symbol]any, map[any]any (as produced by YAML decoders),
// url.Values (single values unwrapped) and any other map whose keys normalize
// with NormalizeKey. Keys that cannot be normalized are skipped.
func NormalizeMap(v any) (Inputs, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case Inputs:
		return t, true
	case map[string]any:
		return Inputs(t), true
	case map[Symbol]any:
		out := make(Inputs, len(t))
		for k, vv := range t {
			out[string(k)] = vv
		}
		return out, true
	case map[any]any:
		out := make(Inputs, len(t))
		for k, vv := range t {
			if ks, ok := NormalizeKey(k); ok {
				out[ks] = vv
			}
		}
		return out, true
	case url.Values:
		out := make(Inputs, len(t))
		for k, vs := range t {
			switch len(vs) {
			case 0:
			case 1:
				out[k] = vs[0]
			default:
				arr := make([]any, len(vs))
				for i := range vs {
					arr[i] = vs[i]
				}
				out[k] = arr
			}
		}
		return out, true
	case map[string]string:
		out := make(Inputs, len(t))
		for k, vv := range t {
			out[k] = vv
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(Inputs, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		ks, ok := NormalizeKey(iter.Key().Interface())
		if !ok {
			continue
		}
		out[ks] = iter.Value().Interface()
	}
	return out, true
}

// NormalizeKey converts a map key to its canonical string form.
func NormalizeKey(k any) (string, bool) {
	switch t := k.(type) {
	case string:
		return t, true
	case Symbol:
		return string(t), true
	case fmt.Stringer:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	}
	rv := reflect.ValueOf(k)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// Get returns the value stored under name, or nil.
func (in Inputs) Get(name string) any { return in[name] }

// Set stores v under name.
func (in Inputs) Set(name string, v any) { in[name] = v }

// Has reports whether name is present (even with a nil value).
func (in Inputs) Has(name string) bool {
	_, ok := in[name]
	return ok
}

// String returns the string stored under name, or "".
func (in Inputs) String(name string) string {
	s, _ := in[name].(string)
	return s
}

// Int returns the integer stored under name, or 0.
func (in Inputs) Int(name string) int64 {
	n, _ := in[name].(int64)
	return n
}

// Float returns the float stored under name, or 0.
func (in Inputs) Float(name string) float64 {
	f, _ := in[name].(float64)
	return f
}

// Bool returns the boolean stored under name, or false.
func (in Inputs) Bool(name string) bool {
	b, _ := in[name].(bool)
	return b
}

// Time returns the time stored under name, or the zero time.
func (in Inputs) Time(name string) time.Time {
	t, _ := in[name].(time.Time)
	return t
}

// Slice returns the array stored under name, or nil.
func (in Inputs) Slice(name string) []any {
	s, _ := in[name].([]any)
	return s
}

// Hash returns the nested hash stored under name, or nil.
func (in Inputs) Hash(name string) Inputs {
	h, _ := in[name].(Inputs)
	return h
}

// Clone deep-copies nested hashes and arrays.
func (in Inputs) Clone() Inputs {
	if in == nil {
		return nil
	}
	out := make(Inputs, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Inputs:
		return t.Clone()
	case map[string]any:
		return map[string]any(Inputs(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}
