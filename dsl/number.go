package dsl

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	mutations "github.com/reoring/mutations"
	js "github.com/reoring/mutations/jsonschema"
)

var (
	integerText = regexp.MustCompile(`^[+-]?\d+$`)
	floatText   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

// IntegerFilter declares an integer field; values are coerced to int64.
type IntegerFilter struct {
	base
	min, max       int64
	hasMin, hasMax bool
	in             []int64
}

// Integer declares an integer field. It accepts integer kinds, floats and
// json.Number values without a fractional part, and strings made only of
// digits with an optional sign.
func Integer(name string) *IntegerFilter { return &IntegerFilter{base: base{name: name}} }

// Min sets an inclusive lower bound.
func (f *IntegerFilter) Min(n int64) *IntegerFilter { f.min, f.hasMin = n, true; return f }

// Max sets an inclusive upper bound.
func (f *IntegerFilter) Max(n int64) *IntegerFilter { f.max, f.hasMax = n, true; return f }

// In restricts the value to the given options.
func (f *IntegerFilter) In(options ...int64) *IntegerFilter { f.in = options; return f }

// AllowNil accepts nil values.
func (f *IntegerFilter) AllowNil() *IntegerFilter { f.allowNil = true; return f }

// DiscardEmpty treats a blank string of an optional field as absent.
func (f *IntegerFilter) DiscardEmpty() *IntegerFilter { f.discardEmpty = true; return f }

// Default fills an absent optional field.
func (f *IntegerFilter) Default(v int64) *IntegerFilter { f.def, f.hasDefault = v, true; return f }

// Check adds a custom validation callback.
func (f *IntegerFilter) Check(fn CheckFunc) *IntegerFilter { f.checks = append(f.checks, fn); return f }

func (f *IntegerFilter) Type() mutations.Type { return mutations.TypeInteger }

func (f *IntegerFilter) coerce(_ context.Context, raw any) any {
	switch t := raw.(type) {
	case string:
		if n, ok := parseInteger(t); ok {
			return n
		}
		return mismatch{raw}
	case json.Number:
		if n, ok := parseInteger(t.String()); ok {
			return n
		}
		// Decoders keeping numbers as text must agree with float64 decoding.
		if fl, err := strconv.ParseFloat(t.String(), 64); err == nil {
			if n, ok := toInt64(fl); ok {
				return n
			}
		}
		return mismatch{raw}
	}
	if n, ok := toInt64(raw); ok {
		return n
	}
	return mismatch{raw}
}

func parseInteger(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !integerText.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// toInt64 converts integer kinds, and floats holding an integral value.
func toInt64(raw any) (int64, bool) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		fl := rv.Float()
		if fl != math.Trunc(fl) || fl < math.MinInt64 || fl >= math.MaxInt64 {
			return 0, false
		}
		return int64(fl), true
	}
	return 0, false
}

func (f *IntegerFilter) check(_ context.Context, path string, v any, errs *mutations.ErrorSet) {
	n := v.(int64)
	if f.hasMin && n < f.min {
		errs.AddParams(path, mutations.CodeRange, "", map[string]any{"bound": "min", "min": f.min})
	}
	if f.hasMax && n > f.max {
		errs.AddParams(path, mutations.CodeRange, "", map[string]any{"bound": "max", "max": f.max})
	}
	if len(f.in) > 0 && !slices.Contains(f.in, n) {
		errs.Add(path, mutations.CodeInclusion, "")
	}
}

func (f *IntegerFilter) options() map[string]any {
	opts := map[string]any{}
	if f.hasMin {
		opts["min"] = f.min
	}
	if f.hasMax {
		opts["max"] = f.max
	}
	if len(f.in) > 0 {
		opts["in"] = f.in
	}
	return f.commonOptions(opts)
}

func (f *IntegerFilter) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "integer"}
	if f.hasMin {
		s.Minimum = js.FloatPtr(float64(f.min))
	}
	if f.hasMax {
		s.Maximum = js.FloatPtr(float64(f.max))
	}
	for _, o := range f.in {
		s.Enum = append(s.Enum, o)
	}
	return withDefault(s, &f.base), nil
}

// FloatFilter declares a floating point field; values are coerced to float64.
type FloatFilter struct {
	base
	min, max       float64
	hasMin, hasMax bool
}

// Float declares a float field. It accepts numeric kinds and decimal strings
// (or json.Number); NaN and infinities are rejected.
func Float(name string) *FloatFilter { return &FloatFilter{base: base{name: name}} }

// Min sets an inclusive lower bound.
func (f *FloatFilter) Min(n float64) *FloatFilter { f.min, f.hasMin = n, true; return f }

// Max sets an inclusive upper bound.
func (f *FloatFilter) Max(n float64) *FloatFilter { f.max, f.hasMax = n, true; return f }

// AllowNil accepts nil values.
func (f *FloatFilter) AllowNil() *FloatFilter { f.allowNil = true; return f }

// DiscardEmpty treats a blank string of an optional field as absent.
func (f *FloatFilter) DiscardEmpty() *FloatFilter { f.discardEmpty = true; return f }

// Default fills an absent optional field.
func (f *FloatFilter) Default(v float64) *FloatFilter { f.def, f.hasDefault = v, true; return f }

// Check adds a custom validation callback.
func (f *FloatFilter) Check(fn CheckFunc) *FloatFilter { f.checks = append(f.checks, fn); return f }

func (f *FloatFilter) Type() mutations.Type { return mutations.TypeFloat }

func (f *FloatFilter) coerce(_ context.Context, raw any) any {
	var s string
	switch t := raw.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	default:
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			fl := rv.Float()
			if math.IsNaN(fl) || math.IsInf(fl, 0) {
				return mismatch{raw}
			}
			return fl
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(rv.Uint())
		}
		return mismatch{raw}
	}
	if !floatText.MatchString(s) {
		return mismatch{raw}
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(fl, 0) {
		return mismatch{raw}
	}
	return fl
}

func (f *FloatFilter) check(_ context.Context, path string, v any, errs *mutations.ErrorSet) {
	n := v.(float64)
	if f.hasMin && n < f.min {
		errs.AddParams(path, mutations.CodeRange, "", map[string]any{"bound": "min", "min": f.min})
	}
	if f.hasMax && n > f.max {
		errs.AddParams(path, mutations.CodeRange, "", map[string]any{"bound": "max", "max": f.max})
	}
}

func (f *FloatFilter) options() map[string]any {
	opts := map[string]any{}
	if f.hasMin {
		opts["min"] = f.min
	}
	if f.hasMax {
		opts["max"] = f.max
	}
	return f.commonOptions(opts)
}

func (f *FloatFilter) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "number"}
	if f.hasMin {
		s.Minimum = js.FloatPtr(f.min)
	}
	if f.hasMax {
		s.Maximum = js.FloatPtr(f.max)
	}
	return withDefault(s, &f.base), nil
}
