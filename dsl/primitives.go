package dsl

import (
	"context"
	"encoding/json"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	mutations "github.com/reoring/mutations"
	js "github.com/reoring/mutations/jsonschema"
)

// StringFilter declares a string field.
type StringFilter struct {
	base
	strict     bool
	noStrip    bool
	allowEmpty bool
	minLen     int
	maxLen     int
	in         []string
	matches    *regexp.Regexp
}

// String declares a string field. By default surrounding whitespace is
// stripped, empty strings are rejected, and numbers and booleans are accepted
// in their natural string form.
func String(name string) *StringFilter {
	return &StringFilter{base: base{name: name}, minLen: -1, maxLen: -1}
}

// Strict accepts only string values (no number/boolean conversion).
func (f *StringFilter) Strict() *StringFilter { f.strict = true; return f }

// NoStrip keeps surrounding whitespace.
func (f *StringFilter) NoStrip() *StringFilter { f.noStrip = true; return f }

// AllowEmpty accepts "".
func (f *StringFilter) AllowEmpty() *StringFilter { f.allowEmpty = true; return f }

// DiscardEmpty treats a blank value of an optional field as absent.
func (f *StringFilter) DiscardEmpty() *StringFilter { f.discardEmpty = true; return f }

// MinLength sets the minimum length in runes.
func (f *StringFilter) MinLength(n int) *StringFilter { f.minLen = n; return f }

// MaxLength sets the maximum length in runes.
func (f *StringFilter) MaxLength(n int) *StringFilter { f.maxLen = n; return f }

// In restricts the value to the given options.
func (f *StringFilter) In(options ...string) *StringFilter { f.in = options; return f }

// Matches requires the value to match re.
func (f *StringFilter) Matches(re *regexp.Regexp) *StringFilter { f.matches = re; return f }

// AllowNil accepts nil values.
func (f *StringFilter) AllowNil() *StringFilter { f.allowNil = true; return f }

// Default fills an absent optional field.
func (f *StringFilter) Default(v string) *StringFilter { f.def, f.hasDefault = v, true; return f }

// Check adds a custom validation callback.
func (f *StringFilter) Check(fn CheckFunc) *StringFilter { f.checks = append(f.checks, fn); return f }

func (f *StringFilter) Type() mutations.Type { return mutations.TypeString }

func (f *StringFilter) coerce(_ context.Context, raw any) any {
	var s string
	switch t := raw.(type) {
	case string:
		s = t
	case json.Number:
		if f.strict {
			return mismatch{raw}
		}
		s = t.String()
	case bool:
		if f.strict {
			return mismatch{raw}
		}
		s = strconv.FormatBool(t)
	default:
		if f.strict {
			return mismatch{raw}
		}
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.String:
			s = rv.String()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			s = strconv.FormatInt(rv.Int(), 10)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			s = strconv.FormatUint(rv.Uint(), 10)
		case reflect.Float32, reflect.Float64:
			s = strconv.FormatFloat(rv.Float(), 'f', -1, 64)
		default:
			return mismatch{raw}
		}
	}
	if !f.noStrip {
		s = strings.TrimSpace(s)
	}
	return s
}

func (f *StringFilter) check(_ context.Context, path string, v any, errs *mutations.ErrorSet) {
	s := v.(string)
	if s == "" && !f.allowEmpty {
		errs.Add(path, mutations.CodeEmpty, "")
		return
	}
	n := utf8.RuneCountInString(s)
	if f.minLen >= 0 && n < f.minLen {
		errs.AddParams(path, mutations.CodeLength, "", map[string]any{"bound": "min", "min": f.minLen})
	}
	if f.maxLen >= 0 && n > f.maxLen {
		errs.AddParams(path, mutations.CodeLength, "", map[string]any{"bound": "max", "max": f.maxLen})
	}
	if len(f.in) > 0 && !slices.Contains(f.in, s) {
		errs.Add(path, mutations.CodeInclusion, "")
	}
	if f.matches != nil && !f.matches.MatchString(s) {
		errs.Add(path, mutations.CodeFormat, "")
	}
}

func (f *StringFilter) options() map[string]any {
	opts := map[string]any{}
	if f.strict {
		opts["strict"] = true
	}
	if !f.noStrip {
		opts["strip"] = true
	}
	if f.allowEmpty {
		opts["empty"] = true
	}
	if f.minLen >= 0 {
		opts["min_length"] = f.minLen
	}
	if f.maxLen >= 0 {
		opts["max_length"] = f.maxLen
	}
	if len(f.in) > 0 {
		opts["in"] = f.in
	}
	if f.matches != nil {
		opts["matches"] = f.matches.String()
	}
	return f.commonOptions(opts)
}

func (f *StringFilter) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "string"}
	switch {
	case f.minLen >= 0:
		s.MinLength = js.IntPtr(f.minLen)
	case !f.allowEmpty:
		s.MinLength = js.IntPtr(1)
	}
	if f.maxLen >= 0 {
		s.MaxLength = js.IntPtr(f.maxLen)
	}
	if f.matches != nil {
		s.Pattern = f.matches.String()
	}
	for _, o := range f.in {
		s.Enum = append(s.Enum, o)
	}
	return withDefault(s, &f.base), nil
}

// BooleanFilter declares a boolean field.
type BooleanFilter struct{ base }

// Boolean declares a boolean field. Besides true/false it accepts the strings
// "true"/"false", "1"/"0", "yes"/"no", "on"/"off" (any case) and the integers
// 1 and 0.
func Boolean(name string) *BooleanFilter { return &BooleanFilter{base: base{name: name}} }

// AllowNil accepts nil values.
func (f *BooleanFilter) AllowNil() *BooleanFilter { f.allowNil = true; return f }

// Default fills an absent optional field.
func (f *BooleanFilter) Default(v bool) *BooleanFilter { f.def, f.hasDefault = v, true; return f }

// Check adds a custom validation callback.
func (f *BooleanFilter) Check(fn CheckFunc) *BooleanFilter { f.checks = append(f.checks, fn); return f }

func (f *BooleanFilter) Type() mutations.Type { return mutations.TypeBoolean }

func (f *BooleanFilter) coerce(_ context.Context, raw any) any {
	switch t := raw.(type) {
	case bool:
		return t
	case string:
		if b, ok := parseBool(t); ok {
			return b
		}
	case json.Number:
		if b, ok := parseBool(t.String()); ok {
			return b
		}
	default:
		if n, ok := toInt64(raw); ok && (n == 0 || n == 1) {
			return n == 1
		}
	}
	return mismatch{raw}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	return false, false
}

func (f *BooleanFilter) check(context.Context, string, any, *mutations.ErrorSet) {}

func (f *BooleanFilter) options() map[string]any { return f.commonOptions(nil) }

func (f *BooleanFilter) JSONSchema() (*js.Schema, error) {
	return withDefault(&js.Schema{Type: "boolean"}, &f.base), nil
}

// AnyFilter declares a field accepting any non-nil value as is.
type AnyFilter struct{ base }

// Any declares a pass-through field.
func Any(name string) *AnyFilter { return &AnyFilter{base: base{name: name}} }

// AllowNil accepts nil values.
func (f *AnyFilter) AllowNil() *AnyFilter { f.allowNil = true; return f }

// Default fills an absent optional field.
func (f *AnyFilter) Default(v any) *AnyFilter { f.def, f.hasDefault = v, true; return f }

// Check adds a custom validation callback.
func (f *AnyFilter) Check(fn CheckFunc) *AnyFilter { f.checks = append(f.checks, fn); return f }

func (f *AnyFilter) Type() mutations.Type { return mutations.TypeAny }

func (f *AnyFilter) coerce(_ context.Context, raw any) any { return raw }

func (f *AnyFilter) check(context.Context, string, any, *mutations.ErrorSet) {}

func (f *AnyFilter) options() map[string]any { return f.commonOptions(nil) }

func (f *AnyFilter) JSONSchema() (*js.Schema, error) {
	return withDefault(&js.Schema{}, &f.base), nil
}
