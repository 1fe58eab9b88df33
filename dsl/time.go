package dsl

import (
	"context"
	"strings"
	"time"

	mutations "github.com/reoring/mutations"
	js "github.com/reoring/mutations/jsonschema"
)

var defaultLayouts = []string{time.RFC3339Nano, time.RFC3339, time.DateOnly}

// TimeFilter declares a time field; values are coerced to time.Time.
type TimeFilter struct {
	base
	layouts       []string
	before, after time.Time
}

// Time declares a time field. Strings are parsed with the configured layouts
// (RFC 3339 and YYYY-MM-DD by default).
func Time(name string) *TimeFilter { return &TimeFilter{base: base{name: name}} }

// Layouts replaces the accepted parse layouts.
func (f *TimeFilter) Layouts(layouts ...string) *TimeFilter { f.layouts = layouts; return f }

// Before requires the value to be strictly before t.
func (f *TimeFilter) Before(t time.Time) *TimeFilter { f.before = t; return f }

// After requires the value to be strictly after t.
func (f *TimeFilter) After(t time.Time) *TimeFilter { f.after = t; return f }

// AllowNil accepts nil values.
func (f *TimeFilter) AllowNil() *TimeFilter { f.allowNil = true; return f }

// DiscardEmpty treats a blank string of an optional field as absent.
func (f *TimeFilter) DiscardEmpty() *TimeFilter { f.discardEmpty = true; return f }

// Default fills an absent optional field.
func (f *TimeFilter) Default(v time.Time) *TimeFilter { f.def, f.hasDefault = v, true; return f }

// Check adds a custom validation callback.
func (f *TimeFilter) Check(fn CheckFunc) *TimeFilter { f.checks = append(f.checks, fn); return f }

func (f *TimeFilter) Type() mutations.Type { return mutations.TypeTime }

func (f *TimeFilter) coerce(_ context.Context, raw any) any {
	switch t := raw.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case string:
		layouts := f.layouts
		if len(layouts) == 0 {
			layouts = defaultLayouts
		}
		s := strings.TrimSpace(t)
		for _, l := range layouts {
			if tm, err := time.Parse(l, s); err == nil {
				return tm
			}
		}
	}
	return mismatch{raw}
}

func (f *TimeFilter) check(_ context.Context, path string, v any, errs *mutations.ErrorSet) {
	tm := v.(time.Time)
	if !f.before.IsZero() && !tm.Before(f.before) {
		errs.AddParams(path, mutations.CodeRange, "", map[string]any{"bound": "max", "max": f.before.Format(time.RFC3339)})
	}
	if !f.after.IsZero() && !tm.After(f.after) {
		errs.AddParams(path, mutations.CodeRange, "", map[string]any{"bound": "min", "min": f.after.Format(time.RFC3339)})
	}
}

func (f *TimeFilter) options() map[string]any {
	opts := map[string]any{}
	if len(f.layouts) > 0 {
		opts["layouts"] = f.layouts
	}
	if !f.before.IsZero() {
		opts["before"] = f.before
	}
	if !f.after.IsZero() {
		opts["after"] = f.after
	}
	return f.commonOptions(opts)
}

func (f *TimeFilter) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "string", Format: "date-time"}
	if len(f.layouts) == 1 && f.layouts[0] == time.DateOnly {
		s.Format = "date"
	}
	return withDefault(s, &f.base), nil
}
