// Package rules builds cross-field checks for the Validate hook of a command.
//
// Schema filters see one value at a time; rules see the whole ValidatedInput
// after it passed the schema and record errors at dotted paths:
//
//	cmd := mutations.New("order", schema, execute,
//	    mutations.WithValidate(rules.All(
//	        rules.If("status", rules.Eq, "confirmed").Then(rules.AtLeastOne("items")),
//	        rules.UniqueBy("items", "sku"),
//	    )))
package rules

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	mutations "github.com/reoring/mutations"
)

// CodeUnique is recorded by UniqueBy.
const CodeUnique = "unique"

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Rule is a cross-field check. It is a mutations.ValidateFunc.
type Rule = mutations.ValidateFunc

// Conditional composes conditional execution of rules.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional comparing the value at a dotted path with want. A
// missing path never satisfies the condition.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: path, op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the condition against in.
func (c Conditional) Holds(in mutations.Inputs) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(in) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(in) {
				return true
			}
		}
		return false
	}
	cur, ok := ValueAt(in, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Then attaches rules to run when the condition holds.
func (c Conditional) Then(rules ...Rule) Rule {
	return func(ctx context.Context, x *mutations.Execution) {
		if !c.Holds(x.Inputs()) {
			return
		}
		All(rules...)(ctx, x)
	}
}

// All runs every rule; errors accumulate.
func All(rules ...Rule) Rule {
	return func(ctx context.Context, x *mutations.Execution) {
		for _, r := range rules {
			if r != nil {
				r(ctx, x)
			}
		}
	}
}

// Present records "required" at path when it holds no value.
func Present(path string) Rule {
	return func(_ context.Context, x *mutations.Execution) {
		if v, ok := ValueAt(x.Inputs(), path); !ok || v == nil {
			x.AddError(path, mutations.CodeRequired)
		}
	}
}

// Absent records "invalid" at path when it holds a value.
func Absent(path string) Rule {
	return func(_ context.Context, x *mutations.Execution) {
		if v, ok := ValueAt(x.Inputs(), path); ok && v != nil {
			x.AddError(path, mutations.CodeInvalid)
		}
	}
}

// AtLeastOne ensures the array at path has at least one element. A missing
// path is left to Present.
func AtLeastOne(path string) Rule {
	return func(_ context.Context, x *mutations.Execution) {
		val, ok := ValueAt(x.Inputs(), path)
		if !ok {
			return
		}
		rv := reflect.ValueOf(val)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if rv.Len() == 0 {
				x.Errors().AddParams(path, mutations.CodeLength, "", map[string]any{"bound": "min", "min": 1})
			}
		default:
			// Not a collection; do not issue error here to avoid noise
		}
	}
}

// UniqueBy ensures the elements of the array at path have distinct values at
// key (a dotted path inside each element). Each duplicate is reported at
// "<path>.<index>.<key>".
// Note: keys are compared by their fmt.Sprint form; keep key types uniform.
func UniqueBy(path, key string) Rule {
	return func(_ context.Context, x *mutations.Execution) {
		val, ok := ValueAt(x.Inputs(), path)
		if !ok {
			return
		}
		rv := reflect.ValueOf(val)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return
		}
		seen := map[string]int{}
		for i := 0; i < rv.Len(); i++ {
			kv, ok := valueWithin(rv.Index(i).Interface(), key)
			if !ok {
				continue
			}
			k := fmt.Sprint(kv)
			if first, dup := seen[k]; dup {
				p := mutations.JoinPath(mutations.IndexPath(path, i), key)
				x.Errors().AddParams(p, CodeUnique, "", map[string]any{"first": first, "key": k})
				continue
			}
			seen[k] = i
		}
	}
}

// Compare records code at left unless the values at left and right satisfy
// op, e.g. Compare("starts_at", rules.Lt, "ends_at", "range"). Missing
// values are skipped.
func Compare(left string, op Op, right, code string) Rule {
	return func(_ context.Context, x *mutations.Execution) {
		l, ok := ValueAt(x.Inputs(), left)
		if !ok {
			return
		}
		r, ok := ValueAt(x.Inputs(), right)
		if !ok {
			return
		}
		if !compare(l, op, r) {
			x.AddError(left, code)
		}
	}
}

// ValueAt navigates in by a dotted path ("address.city", "items.0.sku").
func ValueAt(in mutations.Inputs, path string) (any, bool) {
	return valueWithin(in, path)
}

func valueWithin(v any, rel string) (any, bool) {
	if rel == "" {
		return v, true
	}
	cur := v
	for _, seg := range strings.Split(rel, ".") {
		if m, ok := mutations.NormalizeMap(cur); ok {
			next, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = next
			continue
		}
		rv := reflect.ValueOf(cur)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= rv.Len() {
				return nil, false
			}
			cur = rv.Index(idx).Interface()
		default:
			return nil, false
		}
	}
	return cur, true
}

func compare(cur any, op Op, want any) bool {
	if a, b, ok := asTimes(cur, want); ok {
		return ordered(a.Compare(b), op)
	}
	if a, b, ok := asInts(cur, want); ok {
		return ordered(cmpInt(a, b), op)
	}
	if a, b, ok := asFloats(cur, want); ok {
		return ordered(cmpFloat(a, b), op)
	}
	if a, ok := cur.(string); ok {
		if b, ok := want.(string); ok {
			return ordered(strings.Compare(a, b), op)
		}
	}
	switch op {
	case Eq:
		return reflect.DeepEqual(cur, want)
	case Ne:
		return !reflect.DeepEqual(cur, want)
	default:
		return false
	}
}

func ordered(c int, op Op) bool {
	switch op {
	case Eq:
		return c == 0
	case Ne:
		return c != 0
	case Lt:
		return c < 0
	case Le:
		return c <= 0
	case Gt:
		return c > 0
	case Ge:
		return c >= 0
	}
	return false
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func asTimes(a, b any) (time.Time, time.Time, bool) {
	ta, ok := a.(time.Time)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	tb, ok := b.(time.Time)
	return ta, tb, ok
}

func isIntLike(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func isFloatLike(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func toInt64(v reflect.Value) int64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	default:
		return 0
	}
}

func toFloat64(v reflect.Value) float64 {
	switch {
	case isFloatLike(v.Kind()):
		return v.Float()
	case isIntLike(v.Kind()):
		return float64(toInt64(v))
	default:
		return 0
	}
}

func asInts(a, b any) (int64, int64, bool) {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !isIntLike(ra.Kind()) || !isIntLike(rb.Kind()) {
		return 0, 0, false
	}
	return toInt64(ra), toInt64(rb), true
}

// asFloats accepts any mix of integer and float kinds.
func asFloats(a, b any) (float64, float64, bool) {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	num := func(k reflect.Kind) bool { return isIntLike(k) || isFloatLike(k) }
	if !num(ra.Kind()) || !num(rb.Kind()) {
		return 0, 0, false
	}
	return toFloat64(ra), toFloat64(rb), true
}
