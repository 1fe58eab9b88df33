package mutations

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Accessor reads and writes named input values. Both Inputs and *Execution
// implement it.
type Accessor interface {
	Get(name string) any
	Set(name string, v any)
}

// Field is a typed handle on one declared field. Declare handles next to the
// schema and use them inside Execute:
//
//	var name = mutations.NewField[string]("name")
//	...
//	n := name.Get(x)
//	name.Set(x, strings.ToUpper(n))
type Field[T any] struct{ name string }

// NewField returns a handle for the field called name.
func NewField[T any](name string) Field[T] { return Field[T]{name: name} }

// Name returns the field name.
func (f Field[T]) Name() string { return f.name }

// Get returns the current value, or the zero T when unset or of another type.
func (f Field[T]) Get(a Accessor) T {
	v, _ := f.Lookup(a)
	return v
}

// Lookup returns the current value and whether it is set with type T.
func (f Field[T]) Lookup(a Accessor) (T, bool) {
	v, ok := a.Get(f.name).(T)
	return v, ok
}

// Set writes v.
func (f Field[T]) Set(a Accessor, v T) { a.Set(f.name, v) }

// Bind decodes validated inputs into a T (usually a struct with json tags).
// Values are already coerced, so decoding is strict: a type clash is an error.
func Bind[T any](in Inputs) (T, error) {
	var out T
	if err := decodeInto(in, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func decodeInto(in Inputs, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		Squash:           true,
		WeaklyTypedInput: false,
		DecodeHook:       inputsToMapHook,
	})
	if err != nil {
		return fmt.Errorf("mutations: bind: %w", err)
	}
	if err := dec.Decode(map[string]any(in)); err != nil {
		return fmt.Errorf("mutations: bind: %w", err)
	}
	return nil
}

// inputsToMapHook unwraps nested Inputs so mapstructure treats them as plain
// maps when decoding into map fields.
func inputsToMapHook(from, to reflect.Type, data any) (any, error) {
	if in, ok := data.(Inputs); ok {
		return map[string]any(in), nil
	}
	return data, nil
}
