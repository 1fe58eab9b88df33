package mutations

import (
	"errors"
	"fmt"
)

// Symbolic error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeRequired  = "required"
	CodeInvalid   = "invalid" // type mismatch after coercion
	CodeNils      = "nils"    // nil where nil is not allowed
	CodeEmpty     = "empty"
	CodeLength    = "length"
	CodeRange     = "range"
	CodeFormat    = "format"
	CodeInclusion = "in"
)

// ErrInvalidArgument is matched (errors.Is) by every *ArgumentError.
var ErrInvalidArgument = errors.New("mutations: invalid argument")

// ArgumentError reports a Run/RunStrict argument that is not a mapping. It is
// raised before any schema processing and never appears inside an Outcome.
type ArgumentError struct {
	Index int // position in the variadic inputs
	Got   any
}

func (e *ArgumentError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("mutations: argument %d must be a map, got nil", e.Index)
	}
	return fmt.Sprintf("mutations: argument %d must be a map, got %T", e.Index, e.Got)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

// ValidationError is returned by RunStrict when a run ends in the Failed state.
// It carries the same ErrorSet the non-raising Run would have put in its
// Outcome.
type ValidationError struct {
	Command string
	Errors  *ErrorSet
}

func (e *ValidationError) Error() string {
	if e.Command == "" {
		return "mutations: validation failed: " + e.Errors.Error()
	}
	return fmt.Sprintf("mutations: %s: validation failed: %s", e.Command, e.Errors.Error())
}

// Unwrap exposes the ErrorSet so errors.As(err, &set) works on either form.
func (e *ValidationError) Unwrap() error {
	if e == nil || e.Errors == nil {
		return nil
	}
	return e.Errors
}

// AsValidationError extracts a *ValidationError using errors.As internally.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsErrorSet extracts an *ErrorSet from err, looking through a
// *ValidationError when present.
func AsErrorSet(err error) (*ErrorSet, bool) {
	if err == nil {
		return nil, false
	}
	var es *ErrorSet
	if errors.As(err, &es) && es != nil {
		return es, true
	}
	return nil, false
}
