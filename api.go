package mutations

import (
	"context"
	"time"
)

// Schema is the declared input shape of a command. Implementations are built
// once (see package dsl) and shared by every run; they must not keep per-run
// state.
type Schema interface {
	// Fields describes the top-level declarations in declaration order.
	Fields() []FieldSpec
	// FilterInputs drops undeclared keys, coerces declared values, and records
	// every violation into errs. The returned Inputs holds declared fields
	// only; when errs is non-empty it may hold values that failed coercion.
	FilterInputs(ctx context.Context, in Inputs, errs *ErrorSet) Inputs
}

// FieldSpec describes one declared field.
type FieldSpec struct {
	Name       string
	Required   bool
	Type       Type
	Options    map[string]any // type-specific constraints, e.g. {"max_length": 10}
	Default    any
	HasDefault bool
	Fields     []FieldSpec // nested declarations for TypeHash
	Elem       *FieldSpec  // element declaration for TypeArray
}

// Observer receives one report per finished run. Implementations must be safe
// for concurrent use; see package metrics for a Prometheus implementation.
type Observer interface {
	ObserveRun(ctx context.Context, r RunReport)
}

// RunReport summarizes a run that reached a terminal state.
type RunReport struct {
	Command  string
	State    State
	Errors   int
	Duration time.Duration
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, r RunReport)

func (f ObserverFunc) ObserveRun(ctx context.Context, r RunReport) { f(ctx, r) }
