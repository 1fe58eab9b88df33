package mutations

import (
	"fmt"
	"log/slog"
)

// Execution is the per-run state handed to Validate and Execute hooks. It owns
// the run's ValidatedInput and ErrorSet; nothing in it is shared with other
// runs.
type Execution struct {
	command  string
	declared map[string]struct{}
	inputs   Inputs
	errs     *ErrorSet
	state    State
	logger   *slog.Logger
}

// Command returns the running command's name.
func (x *Execution) Command() string { return x.command }

// State returns the current lifecycle state.
func (x *Execution) State() State { return x.state }

// Inputs returns the live ValidatedInput. Writes through it are observed by
// later reads in the same run.
func (x *Execution) Inputs() Inputs { return x.inputs }

// Get reads a declared field. It panics on an undeclared name.
func (x *Execution) Get(name string) any {
	x.mustDeclare(name)
	return x.inputs[name]
}

// Set writes a declared field. It panics on an undeclared name.
func (x *Execution) Set(name string, v any) {
	x.mustDeclare(name)
	x.inputs[name] = v
}

// Present reports whether a declared field survived filtering (was supplied
// or defaulted).
func (x *Execution) Present(name string) bool {
	x.mustDeclare(name)
	_, ok := x.inputs[name]
	return ok
}

func (x *Execution) mustDeclare(name string) {
	if _, ok := x.declared[name]; !ok {
		panic(fmt.Sprintf("mutations: %s: field %q is not declared", x.command, name))
	}
}

// AddError records an error and keeps going; it is not a control-flow exit.
// Any error recorded turns the run into a failure and discards Execute's
// return value. Side effects performed before or after the call are not
// rolled back; commands should check invariants before mutating anything.
// message is optional; the translated default for code is used without it.
func (x *Execution) AddError(path, code string, message ...string) {
	msg := ""
	if len(message) > 0 {
		msg = message[0]
	}
	x.errs.Add(path, code, msg)
}

// MergeErrors appends every atom of es, e.g. the failure of a nested command.
func (x *Execution) MergeErrors(es *ErrorSet) { x.errs.Merge(es) }

// HasErrors reports whether the run has recorded any error so far.
func (x *Execution) HasErrors() bool { return !x.errs.Empty() }

// Errors returns the live ErrorSet of this run.
func (x *Execution) Errors() *ErrorSet { return x.errs }

// Logger returns the command's logger, annotated with the command name.
func (x *Execution) Logger() *slog.Logger { return x.logger }

// Bind decodes the current inputs into out (a pointer), see Bind.
func (x *Execution) Bind(out any) error { return decodeInto(x.inputs, out) }
