package mutations

// Outcome is the value returned by Command.Run: either a success carrying the
// result of Execute, or a failure carrying the ErrorSet. It is read only.
type Outcome[T any] struct {
	command string
	success bool
	result  T
	errors  *ErrorSet
	inputs  Inputs
}

func succeeded[T any](command string, result T, in Inputs) Outcome[T] {
	return Outcome[T]{command: command, success: true, result: result, inputs: in}
}

func failed[T any](command string, errs *ErrorSet, in Inputs) Outcome[T] {
	return Outcome[T]{command: command, errors: errs, inputs: in}
}

// Command returns the name of the command that produced the outcome.
func (o Outcome[T]) Command() string { return o.command }

// Success reports whether the run succeeded (its ErrorSet is empty).
func (o Outcome[T]) Success() bool { return o.success }

// Result returns Execute's return value on success, the zero T otherwise.
func (o Outcome[T]) Result() T { return o.result }

// Errors returns the ErrorSet on failure, nil on success.
func (o Outcome[T]) Errors() *ErrorSet { return o.errors }

// Inputs returns a copy of the filtered inputs the run saw.
func (o Outcome[T]) Inputs() Inputs { return o.inputs.Clone() }

// Err returns the failure as a *ValidationError, or nil on success.
func (o Outcome[T]) Err() error {
	if o.success {
		return nil
	}
	return &ValidationError{Command: o.command, Errors: o.errors}
}
