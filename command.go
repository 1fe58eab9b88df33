package mutations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/reoring/mutations/i18n"
)

// ExecuteFunc is a command's business logic. It runs only after validation
// succeeded. Returning an *ErrorSet or *ValidationError merges it into the
// run's errors; a nil or empty *ErrorSet counts as no error. Any other error
// aborts the run and is returned from Run wrapped.
type ExecuteFunc[T any] func(ctx context.Context, x *Execution) (T, error)

// ValidateFunc runs after schema validation succeeded and before Execute.
// Errors it adds via x.AddError stop the run before Execute.
type ValidateFunc func(ctx context.Context, x *Execution)

// Command is one declared operation: a schema plus business logic. A Command
// is immutable after New and safe for concurrent runs.
type Command[T any] struct {
	name    string
	schema  Schema
	execute ExecuteFunc[T]
	cfg     config
}

type config struct {
	validate   ValidateFunc
	logger     *slog.Logger
	observer   Observer
	translator i18n.Translator
}

// Option configures a Command.
type Option func(*config)

// WithValidate installs a hook run between schema validation and Execute.
func WithValidate(fn ValidateFunc) Option {
	return func(c *config) { c.validate = fn }
}

// WithLogger sets the logger used for run diagnostics (debug level).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithObserver reports every finished run to o.
func WithObserver(o Observer) Option {
	return func(c *config) { c.observer = o }
}

// WithTranslator renders default error messages with tr instead of the
// package-level translator.
func WithTranslator(tr i18n.Translator) Option {
	return func(c *config) { c.translator = tr }
}

// New declares a command. schema and execute must not be nil.
func New[T any](name string, schema Schema, execute ExecuteFunc[T], opts ...Option) *Command[T] {
	if schema == nil {
		panic("mutations: New: nil schema for " + name)
	}
	if execute == nil {
		panic("mutations: New: nil execute for " + name)
	}
	cfg := config{}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Command[T]{name: name, schema: schema, execute: execute, cfg: cfg}
}

// Name returns the command name.
func (c *Command[T]) Name() string { return c.name }

// Schema returns the declared schema.
func (c *Command[T]) Schema() Schema { return c.schema }

// Run merges inputs, filters and validates them, and executes the command
// when validation passes. Validation and injected errors come back inside the
// Outcome; the error return is reserved for argument-shape problems
// (*ArgumentError) and non-validation errors returned by Execute.
func (c *Command[T]) Run(ctx context.Context, inputs ...any) (Outcome[T], error) {
	return c.run(ctx, inputs)
}

// RunStrict is the raising form of Run: on success it returns Execute's result
// directly, on failure a *ValidationError carrying the full ErrorSet.
func (c *Command[T]) RunStrict(ctx context.Context, inputs ...any) (T, error) {
	out, err := c.run(ctx, inputs)
	if err != nil {
		var zero T
		return zero, err
	}
	if !out.Success() {
		var zero T
		return zero, out.Err()
	}
	return out.Result(), nil
}

func (c *Command[T]) run(ctx context.Context, args []any) (Outcome[T], error) {
	start := time.Now()
	in, err := MergeInputs(args...)
	if err != nil {
		return Outcome[T]{}, err
	}
	x := c.newExecution()
	x.logger.DebugContext(ctx, "command run", "inputs", len(in))

	x.state = StateValidating
	x.inputs = c.schema.FilterInputs(ctx, in, x.errs)
	if x.inputs == nil {
		x.inputs = Inputs{}
	}
	if x.HasErrors() {
		x.logger.DebugContext(ctx, "validation failed", "errors", x.errs.Len())
		return c.finish(ctx, x, start, failed[T](c.name, x.errs, x.inputs)), nil
	}
	if c.cfg.validate != nil {
		c.cfg.validate(ctx, x)
		if x.HasErrors() {
			x.logger.DebugContext(ctx, "validate hook failed", "errors", x.errs.Len())
			return c.finish(ctx, x, start, failed[T](c.name, x.errs, x.inputs)), nil
		}
	}

	x.state = StateExecuting
	res, err := c.execute(ctx, x)
	var empty *ErrorSet
	if errors.As(err, &empty) && empty.Empty() {
		err = nil
	}
	if err != nil {
		es, ok := AsErrorSet(err)
		if !ok {
			x.state = StateFailed
			x.logger.DebugContext(ctx, "execute aborted", "error", err)
			c.observe(ctx, x, start)
			return Outcome[T]{}, fmt.Errorf("mutations: %s: execute: %w", c.name, err)
		}
		if es != x.errs {
			x.errs.Merge(es)
		}
	}
	if x.HasErrors() {
		return c.finish(ctx, x, start, failed[T](c.name, x.errs, x.inputs)), nil
	}
	return c.finish(ctx, x, start, succeeded(c.name, res, x.inputs)), nil
}

func (c *Command[T]) newExecution() *Execution {
	fields := c.schema.Fields()
	declared := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		declared[f.Name] = struct{}{}
	}
	return &Execution{
		command:  c.name,
		declared: declared,
		errs:     NewErrorSetWithTranslator(c.cfg.translator),
		state:    StatePending,
		logger:   c.cfg.logger.With("command", c.name),
	}
}

func (c *Command[T]) finish(ctx context.Context, x *Execution, start time.Time, out Outcome[T]) Outcome[T] {
	if out.Success() {
		x.state = StateSucceeded
	} else {
		x.state = StateFailed
	}
	x.logger.DebugContext(ctx, "command finished", "state", x.state, "errors", x.errs.Len(), "duration", time.Since(start))
	c.observe(ctx, x, start)
	return out
}

func (c *Command[T]) observe(ctx context.Context, x *Execution, start time.Time) {
	if c.cfg.observer == nil {
		return
	}
	c.cfg.observer.ObserveRun(ctx, RunReport{
		Command:  c.name,
		State:    x.state,
		Errors:   x.errs.Len(),
		Duration: time.Since(start),
	})
}
