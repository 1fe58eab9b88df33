// Package mutations runs commands: named operations that take a loosely typed
// bag of inputs, filter and validate it against a declared schema, and execute
// business logic only when every input is valid.
//
// - Inputs from any number of maps are merged left to right with keys
//   normalized to strings (MergeInputs).
// - A Schema (see package dsl) drops undeclared keys, coerces values and
//   collects every violation into an ErrorSet keyed by dotted path.
// - Command.Run returns an Outcome holding either the result or the ErrorSet;
//   Command.RunStrict returns the result directly or a *ValidationError.
// - Execute may record further errors with Execution.AddError; the run then
//   fails and the returned value is discarded.
//
// Design policy:
// - Schemas are built once and shared; each run owns its Inputs and ErrorSet.
// - Argument-shape errors (*ArgumentError) are Go errors, never part of an Outcome.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	signup := mutations.New("signup", schema,
//	    func(ctx context.Context, x *mutations.Execution) (User, error) {
//	        if taken(x.Inputs().String("email")) {
//	            x.AddError("email", "taken")
//	            return User{}, nil
//	        }
//	        return mutations.Bind[User](x.Inputs())
//	    })
//	out, err := signup.Run(ctx, r.URL.Query(), map[string]any{"source": "web"})
package mutations
