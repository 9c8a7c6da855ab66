/*
Package router evaluates guard-condition strings against run state.

The default "jmespath" router interprets conditions in a restricted,
side-effect-free query grammar. The "lua" router accepts a general-purpose
expression language and is therefore registered disabled; it must be enabled
explicitly and is only appropriate for trusted flow definitions. Custom
routers plug in through the Registry.
*/
package router

import (
	"context"
	"fmt"

	"github.com/aretw0/hobnob/pkg/domain"
)

// Router is the pluggable evaluator strategy for guard conditions.
type Router interface {
	// Check evaluates condition against a state snapshot. A malformed or
	// disallowed condition is an error, never silently false.
	Check(ctx context.Context, condition string, state domain.State) (bool, error)
}

// EvalError reports a condition that could not be evaluated. It always fails
// the run; guards are never guessed.
type EvalError struct {
	Router    string
	Condition string
	Err       error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("router %s: cannot evaluate %q: %v", e.Router, e.Condition, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}
