package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStepLimitExceeded is returned when a run does not converge within the
// configured step ceiling.
var ErrStepLimitExceeded = errors.New("step limit exceeded")

// ErrRoutingDeadEnd is returned when no outgoing guard matched and the step
// is not otherwise terminal.
var ErrRoutingDeadEnd = errors.New("no transition matched")

// ErrRegistryFrozen is returned when a registry is mutated after a run has
// started reading it.
var ErrRegistryFrozen = errors.New("registry is frozen")

// CompileError aggregates every structural violation found in a flow
// definition. Compilation reports all problems at once rather than stopping
// at the first.
type CompileError struct {
	Violations []string
}

func (e *CompileError) Error() string {
	switch len(e.Violations) {
	case 0:
		return "invalid flow definition"
	case 1:
		return "invalid flow definition: " + e.Violations[0]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "invalid flow definition (%d violations):", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n  - ")
		b.WriteString(v)
	}
	return b.String()
}
