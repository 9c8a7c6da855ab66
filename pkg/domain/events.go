package domain

import (
	"context"
	"time"
)

// StepEvent describes one step execution for observers.
type StepEvent struct {
	RunID string
	Step  string
	Kind  string
	// State is a deep-cloned snapshot: post-merge on OnStepEnd, pre-execution
	// on OnStepStart. Mutating it has no effect on the run.
	State State
	// Took is the execution duration, set on OnStepEnd only.
	Took time.Duration
}

// TransitionEvent describes a routing decision.
type TransitionEvent struct {
	RunID     string
	From      string
	To        string
	Condition string
	Terminal  bool
}

// LifecycleHooks defines optional callbacks for engine observability.
// Hooks are purely observational: they receive snapshots and cannot alter
// state or routing. A nil hook is skipped.
type LifecycleHooks struct {
	OnStepStart  func(context.Context, *StepEvent)
	OnStepEnd    func(context.Context, *StepEvent)
	OnTransition func(context.Context, *TransitionEvent)
}
