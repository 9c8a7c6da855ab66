// Package runtime drives a compiled graph: it executes the current step,
// merges the returned patch into state, and routes to the next step by
// evaluating guards in declaration order.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/hobnob/internal/compiler"
	"github.com/aretw0/hobnob/internal/logging"
	"github.com/aretw0/hobnob/pkg/domain"
)

// DefaultMaxSteps bounds a run when the caller does not set a ceiling.
const DefaultMaxSteps = 50

// Engine executes one compiled graph. It is stateless between runs: each Run
// owns its state exclusively, so independent runs may proceed concurrently
// on the same Engine.
type Engine struct {
	Graph    *compiler.Graph
	MaxSteps int
	Hooks    domain.LifecycleHooks
	// OnStep is the per-step observation callback: (step name, post-merge
	// snapshot). The snapshot is a deep clone; mutating it cannot alter
	// routing.
	OnStep func(name string, snapshot domain.State)
	Logger *slog.Logger
}

// Run drives state through the graph until a terminal transition, a failure,
// or the step ceiling. The returned Result always carries the last
// fully-merged state: a canceled or failed step never leaves a partial patch
// behind.
func (e *Engine) Run(ctx context.Context, initial domain.State) domain.Result {
	maxSteps := e.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	log := e.Logger
	if log == nil {
		log = logging.NewNop()
	}

	runID := uuid.NewString()
	log = log.With("run_id", runID)

	state := initial.Clone()
	current := e.Graph.Initial
	executed := 0

	log.Info("run starting", "initial_step", current, "max_steps", maxSteps)

	for {
		if err := ctx.Err(); err != nil {
			return e.finish(log, state, domain.OutcomeCanceled, err, executed)
		}

		cs, ok := e.Graph.Steps[current]
		if !ok {
			// Compile guarantees destinations exist; a miss here is a bug.
			err := fmt.Errorf("routing reached unknown step %q", current)
			return e.finish(log, state, domain.OutcomeFailed, err, executed)
		}

		if executed >= maxSteps {
			err := fmt.Errorf("%w after %d steps at %q", domain.ErrStepLimitExceeded, executed, current)
			return e.finish(log, state, domain.OutcomeFailed, err, executed)
		}

		e.emitStepStart(ctx, runID, cs, state)

		started := time.Now()
		patch, err := cs.Unit.Execute(ctx, state)
		executed++
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return e.finish(log, state, domain.OutcomeCanceled, err, executed)
			}
			return e.finish(log, state, domain.OutcomeFailed, err, executed)
		}

		state = state.Merge(patch)
		snapshot := state.Clone()

		log.Debug("step executed",
			"step", cs.Name,
			"kind", cs.Kind,
			"took", time.Since(started),
			"patch_keys", len(patch))

		if e.OnStep != nil {
			e.OnStep(cs.Name, snapshot)
		}
		e.emitStepEnd(ctx, runID, cs, snapshot, time.Since(started))

		next, terminal, err := e.route(ctx, runID, cs, state)
		if err != nil {
			return e.finish(log, state, domain.OutcomeFailed, err, executed)
		}
		if terminal {
			return e.finish(log, state, domain.OutcomeCompleted, nil, executed)
		}
		current = next
	}
}

// route scans the step's transitions in declaration order and takes the
// first whose guard holds. An empty condition is always true. A guard that
// cannot be evaluated fails the run; a scan with no match is a routing dead
// end, also fatal.
func (e *Engine) route(ctx context.Context, runID string, cs *compiler.CompiledStep, state domain.State) (string, bool, error) {
	for _, tr := range cs.Transitions {
		if tr.Condition != "" {
			ok, err := tr.Router.Check(ctx, tr.Condition, state)
			if err != nil {
				return "", false, fmt.Errorf("step %q: %w", cs.Name, err)
			}
			if !ok {
				continue
			}
		}
		e.emitTransition(ctx, runID, cs.Name, tr)
		return tr.To, tr.Terminal, nil
	}
	return "", false, fmt.Errorf("step %q: %w", cs.Name, domain.ErrRoutingDeadEnd)
}

func (e *Engine) finish(log *slog.Logger, state domain.State, outcome domain.Outcome, err error, executed int) domain.Result {
	switch outcome {
	case domain.OutcomeCompleted:
		log.Info("run completed", "steps", executed)
	case domain.OutcomeCanceled:
		log.Info("run canceled", "steps", executed, "err", err)
	default:
		log.Error("run failed", "steps", executed, "err", err)
	}
	return domain.Result{State: state, Outcome: outcome, Err: err, Steps: executed}
}

func (e *Engine) emitStepStart(ctx context.Context, runID string, cs *compiler.CompiledStep, state domain.State) {
	if e.Hooks.OnStepStart == nil {
		return
	}
	e.Hooks.OnStepStart(ctx, &domain.StepEvent{
		RunID: runID,
		Step:  cs.Name,
		Kind:  cs.Kind,
		State: state.Clone(),
	})
}

func (e *Engine) emitStepEnd(ctx context.Context, runID string, cs *compiler.CompiledStep, snapshot domain.State, took time.Duration) {
	if e.Hooks.OnStepEnd == nil {
		return
	}
	e.Hooks.OnStepEnd(ctx, &domain.StepEvent{
		RunID: runID,
		Step:  cs.Name,
		Kind:  cs.Kind,
		State: snapshot,
		Took:  took,
	})
}

func (e *Engine) emitTransition(ctx context.Context, runID, from string, tr compiler.Transition) {
	if e.Hooks.OnTransition == nil {
		return
	}
	e.Hooks.OnTransition(ctx, &domain.TransitionEvent{
		RunID:     runID,
		From:      from,
		To:        tr.To,
		Condition: tr.Condition,
		Terminal:  tr.Terminal,
	})
}
