package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/hobnob/internal/compiler"
	"github.com/aretw0/hobnob/pkg/collab"
	"github.com/aretw0/hobnob/pkg/domain"
	"github.com/aretw0/hobnob/pkg/router"
	"github.com/aretw0/hobnob/pkg/step"
)

func ref(s string) *string { return &s }

func compile(t *testing.T, def *domain.FlowDefinition, deps step.Deps) *compiler.Graph {
	t.Helper()
	g, err := compiler.Compile(def, step.NewRegistry(), router.NewRegistry(), deps)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return g
}

// loopDef is a single generative step that loops on "not done" and
// terminates on "done".
func loopDef() *domain.FlowDefinition {
	return &domain.FlowDefinition{
		Steps: []domain.StepSpec{
			{Name: "work", Prompt: "continue"},
		},
		Transitions: []domain.TransitionSpec{
			{From: "work", To: nil, Condition: "done"},
			{From: "work", To: ref("work"), Condition: "!done"},
		},
		InitialStep: "work",
	}
}

func TestRunTerminatesWhenDone(t *testing.T) {
	gen := collab.NewMockGenerator(
		`{"done": false}`,
		`{"done": false}`,
		`{"done": false}`,
		`{"done": true}`,
	)
	g := compile(t, loopDef(), step.Deps{Generator: gen})

	res := (&Engine{Graph: g}).Run(context.Background(), domain.State{})

	if res.Outcome != domain.OutcomeCompleted {
		t.Fatalf("expected completion, got %v (%v)", res.Outcome, res.Err)
	}
	if res.Steps != 4 {
		t.Errorf("expected exactly 4 step executions, got %d", res.Steps)
	}
	if gen.Calls() != 4 {
		t.Errorf("expected 4 collaborator calls, got %d", gen.Calls())
	}
	if res.State["done"] != true {
		t.Errorf("final state not merged: %v", res.State)
	}
}

func TestRunStepLimitExceeded(t *testing.T) {
	gen := collab.NewMockGenerator(`{"done": false}`)
	g := compile(t, loopDef(), step.Deps{Generator: gen})

	res := (&Engine{Graph: g, MaxSteps: 2}).Run(context.Background(), domain.State{})

	if res.Outcome != domain.OutcomeFailed {
		t.Fatalf("expected failure, got %v", res.Outcome)
	}
	if !errors.Is(res.Err, domain.ErrStepLimitExceeded) {
		t.Errorf("expected ErrStepLimitExceeded, got %v", res.Err)
	}
	if res.Steps != 2 {
		t.Errorf("expected exactly 2 executions, not %d", res.Steps)
	}
	if gen.Calls() != 2 {
		t.Errorf("the collaborator must not be called a third time, got %d calls", gen.Calls())
	}
}

func TestRunFirstMatchWins(t *testing.T) {
	// Both guards are true on the post-merge state; the first declared
	// destination must be selected.
	def := &domain.FlowDefinition{
		Steps: []domain.StepSpec{
			{Name: "start", Prompt: "go"},
			{Name: "x", Prompt: "x"},
			{Name: "y", Prompt: "y"},
		},
		Transitions: []domain.TransitionSpec{
			{From: "start", To: ref("x"), Condition: "a"},
			{From: "start", To: ref("y"), Condition: "b"},
			{From: "x", To: nil},
			{From: "y", To: nil},
		},
		InitialStep: "start",
	}
	gen := collab.NewMockGenerator(`{"a": true, "b": true}`, `{"visited": "first"}`)
	g := compile(t, def, step.Deps{Generator: gen})

	var visited []string
	eng := &Engine{
		Graph:  g,
		OnStep: func(name string, _ domain.State) { visited = append(visited, name) },
	}
	res := eng.Run(context.Background(), domain.State{})

	if res.Outcome != domain.OutcomeCompleted {
		t.Fatalf("run failed: %v", res.Err)
	}
	if len(visited) != 2 || visited[1] != "x" {
		t.Errorf("expected start -> x (first match), got %v", visited)
	}
}

func TestRunRoutingDeadEnd(t *testing.T) {
	def := &domain.FlowDefinition{
		Steps: []domain.StepSpec{{Name: "work", Prompt: "go"}},
		Transitions: []domain.TransitionSpec{
			{From: "work", To: nil, Condition: "done"},
		},
		InitialStep: "work",
	}
	gen := collab.NewMockGenerator(`{"done": false}`)
	g := compile(t, def, step.Deps{Generator: gen})

	res := (&Engine{Graph: g}).Run(context.Background(), domain.State{})

	if res.Outcome != domain.OutcomeFailed {
		t.Fatalf("expected failure, got %v", res.Outcome)
	}
	if !errors.Is(res.Err, domain.ErrRoutingDeadEnd) {
		t.Errorf("expected ErrRoutingDeadEnd, got %v", res.Err)
	}
}

func TestRunEvaluationErrorFailsRun(t *testing.T) {
	def := loopDef()
	def.Transitions[0].Condition = `exec("boom")`
	gen := collab.NewMockGenerator(`{"done": true}`)
	g := compile(t, def, step.Deps{Generator: gen})

	res := (&Engine{Graph: g}).Run(context.Background(), domain.State{})

	if res.Outcome != domain.OutcomeFailed {
		t.Fatalf("expected failure, got %v", res.Outcome)
	}
	var everr *router.EvalError
	if !errors.As(res.Err, &everr) {
		t.Errorf("expected a router.EvalError in the chain, got %v", res.Err)
	}
}

func TestRunStepErrorFailsRun(t *testing.T) {
	gen := collab.NewMockGenerator("x").FailWith(errors.New("remote exploded"))
	g := compile(t, loopDef(), step.Deps{Generator: gen})

	res := (&Engine{Graph: g}).Run(context.Background(), domain.State{"prior": "kept"})

	if res.Outcome != domain.OutcomeFailed {
		t.Fatalf("expected failure, got %v", res.Outcome)
	}
	var cerr *collab.Error
	if !errors.As(res.Err, &cerr) {
		t.Errorf("expected a collab.Error in the chain, got %v", res.Err)
	}
	if res.State["prior"] != "kept" {
		t.Errorf("state must remain at the last fully-merged value: %v", res.State)
	}
}

func TestRunCancellationKeepsMergedState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	gen := &cancellingGenerator{cancel: cancel}
	g := compile(t, loopDef(), step.Deps{Generator: gen})

	res := (&Engine{Graph: g}).Run(ctx, domain.State{"prior": 1.0})

	if res.Outcome != domain.OutcomeCanceled {
		t.Fatalf("expected cancellation, got %v (%v)", res.Outcome, res.Err)
	}
	if res.State["prior"] != 1.0 {
		t.Errorf("state must be the last fully-merged value: %v", res.State)
	}
	if res.State["done"] != false {
		t.Errorf("the first step's merge must be visible: %v", res.State)
	}
	if res.Steps != 2 {
		t.Errorf("expected 2 executions before cancellation, got %d", res.Steps)
	}
}

// cancellingGenerator succeeds once, then cancels the run's context and
// returns the context error, simulating a timeout mid-call.
type cancellingGenerator struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancellingGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	c.calls++
	if c.calls == 1 {
		return `{"done": false}`, nil
	}
	c.cancel()
	return "", &collab.Error{Collaborator: "test", Err: ctx.Err()}
}

func TestRunObserverCannotMutateState(t *testing.T) {
	gen := collab.NewMockGenerator(`{"done": false}`, `{"done": true}`)
	g := compile(t, loopDef(), step.Deps{Generator: gen})

	eng := &Engine{
		Graph: g,
		OnStep: func(name string, snapshot domain.State) {
			// A hostile observer flips the flag; routing must not notice.
			snapshot["done"] = true
		},
	}
	res := eng.Run(context.Background(), domain.State{})

	if res.Outcome != domain.OutcomeCompleted {
		t.Fatalf("run failed: %v", res.Err)
	}
	if res.Steps != 2 {
		t.Errorf("observer mutation altered routing: %d steps", res.Steps)
	}
}

func TestRunHooksReceiveEvents(t *testing.T) {
	gen := collab.NewMockGenerator(`{"done": true}`)
	g := compile(t, loopDef(), step.Deps{Generator: gen})

	var starts, ends, transitions int
	var endEvent *domain.StepEvent
	eng := &Engine{
		Graph: g,
		Hooks: domain.LifecycleHooks{
			OnStepStart: func(_ context.Context, e *domain.StepEvent) { starts++ },
			OnStepEnd: func(_ context.Context, e *domain.StepEvent) {
				ends++
				endEvent = e
			},
			OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
				transitions++
				if !e.Terminal {
					t.Errorf("expected a terminal transition, got %+v", e)
				}
			},
		},
	}
	res := eng.Run(context.Background(), domain.State{})

	if res.Outcome != domain.OutcomeCompleted {
		t.Fatalf("run failed: %v", res.Err)
	}
	if starts != 1 || ends != 1 || transitions != 1 {
		t.Errorf("hook counts: starts=%d ends=%d transitions=%d", starts, ends, transitions)
	}
	if endEvent == nil || endEvent.Step != "work" || endEvent.State["done"] != true {
		t.Errorf("OnStepEnd must carry the post-merge snapshot: %+v", endEvent)
	}
}

func TestConcurrentIndependentRuns(t *testing.T) {
	done := make(chan domain.Result, 4)
	for i := 0; i < 4; i++ {
		gen := collab.NewMockGenerator(`{"done": false}`, `{"done": true}`)
		g := compile(t, loopDef(), step.Deps{Generator: gen})
		go func() {
			done <- (&Engine{Graph: g}).Run(context.Background(), domain.State{})
		}()
	}

	for i := 0; i < 4; i++ {
		res := <-done
		if res.Outcome != domain.OutcomeCompleted {
			t.Errorf("concurrent run failed: %v", res.Err)
		}
		if res.Steps != 2 {
			t.Errorf("expected 2 steps per run, got %d", res.Steps)
		}
	}
}
