package hobnob

import (
	"context"
	"log/slog"

	"github.com/aretw0/hobnob/internal/compiler"
	"github.com/aretw0/hobnob/internal/logging"
	"github.com/aretw0/hobnob/internal/runtime"
	"github.com/aretw0/hobnob/pkg/collab"
	"github.com/aretw0/hobnob/pkg/domain"
	"github.com/aretw0/hobnob/pkg/generation"
	"github.com/aretw0/hobnob/pkg/router"
	"github.com/aretw0/hobnob/pkg/step"
)

// DefaultMaxSteps is the run ceiling applied when no explicit limit is set.
const DefaultMaxSteps = runtime.DefaultMaxSteps

// Engine is the high-level entry point. It compiles a flow definition
// eagerly, so every structural problem surfaces from New, before any run
// starts. An Engine carries no per-run data: independent runs may share it
// concurrently.
type Engine struct {
	graph     *compiler.Graph
	routers   *router.Registry
	steps     *step.Registry
	generator collab.Generator
	asker     collab.Asker
	maxSteps  int
	forgiving bool
	hooks     domain.LifecycleHooks
	onStep    func(name string, snapshot domain.State)
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithGenerator sets the generative collaborator used by llm steps.
func WithGenerator(g collab.Generator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithAsker sets the interactive collaborator used by user_input steps.
func WithAsker(a collab.Asker) Option {
	return func(e *Engine) {
		e.asker = a
	}
}

// WithRouters injects a configured router registry. Configure it (register,
// enable, set default) before handing it over; it freezes on first use.
func WithRouters(r *router.Registry) Option {
	return func(e *Engine) {
		e.routers = r
	}
}

// WithSteps injects a step registry carrying custom step kinds.
func WithSteps(r *step.Registry) Option {
	return func(e *Engine) {
		e.steps = r
	}
}

// WithMaxSteps bounds the number of step executions per run, guaranteeing
// termination even when a routing cycle never closes.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithForgivingExtraction stores a collaborator response that yields no
// structured record under domain.KeyRawResponse instead of failing the
// step. Strict extraction is the default and the recommended mode.
func WithForgivingExtraction() Option {
	return func(e *Engine) {
		e.forgiving = true
	}
}

// WithHooks registers observability hooks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = h
	}
}

// WithOnStep registers a per-step observation callback invoked with the
// step name and a post-merge snapshot. The snapshot is a clone; the
// callback cannot mutate run state or alter routing.
func WithOnStep(fn func(name string, snapshot domain.State)) Option {
	return func(e *Engine) {
		e.onStep = fn
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New compiles def into a ready Engine. A *domain.CompileError lists every
// structural violation found.
func New(def *domain.FlowDefinition, opts ...Option) (*Engine, error) {
	e := &Engine{
		maxSteps: DefaultMaxSteps,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.routers == nil {
		e.routers = router.NewRegistry()
	}
	if e.steps == nil {
		e.steps = step.NewRegistry()
	}

	deps := step.Deps{
		Generator:    e.generator,
		Asker:        e.asker,
		SystemPrompt: def.SystemPrompt,
		Forgiving:    e.forgiving,
		Logger:       e.logger,
	}
	graph, err := compiler.Compile(def, e.steps, e.routers, deps)
	if err != nil {
		return nil, err
	}
	e.graph = graph
	return e, nil
}

// Run drives initial state through the flow and returns the final state
// plus the outcome. The engine never persists state; the caller owns the
// result.
func (e *Engine) Run(ctx context.Context, initial domain.State) domain.Result {
	eng := &runtime.Engine{
		Graph:    e.graph,
		MaxSteps: e.maxSteps,
		Hooks:    e.hooks,
		OnStep:   e.onStep,
		Logger:   e.logger,
	}
	return eng.Run(ctx, initial)
}

// FromPrompt drafts a flow definition from a natural-language description
// using the generative collaborator. Validate the draft by compiling it.
func FromPrompt(ctx context.Context, gen collab.Generator, description string) (*domain.FlowDefinition, error) {
	return generation.FromPrompt(ctx, gen, description)
}
