/*
Package step defines the polymorphic units of work a flow executes and the
registry that maps kind tags to step constructors.

Two kinds ship built in: "llm" (render prompt, submit to the generative
collaborator, extract a structured record) and "user_input" (ask the
interactive collaborator a question). Out-of-tree kinds register a Factory
under their own tag; the compiler resolves kinds through the registry and
never needs to change.
*/
package step

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/hobnob/pkg/collab"
	"github.com/aretw0/hobnob/pkg/domain"
)

// Step is one unit of work. Execute reads the current state and returns a
// patch; the runtime owns the merge. Implementations must not retain the
// state reference across calls.
type Step interface {
	Execute(ctx context.Context, state domain.State) (domain.State, error)
}

// Deps carries the collaborators and run-wide settings a factory may need.
type Deps struct {
	Generator collab.Generator
	Asker     collab.Asker

	// SystemPrompt is the flow-level instruction prepended to generative
	// prompts.
	SystemPrompt string

	// Forgiving switches extraction failures from step errors to a patch
	// storing the raw text under domain.KeyRawResponse. Strict is the
	// default and the recommended mode.
	Forgiving bool

	Logger *slog.Logger
}

// Factory builds a Step from its spec. Factories run at compile time, so
// configuration problems surface before any run starts.
type Factory func(spec domain.StepSpec, deps Deps) (Step, error)

// Registry maps step kind tags to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in kinds registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(domain.StepKindLLM, newLLMStep)
	r.Register(domain.StepKindUserInput, newInputStep)
	return r
}

// Register adds a factory for a kind tag, replacing any previous one.
func (r *Registry) Register(kind string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// New builds the step for spec. An unrecognized kind tag is an error, not a
// silent default.
func (r *Registry) New(spec domain.StepSpec, deps Deps) (Step, error) {
	r.mu.RLock()
	f, ok := r.factories[spec.Kind()]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("step %q: unrecognized kind %q", spec.Name, spec.Kind())
	}
	return f(spec, deps)
}

// Kinds reports the registered kind tags.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		out = append(out, kind)
	}
	return out
}
