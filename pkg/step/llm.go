package step

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/hobnob/pkg/domain"
	"github.com/aretw0/hobnob/pkg/extract"
	"github.com/aretw0/hobnob/pkg/render"
)

type llmStep struct {
	spec domain.StepSpec
	deps Deps
}

func newLLMStep(spec domain.StepSpec, deps Deps) (Step, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("step %q: no generative collaborator configured", spec.Name)
	}
	return &llmStep{spec: spec, deps: deps}, nil
}

// Execute renders the prompt against state, submits it, and extracts the
// structured record as the patch. In strict mode an unextractable response
// is the step's error; in forgiving mode the raw text is stored under
// domain.KeyRawResponse instead.
func (s *llmStep) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	prompt, err := render.Prompt(s.spec, s.deps.SystemPrompt, state)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", s.spec.Name, err)
	}

	raw, err := s.deps.Generator.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", s.spec.Name, err)
	}

	record, err := extract.Record(raw)
	if err != nil {
		if !s.deps.Forgiving {
			return nil, fmt.Errorf("step %q: %w", s.spec.Name, err)
		}
		var xerr *extract.Error
		if s.deps.Logger != nil && errors.As(err, &xerr) {
			s.deps.Logger.Warn("extraction failed, storing raw response",
				"step", s.spec.Name,
				"raw_len", len(xerr.Raw))
		}
		return domain.State{domain.KeyRawResponse: raw}, nil
	}
	return domain.State(record), nil
}
