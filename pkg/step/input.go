package step

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/hobnob/pkg/domain"
	"github.com/aretw0/hobnob/pkg/render"
)

type inputStep struct {
	spec domain.StepSpec
	key  string
	deps Deps
}

func newInputStep(spec domain.StepSpec, deps Deps) (Step, error) {
	if deps.Asker == nil {
		return nil, fmt.Errorf("step %q: no interactive collaborator configured", spec.Name)
	}
	if spec.Question == "" {
		return nil, fmt.Errorf("step %q: user_input step requires a question", spec.Name)
	}
	key := spec.OutputKey
	if key == "" {
		key = domain.KeyUserInput
	}
	return &inputStep{spec: spec, key: key, deps: deps}, nil
}

// Execute renders the question against state, asks it, and stores the raw
// answer under the step's output key. No structured parsing is applied.
// When the step lists options, it re-asks until the trimmed, lowercased
// answer matches one.
func (s *inputStep) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	question, err := render.Template(s.spec.Question, state)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", s.spec.Name, err)
	}

	for {
		answer, err := s.deps.Asker.Ask(ctx, question)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", s.spec.Name, err)
		}
		answer = strings.TrimSpace(answer)

		if len(s.spec.Options) == 0 {
			return domain.State{s.key: answer}, nil
		}
		for _, opt := range s.spec.Options {
			if strings.EqualFold(answer, opt) {
				return domain.State{s.key: strings.ToLower(opt)}, nil
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("step %q: %w", s.spec.Name, err)
		}
		if s.deps.Logger != nil {
			s.deps.Logger.Debug("answer outside options, asking again",
				"step", s.spec.Name, "answer", answer)
		}
	}
}
