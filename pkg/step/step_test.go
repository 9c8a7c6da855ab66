package step

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hobnob/pkg/collab"
	"github.com/aretw0/hobnob/pkg/domain"
	"github.com/aretw0/hobnob/pkg/extract"
	"github.com/aretw0/hobnob/pkg/render"
)

func llmSpec() domain.StepSpec {
	return domain.StepSpec{
		Name:   "summarize",
		Prompt: "Summarize {topic}",
	}
}

func TestLLMStepMergesExtractedRecord(t *testing.T) {
	gen := collab.NewMockGenerator(`Here you go:` + "\n```json\n" + `{"summary": "short", "done": true}` + "\n```")
	reg := NewRegistry()

	unit, err := reg.New(llmSpec(), Deps{Generator: gen})
	require.NoError(t, err)

	patch, err := unit.Execute(context.Background(), domain.State{"topic": "go"})
	require.NoError(t, err)
	assert.Equal(t, domain.State{"summary": "short", "done": true}, patch)

	prompts := gen.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Summarize go")
}

func TestLLMStepStrictExtractionFailure(t *testing.T) {
	gen := collab.NewMockGenerator("no structure here at all")
	unit, err := NewRegistry().New(llmSpec(), Deps{Generator: gen})
	require.NoError(t, err)

	_, err = unit.Execute(context.Background(), domain.State{"topic": "go"})
	require.Error(t, err)

	var xerr *extract.Error
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, "no structure here at all", xerr.Raw)
}

func TestLLMStepForgivingStoresRawResponse(t *testing.T) {
	gen := collab.NewMockGenerator("free text only")
	unit, err := NewRegistry().New(llmSpec(), Deps{Generator: gen, Forgiving: true})
	require.NoError(t, err)

	patch, err := unit.Execute(context.Background(), domain.State{"topic": "go"})
	require.NoError(t, err)
	assert.Equal(t, domain.State{domain.KeyRawResponse: "free text only"}, patch)
}

func TestLLMStepRenderErrorPropagates(t *testing.T) {
	gen := collab.NewMockGenerator(`{"x": 1}`)
	unit, err := NewRegistry().New(llmSpec(), Deps{Generator: gen})
	require.NoError(t, err)

	_, err = unit.Execute(context.Background(), domain.State{})
	var rerr *render.Error
	require.True(t, errors.As(err, &rerr), "missing template key must surface, got %v", err)
	assert.Equal(t, "topic", rerr.Key)
	assert.Zero(t, gen.Calls(), "the collaborator must not be called with a broken prompt")
}

func TestLLMStepRequiresGenerator(t *testing.T) {
	_, err := NewRegistry().New(llmSpec(), Deps{})
	require.Error(t, err)
}

func TestInputStepStoresAnswer(t *testing.T) {
	asker := collab.NewMockAsker("  Sure thing  ")
	spec := domain.StepSpec{
		Name:     "confirm",
		Type:     domain.StepKindUserInput,
		Question: "Continue with {task}? ",
	}

	unit, err := NewRegistry().New(spec, Deps{Asker: asker})
	require.NoError(t, err)

	patch, err := unit.Execute(context.Background(), domain.State{"task": "deploy"})
	require.NoError(t, err)
	assert.Equal(t, domain.State{domain.KeyUserInput: "Sure thing"}, patch)
	assert.Equal(t, []string{"Continue with deploy? "}, asker.Questions())
}

func TestInputStepReasksUntilOptionMatches(t *testing.T) {
	asker := collab.NewMockAsker("maybe", "dunno", "YES")
	spec := domain.StepSpec{
		Name:      "confirm",
		Type:      domain.StepKindUserInput,
		Question:  "Continue? (yes/no): ",
		Options:   []string{"yes", "no"},
		OutputKey: "user_continue",
	}

	unit, err := NewRegistry().New(spec, Deps{Asker: asker})
	require.NoError(t, err)

	patch, err := unit.Execute(context.Background(), domain.State{})
	require.NoError(t, err)
	assert.Equal(t, domain.State{"user_continue": "yes"}, patch)
	assert.Len(t, asker.Questions(), 3)
}

func TestInputStepRequiresQuestion(t *testing.T) {
	_, err := NewRegistry().New(domain.StepSpec{
		Name: "bad",
		Type: domain.StepKindUserInput,
	}, Deps{Asker: collab.NewMockAsker("x")})
	require.Error(t, err)
}

type shoutStep struct{ text string }

func (s shoutStep) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	return domain.State{"shout": strings.ToUpper(s.text)}, nil
}

func TestCustomKindRegistration(t *testing.T) {
	reg := NewRegistry()
	reg.Register("shout", func(spec domain.StepSpec, deps Deps) (Step, error) {
		return shoutStep{text: spec.Prompt}, nil
	})

	unit, err := reg.New(domain.StepSpec{Name: "s", Type: "shout", Prompt: "hey"}, Deps{})
	require.NoError(t, err)

	patch, err := unit.Execute(context.Background(), domain.State{})
	require.NoError(t, err)
	assert.Equal(t, "HEY", patch["shout"])
}

func TestUnrecognizedKindIsError(t *testing.T) {
	_, err := NewRegistry().New(domain.StepSpec{Name: "s", Type: "teleport"}, Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teleport")
}
