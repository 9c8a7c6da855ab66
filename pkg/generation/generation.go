// Package generation drafts flow definitions from natural language by asking
// the generative collaborator to emit the JSON shape the compiler accepts.
package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/hobnob/pkg/collab"
	"github.com/aretw0/hobnob/pkg/domain"
	"github.com/aretw0/hobnob/pkg/extract"
)

const systemPrompt = "You convert natural language workflow descriptions into a JSON object " +
	"for the Hobnob engine. The JSON must contain 'system_prompt' (optional), " +
	"'steps' (list of step objects), 'transitions' (list of transitions), and " +
	"'initial_step'. Each step object requires a 'name' and may include 'type', " +
	"'context', 'instructions', 'output_format', 'examples', 'prompt', or 'question'. " +
	"Transitions need 'from' and 'to' (null to end) and optional 'condition'. " +
	"Conditions are JMESPath expressions over the workflow state. " +
	"Return ONLY valid JSON without additional commentary."

// FromPrompt asks gen to draft a flow definition for the described workflow.
// The response goes through the same extraction pipeline as any generative
// step, so prose or code fences around the JSON are tolerated. The result is
// decoded but not compiled; callers still validate it via Compile.
func FromPrompt(ctx context.Context, gen collab.Generator, description string) (*domain.FlowDefinition, error) {
	prompt := "SYSTEM: " + systemPrompt + "\n\nCURRENT TASK:\n" + description

	raw, err := gen.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("flow generation: %w", err)
	}

	record, err := extract.Record(raw)
	if err != nil {
		return nil, fmt.Errorf("flow generation: %w", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return domain.ParseFlow(data)
}
