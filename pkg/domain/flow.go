package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Step kind tags understood by the built-in step registry.
const (
	// StepKindLLM renders a prompt, submits it to the generative
	// collaborator, and merges the extracted record into state.
	StepKindLLM = "llm"
	// StepKindUserInput asks the interactive collaborator a question and
	// stores the raw answer in state.
	StepKindUserInput = "user_input"
)

// Reserved state keys written by the built-in steps.
const (
	// KeyRawResponse holds the collaborator's raw text when forgiving
	// extraction could not recover a structured record.
	KeyRawResponse = "raw_response"
	// KeyUserInput is the default key for answers captured by input steps.
	KeyUserInput = "user_input"
)

// FlowDefinition is the declarative description of a workflow. It is read
// once at compile time and carries no per-run data, so a single definition
// may back any number of concurrent runs.
type FlowDefinition struct {
	// SystemPrompt is prepended to every generative step's prompt.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty" mapstructure:"system_prompt"`

	Steps       []StepSpec       `json:"steps" yaml:"steps" mapstructure:"steps"`
	Transitions []TransitionSpec `json:"transitions" yaml:"transitions" mapstructure:"transitions"`

	// InitialStep names the step where execution begins. It must appear
	// among Steps.
	InitialStep string `json:"initial_step" yaml:"initial_step" mapstructure:"initial_step"`
}

// StepSpec configures one named unit of work. Name is the unique key within
// a definition; Type selects the step kind ("llm" when empty). The remaining
// fields are kind-specific and ignored by kinds that do not use them.
type StepSpec struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`

	// Generative step configuration.
	Context      string    `json:"context,omitempty" yaml:"context,omitempty" mapstructure:"context"`
	Instructions string    `json:"instructions,omitempty" yaml:"instructions,omitempty" mapstructure:"instructions"`
	OutputFormat string    `json:"output_format,omitempty" yaml:"output_format,omitempty" mapstructure:"output_format"`
	Examples     []Example `json:"examples,omitempty" yaml:"examples,omitempty" mapstructure:"examples"`
	Prompt       string    `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`

	// Interactive step configuration.
	Question string `json:"question,omitempty" yaml:"question,omitempty" mapstructure:"question"`
	// Options, when set, restricts accepted answers; the step re-asks until
	// the answer matches one (case-insensitive).
	Options []string `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
	// OutputKey overrides the state key the answer is stored under
	// (default: KeyUserInput).
	OutputKey string `json:"output_key,omitempty" yaml:"output_key,omitempty" mapstructure:"output_key"`
}

// Kind returns the effective step kind tag.
func (s StepSpec) Kind() string {
	if s.Type == "" {
		return StepKindLLM
	}
	return s.Type
}

// Example is one few-shot input/output pair shown to the generative
// collaborator.
type Example struct {
	Input  map[string]any `json:"input" yaml:"input" mapstructure:"input"`
	Output map[string]any `json:"output" yaml:"output" mapstructure:"output"`
}

// TransitionSpec is a directed, optionally guarded edge. A nil To is the
// terminal sentinel ("to": null ends the run). An empty Condition is always
// true and never invokes a router. Router selects a named router from the
// registry; when empty the registry default applies.
type TransitionSpec struct {
	From      string  `json:"from" yaml:"from" mapstructure:"from"`
	To        *string `json:"to" yaml:"to" mapstructure:"to"`
	Condition string  `json:"condition,omitempty" yaml:"condition,omitempty" mapstructure:"condition"`
	Router    string  `json:"router,omitempty" yaml:"router,omitempty" mapstructure:"router"`
}

// Terminal reports whether this transition ends the run.
func (t TransitionSpec) Terminal() bool {
	return t.To == nil
}

// ParseFlow decodes a flow definition from JSON or YAML. Both formats share
// one decode path: the document is unmarshaled into a generic map (YAML is a
// superset of JSON) and mapped onto the struct via mapstructure tags.
func ParseFlow(data []byte) (*FlowDefinition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("flow definition is not valid JSON or YAML: %w", err)
	}

	var def FlowDefinition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  &def,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("flow definition has an unexpected shape: %w", err)
	}
	return &def, nil
}
