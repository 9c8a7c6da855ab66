// Package render produces the exact text sent to the generative collaborator:
// placeholder substitution against run state, and assembly of the delimited
// prompt sections (system prompt, context, examples, instructions, output
// format, task).
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/hobnob/pkg/domain"
)

// Error reports a template placeholder that references a missing state key.
// A missing key is never silently dropped: an incomplete prompt would send
// the collaborator an ambiguous request.
type Error struct {
	Key      string
	Template string
}

func (e *Error) Error() string {
	return fmt.Sprintf("template references missing state key %q", e.Key)
}

// Template substitutes every {key} placeholder in tpl with the textual
// representation of state[key]. Literal braces are written as {{ and }}.
func Template(tpl string, state domain.State) (string, error) {
	var b strings.Builder
	b.Grow(len(tpl))

	for i := 0; i < len(tpl); {
		c := tpl[i]
		switch c {
		case '{':
			if i+1 < len(tpl) && tpl[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(tpl[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("unclosed placeholder at offset %d", i)
			}
			key := tpl[i+1 : i+end]
			val, ok := state[key]
			if !ok {
				return "", &Error{Key: key, Template: tpl}
			}
			fmt.Fprintf(&b, "%v", val)
			i += end + 1
		case '}':
			if i+1 < len(tpl) && tpl[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return "", fmt.Errorf("unmatched '}' at offset %d", i)
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// Prompt assembles the full prompt for a generative step. Sections appear in
// a fixed order, each clearly labeled, empty ones skipped:
// SYSTEM, CONTEXT, EXAMPLES, INSTRUCTIONS, OUTPUT FORMAT, CURRENT TASK.
func Prompt(spec domain.StepSpec, systemPrompt string, state domain.State) (string, error) {
	var parts []string

	if systemPrompt != "" {
		parts = append(parts, "SYSTEM: "+systemPrompt+"\n")
	}
	if spec.Context != "" {
		parts = append(parts, "CONTEXT: "+spec.Context+"\n")
	}
	if len(spec.Examples) > 0 {
		parts = append(parts, "EXAMPLES:")
		for i, ex := range spec.Examples {
			parts = append(parts, fmt.Sprintf("\nExample %d:", i+1))
			parts = append(parts, "\nInput: "+marshalExample(ex.Input))
			parts = append(parts, "\nOutput: "+marshalExample(ex.Output)+"\n")
		}
	}
	if spec.Instructions != "" {
		parts = append(parts, "INSTRUCTIONS: "+spec.Instructions+"\n")
	}
	if spec.OutputFormat != "" {
		parts = append(parts, "OUTPUT FORMAT: "+spec.OutputFormat+"\n")
	}
	if spec.Prompt != "" {
		task, err := Template(spec.Prompt, state)
		if err != nil {
			return "", err
		}
		parts = append(parts, "CURRENT TASK:\n"+task)
	}

	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

func marshalExample(m map[string]any) string {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		// Examples come from a decoded flow definition, which is always
		// marshalable; guard against hand-built specs anyway.
		return fmt.Sprintf("%v", m)
	}
	return string(data)
}
