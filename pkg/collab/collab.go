/*
Package collab defines the engine's external collaborators: the generative
model that answers prompts and the interactive source that answers questions.

The engine only ever sees these two narrow interfaces; transport, retries,
and credentials live in the implementations.
*/
package collab

import (
	"context"
	"fmt"
)

// Generator is the generative collaborator: it receives a fully rendered
// prompt and returns the raw text response.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Asker is the interactive collaborator: it presents a question and blocks
// until an answer arrives.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Error wraps a collaborator transport failure so callers can distinguish it
// from engine errors. The engine never retries; retry policy belongs to the
// collaborator or the caller.
type Error struct {
	Collaborator string
	Err          error
}

func (e *Error) Error() string {
	return fmt.Sprintf("collaborator %s: %v", e.Collaborator, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
