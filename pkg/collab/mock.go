package collab

import (
	"context"
	"errors"
	"sync"
)

// MockGenerator is a scripted Generator for tests and examples. Each call
// returns the next configured response; when the script is exhausted the
// last response repeats. An injected error takes precedence.
type MockGenerator struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	prompts   []string
}

// NewMockGenerator creates a generator that replays the given responses.
func NewMockGenerator(responses ...string) *MockGenerator {
	return &MockGenerator{responses: responses}
}

// FailWith makes every subsequent call return err.
func (m *MockGenerator) FailWith(err error) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Complete replays the script.
func (m *MockGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Collaborator: "mock", Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	m.calls++
	if m.err != nil {
		return "", &Error{Collaborator: "mock", Err: m.err}
	}
	if len(m.responses) == 0 {
		return "", &Error{Collaborator: "mock", Err: errors.New("no scripted responses")}
	}
	idx := m.calls - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

// Calls returns how many times Complete was invoked.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns the prompts received so far.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// MockAsker is a scripted Asker for tests and examples.
type MockAsker struct {
	mu        sync.Mutex
	answers   []string
	calls     int
	questions []string
}

// NewMockAsker creates an asker that replays the given answers; the last
// answer repeats once the script is exhausted.
func NewMockAsker(answers ...string) *MockAsker {
	return &MockAsker{answers: answers}
}

// Ask replays the script.
func (m *MockAsker) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Collaborator: "mock", Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.questions = append(m.questions, question)
	m.calls++
	if len(m.answers) == 0 {
		return "", &Error{Collaborator: "mock", Err: errors.New("no scripted answers")}
	}
	idx := m.calls - 1
	if idx >= len(m.answers) {
		idx = len(m.answers) - 1
	}
	return m.answers[idx], nil
}

// Questions returns the questions received so far.
func (m *MockAsker) Questions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.questions))
	copy(out, m.questions)
	return out
}
