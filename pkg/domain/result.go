package domain

// Outcome classifies how a run ended.
type Outcome string

const (
	// OutcomeCompleted means a terminal transition was taken.
	OutcomeCompleted Outcome = "completed"
	// OutcomeFailed means a step, guard, or routing decision failed; the
	// reason chain is preserved in Result.Err.
	OutcomeFailed Outcome = "failed"
	// OutcomeCanceled means the context was canceled or timed out while a
	// step was in flight. State holds the last fully-merged value.
	OutcomeCanceled Outcome = "canceled"
)

// Result is what a run hands back to the caller.
type Result struct {
	// State is the final state: post-merge of the last completed step.
	State State
	// Outcome classifies the termination.
	Outcome Outcome
	// Err is nil iff Outcome is OutcomeCompleted. It supports errors.Is /
	// errors.As against the engine's error taxonomy.
	Err error
	// Steps is the number of step executions performed.
	Steps int
}
