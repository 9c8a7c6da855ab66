package router

import (
	"context"

	"github.com/jmespath/go-jmespath"

	"github.com/aretw0/hobnob/pkg/domain"
)

// JMESPath is the default, injection-safe router. Conditions are JMESPath
// expressions evaluated strictly against the state map; the grammar has no
// function-definition, attribute-invocation, or I/O constructs, so a
// condition can never reach the process environment or execute code.
type JMESPath struct{}

// Check evaluates the condition and applies JMESPath truthiness to the
// result: null, false, empty string, empty array, and empty object are
// false; everything else (numbers included, even zero) is true.
func (JMESPath) Check(ctx context.Context, condition string, state domain.State) (bool, error) {
	result, err := jmespath.Search(condition, map[string]any(state))
	if err != nil {
		return false, &EvalError{Router: NameJMESPath, Condition: condition, Err: err}
	}
	return jmespathTruthy(result), nil
}

func jmespathTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
