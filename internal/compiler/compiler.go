// Package compiler turns a flow definition into an executable graph. All
// structural validation happens here, before any run starts: step name
// uniqueness, dangling transition endpoints, unrecognized step kinds, and
// unresolvable routers are compile errors, reported together.
package compiler

import (
	"fmt"

	"github.com/aretw0/hobnob/pkg/domain"
	"github.com/aretw0/hobnob/pkg/router"
	"github.com/aretw0/hobnob/pkg/step"
)

// Graph is the executable form of a flow definition. It is immutable after
// Compile and carries no per-run data, so one graph may back concurrent runs.
type Graph struct {
	Initial string
	Steps   map[string]*CompiledStep
}

// CompiledStep pairs a step unit with its outgoing transitions, in
// declaration order. Declaration order is the routing tie-break: the first
// transition whose guard holds wins.
type CompiledStep struct {
	Name        string
	Kind        string
	Unit        step.Step
	Transitions []Transition
}

// Transition is a compiled edge. Router is resolved (nil for unconditional
// edges); Terminal marks the run-ending sentinel.
type Transition struct {
	Condition string
	Router    router.Router
	To        string
	Terminal  bool
}

// Compile validates def and builds its executable graph. On any violation it
// returns a *domain.CompileError aggregating every problem found and no
// graph: compilation is all-or-nothing, never partial.
//
// Compile is deterministic and performs no I/O; its only external reads are
// the two registries, which freeze on first use.
func Compile(def *domain.FlowDefinition, steps *step.Registry, routers *router.Registry, deps step.Deps) (*Graph, error) {
	var violations []string
	complain := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	if len(def.Steps) == 0 {
		complain("flow has no steps")
	}

	compiled := make(map[string]*CompiledStep, len(def.Steps))
	for _, spec := range def.Steps {
		if spec.Name == "" {
			complain("step with empty name")
			continue
		}
		if _, dup := compiled[spec.Name]; dup {
			complain("duplicate step name %q", spec.Name)
			continue
		}
		unit, err := steps.New(spec, deps)
		if err != nil {
			complain("%v", err)
			compiled[spec.Name] = &CompiledStep{Name: spec.Name, Kind: spec.Kind()}
			continue
		}
		compiled[spec.Name] = &CompiledStep{
			Name: spec.Name,
			Kind: spec.Kind(),
			Unit: unit,
		}
	}

	for i, tr := range def.Transitions {
		src, ok := compiled[tr.From]
		if !ok {
			complain("transition %d: source %q is not a step", i, tr.From)
			continue
		}
		edge := Transition{Condition: tr.Condition, Terminal: tr.Terminal()}
		if !edge.Terminal {
			to := *tr.To
			if _, ok := compiled[to]; !ok {
				complain("transition %d: destination %q is not a step", i, to)
				continue
			}
			edge.To = to
		}
		if tr.Condition != "" {
			rt, err := routers.Get(tr.Router)
			if err != nil {
				complain("transition %d: %v", i, err)
				continue
			}
			edge.Router = rt
		}
		src.Transitions = append(src.Transitions, edge)
	}

	switch {
	case def.InitialStep == "":
		complain("initial_step is empty")
	default:
		if _, ok := compiled[def.InitialStep]; !ok {
			complain("initial_step %q is not a step", def.InitialStep)
		}
	}

	if len(violations) > 0 {
		return nil, &domain.CompileError{Violations: violations}
	}
	return &Graph{Initial: def.InitialStep, Steps: compiled}, nil
}
