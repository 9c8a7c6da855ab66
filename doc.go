/*
Package hobnob is a declarative workflow executor for LLM-driven flows: it
compiles a JSON or YAML description of named steps, transitions between them,
and conditions guarding those transitions into an executable graph, then
drives a mutable state map through the graph until a terminal step is
reached.

The hard part is not calling a language model, which stays behind a narrow
collaborator interface, but the engine around it: deterministic, cycle-
tolerant graph compilation; polymorphic step units that read and rewrite
shared state; recovery of structured records from unreliable free text; and
injection-safe guard evaluation through a restricted query language.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/hobnob"
		"github.com/aretw0/hobnob/pkg/collab"
		"github.com/aretw0/hobnob/pkg/domain"
	)

	func main() {
		def, err := domain.ParseFlow(flowJSON)
		if err != nil {
			log.Fatal(err)
		}

		gen, err := collab.NewOpenAIFromEnv()
		if err != nil {
			log.Fatal(err)
		}

		eng, err := hobnob.New(def,
			hobnob.WithGenerator(gen),
			hobnob.WithAsker(collab.NewConsole()),
			hobnob.WithMaxSteps(25),
		)
		if err != nil {
			log.Fatal(err)
		}

		res := eng.Run(context.Background(), domain.State{"topic": "go"})
		if res.Outcome != domain.OutcomeCompleted {
			log.Fatalf("run ended %s: %v", res.Outcome, res.Err)
		}
		log.Printf("final state: %v", res.State)
	}

# Guard conditions

Transition conditions default to JMESPath expressions evaluated against the
state map, which cannot reach the process environment or execute code. A Lua
router ships disabled for trusted definitions that need a full expression
language; enable it explicitly via the router registry. Custom routers
register by name and are selected per transition.
*/
package hobnob
