/*
Package domain contains the core value types of the Hobnob engine: the
declarative flow definition, the mutable run state, run outcomes, the error
taxonomy, and the lifecycle events emitted during execution.

It is kept free of I/O and engine mechanics, following Hexagonal Architecture
principles; compilation and execution live in the engine packages.

# Key Entities

  - FlowDefinition: The declarative description of steps, transitions, and the initial step.
  - StepSpec / TransitionSpec: One named unit of work and one guarded edge.
  - State: The mutable key-value record threaded through a run.
  - Result: The final state plus the machine-distinguishable outcome of a run.
*/
package domain
