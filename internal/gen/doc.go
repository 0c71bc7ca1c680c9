// Package gen holds the per-category generators and the phase runner that
// turn a decoded data model into a program.
//
// All run-scoped registries live on one Context value created per run: the
// name registry, the reaction rule registry consulted by observables, the
// count term cache and the compartment set. Every construct kind has a pure
// routing predicate deciding between the declarative and procedural
// notation; emission is kept separate from the decision so both can be
// tested independently.
package gen
