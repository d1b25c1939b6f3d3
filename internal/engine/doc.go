// Package engine implements the temporal log-consolidation pipeline.
//
// # Stage order
//
// The pipeline is a fixed sequence of batch transforms:
//
//	[Sequencer] → [Classifier] → [Role reconstructor] → [Duration] (optional)
//
// Each stage fully consumes its input and returns a new slice before the
// next stage starts. The order is load-bearing twice over:
//
//  1. Classification must run before role reconstruction, because role
//     events are identified by the canonical component value "Role" that
//     classification itself writes. The role stream lives inside the very
//     log being consolidated.
//
//  2. Sequencing must run before everything, because both role replay and
//     duration derivation assume records are in canonical order with dense,
//     monotonic IDs.
//
// # Ordered, override-aware classification
//
// Classification is a data-driven list of (predicate, field, value) rules
// applied top to bottom with last-match-wins semantics. A rule may read a
// field an earlier rule in the same pass already rewrote; several broad
// rules are intentionally narrowed by later ones. Rule tables are data, not
// engine logic, and can be replaced per deployment (see the compiler
// package for the CUE form).
//
// # Determinism
//
// Every stage is a pure function of its input batch plus read-only lookup
// tables. Running the pipeline twice over the same input yields an
// identical dataset.
package engine
