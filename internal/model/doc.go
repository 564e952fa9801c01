// Package model defines the core data structures shared across the
// deckforge pipeline: the semantic document structure, the deck schema,
// the evolving stage state, per-stage results, the pipeline error
// taxonomy, and the final pipeline result.
//
// Design decision: All shared data types live in a single model package
// rather than being spread across the packages that produce them. This
// keeps the dependency graph acyclic (pipeline, checkpoint, manifest,
// report, and database all depend on model, never on each other) and
// simplifies JSON serialization for checkpoints and the run-history
// database.
package model
