// Package checkpoint provides durable, indexed persistence of pipeline
// state. A checkpoint is written after each successful stage and contains
// everything needed to resume the run without recomputation: the stage
// data snapshot, the accumulated stage results, a config snapshot, and
// the list of completed stages.
//
// Layout: one JSON file per checkpoint plus an index.json listing all
// known checkpoints with stage and timestamp, so stage lookups never scan
// every file. Checkpoint files are immutable once written; the retention
// policy deletes all but the N most recent.
package checkpoint
