package model

import "time"

// PipelineResult is the single terminal value of a pipeline invocation.
// Exactly one is produced per run, whether the run succeeded or failed.
type PipelineResult struct {
	// RunID uniquely identifies the invocation.
	RunID string `json:"run_id"`

	// Success is true when the generation stage succeeded and an output
	// artifact exists on disk.
	Success bool `json:"success"`

	// OutputPath is the generated artifact location, empty on failure.
	OutputPath string `json:"output_path,omitempty"`

	// ManifestPath is where the provenance manifest was written. The
	// manifest is written for failed runs too.
	ManifestPath string `json:"manifest_path,omitempty"`

	// StagesCompleted is the number of stages that completed successfully.
	StagesCompleted int `json:"stages_completed"`

	// Duration is the total wall-clock duration of the run.
	Duration time.Duration `json:"duration"`

	// Warnings aggregates warning messages from all stages.
	Warnings []string `json:"warnings,omitempty"`

	// Errors aggregates error messages from all stages.
	Errors []string `json:"errors,omitempty"`

	// RecoveredFromErrors counts non-critical stage failures absorbed via
	// fallback substitution.
	RecoveredFromErrors int `json:"recovered_from_errors"`

	// StageResults is the append-only list of per-stage outcomes.
	StageResults []StageResult `json:"stage_results"`

	// Failure diagnostics. Set only when Success is false.

	// LastSuccessfulStage names the last stage that completed before the
	// failure, empty when the first stage failed.
	LastSuccessfulStage string `json:"last_successful_stage,omitempty"`

	// PartialResultsPath is the diagnostic dump directory.
	PartialResultsPath string `json:"partial_results_path,omitempty"`

	// CheckpointPath is the most recent checkpoint usable for resuming.
	CheckpointPath string `json:"checkpoint_path,omitempty"`

	// StructuredErrors holds the classified pipeline errors that caused
	// the failure.
	StructuredErrors []*PipelineError `json:"structured_errors,omitempty"`
}

// HasWarnings reports whether any stage produced warnings.
func (r *PipelineResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}
