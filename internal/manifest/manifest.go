package manifest

import (
	"time"

	"github.com/deckforge/deckforge/internal/model"
)

// PipelineVersion identifies the pipeline implementation in provenance
// records, so a manifest can always be traced back to the code that
// produced it.
const PipelineVersion = "deckforge/1.0"

// ProvenanceInfo records where the output came from. It is computed once,
// at ingestion, from the raw input and never changes afterwards.
type ProvenanceInfo struct {
	// SourcePath is the input document location.
	SourcePath string `json:"source_path"`

	// SourceHash is the SHA3-256 hash of the raw input.
	SourceHash string `json:"source_hash"`

	// SourceSize is the raw input size in bytes.
	SourceSize int64 `json:"source_size"`

	// Format is the detected input format.
	Format string `json:"format"`

	// Timestamp is when ingestion happened.
	Timestamp time.Time `json:"timestamp"`

	// PipelineVersion identifies the pipeline implementation.
	PipelineVersion string `json:"pipeline_version"`
}

// ProcessingLog aggregates run-level counters.
type ProcessingLog struct {
	// StagesCompleted lists completed stage names in execution order.
	// It is always a prefix of the configured stage order.
	StagesCompleted []string `json:"stages_completed"`

	// Collaborators lists the external collaborator implementations
	// invoked during the run, in first-use order.
	Collaborators []string `json:"collaborators,omitempty"`

	// SlidesProduced is the number of slides in the generated deck.
	SlidesProduced int `json:"slides_produced"`

	// Warnings is the total warning count across all stages.
	Warnings int `json:"warnings"`

	// Errors is the total error count across all stages.
	Errors int `json:"errors"`

	// Duration is the total wall-clock duration of the run.
	Duration time.Duration `json:"duration"`
}

// ProcessingStep is the manifest record of one stage execution, carrying
// the input/output content hashes for integrity and reproducibility
// checks.
type ProcessingStep struct {
	Stage      string        `json:"stage"`
	Success    bool          `json:"success"`
	Degraded   bool          `json:"degraded,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Attempts   int           `json:"attempts"`
	InputHash  string        `json:"input_hash,omitempty"`
	OutputHash string        `json:"output_hash,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
	Errors     []string      `json:"errors,omitempty"`
}

// QualityMetadata carries the validator's verdict into the manifest.
type QualityMetadata struct {
	// Passed is the validator's overall verdict.
	Passed bool `json:"passed"`

	// Score is 1.0 minus a severity-weighted penalty per issue, clamped
	// to [0, 1].
	Score float64 `json:"score"`

	// Issues are the individual validation findings.
	Issues []model.Issue `json:"issues,omitempty"`
}

// OutputInfo describes the generated artifact.
type OutputInfo struct {
	Path      string `json:"path"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"size_bytes"`
}

// Manifest is the complete serialized audit record of one run.
type Manifest struct {
	// RunID identifies the invocation that produced this manifest.
	RunID string `json:"run_id"`

	// Success is the terminal outcome of the run.
	Success bool `json:"success"`

	Provenance      *ProvenanceInfo  `json:"provenance,omitempty"`
	ProcessingLog   ProcessingLog    `json:"processing_log"`
	ProcessingSteps []ProcessingStep `json:"processing_steps"`
	Quality         *QualityMetadata `json:"quality,omitempty"`
	Output          *OutputInfo      `json:"output,omitempty"`

	// FinalizedAt is when the manifest was sealed.
	FinalizedAt time.Time `json:"finalized_at"`
}
