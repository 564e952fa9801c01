package model

import "time"

// Canonical stage names in fixed execution order. The ordered list is
// process-wide static configuration; it is never mutated at runtime.
const (
	// StageIngestion reads the raw input and detects its format.
	StageIngestion = "ingestion"

	// StageExtraction parses the raw input into a semantic Document.
	StageExtraction = "extraction"

	// StageTransformation maps the Document onto the Deck schema.
	StageTransformation = "transformation"

	// StageTemplateSelection picks the template for the deck.
	StageTemplateSelection = "template_selection"

	// StageValidation checks the deck against the schema rules.
	StageValidation = "validation"

	// StageGeneration writes the output artifact.
	StageGeneration = "generation"
)

// StageOrder is the fixed execution order of the pipeline.
var StageOrder = []string{
	StageIngestion,
	StageExtraction,
	StageTransformation,
	StageTemplateSelection,
	StageValidation,
	StageGeneration,
}

// ValidStage reports whether name is a canonical stage name.
func ValidStage(name string) bool {
	for _, s := range StageOrder {
		if s == name {
			return true
		}
	}
	return false
}

// StageData is the evolving working state threaded through the stages.
// Exactly one instance exists per run, owned by the orchestrator; stages
// receive it by reference and must not retain it after returning. Each
// stage consumes a subset of fields and produces or overwrites others.
//
// All fields are JSON-serializable so the whole state can be snapshotted
// into a checkpoint and restored field-for-field.
type StageData struct {
	// SourcePath is the input file location.
	SourcePath string `json:"source_path"`

	// RawInput is the raw input content, set by ingestion.
	RawInput []byte `json:"raw_input,omitempty"`

	// DetectedFormat is the sniffed input format, set by ingestion.
	DetectedFormat Format `json:"detected_format,omitempty"`

	// Document is the semantic structure, set by extraction.
	Document *Document `json:"document,omitempty"`

	// Deck is the target-schema document, set by transformation.
	Deck *Deck `json:"deck,omitempty"`

	// TemplateID is the selected template, set by template_selection.
	TemplateID string `json:"template_id,omitempty"`

	// Validation is the validator's verdict, set by validation.
	Validation *ValidationReport `json:"validation,omitempty"`

	// ArtifactPath is the generated artifact location, set by generation.
	ArtifactPath string `json:"artifact_path,omitempty"`

	// ArtifactSize is the artifact size in bytes, set by generation.
	ArtifactSize int64 `json:"artifact_size,omitempty"`
}

// StageResult is the outcome of one stage execution. Results accumulate
// in an append-only list across the run.
type StageResult struct {
	// Name is the stage name.
	Name string `json:"name"`

	// Success is true when the stage completed, including completion via
	// fallback substitution (Degraded is set in that case).
	Success bool `json:"success"`

	// Degraded is true when the stage failed and its configured fallback
	// value was substituted instead.
	Degraded bool `json:"degraded,omitempty"`

	// StartedAt is when the stage began executing.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the stage ran, including retries.
	Duration time.Duration `json:"duration"`

	// Attempts is the number of execution attempts (1 when no retry fired).
	Attempts int `json:"attempts"`

	// InputHash is the SHA3-256 hash of the stage's relevant input.
	InputHash string `json:"input_hash,omitempty"`

	// OutputHash is the SHA3-256 hash of the stage's relevant output.
	OutputHash string `json:"output_hash,omitempty"`

	// Warnings lists non-fatal problems observed during the stage.
	Warnings []string `json:"warnings,omitempty"`

	// Errors lists fatal problems; non-empty only for failed or degraded
	// stages.
	Errors []string `json:"errors,omitempty"`

	// Metadata carries stage-specific details (e.g. slide counts).
	Metadata map[string]string `json:"metadata,omitempty"`
}
