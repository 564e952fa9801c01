package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/deckforge/deckforge/internal/model"
)

// Tracker accumulates the manifest over the course of a run. One tracker
// exists per run; it is not safe for concurrent use (the pipeline is
// single-threaded by design).
type Tracker struct {
	manifest  *Manifest
	finalized bool

	// seenCollaborators deduplicates collaborator names while preserving
	// first-use order in the log.
	seenCollaborators map[string]bool
}

// NewTracker creates a Tracker for the given run.
func NewTracker(runID string) *Tracker {
	return &Tracker{
		manifest: &Manifest{
			RunID:           runID,
			ProcessingSteps: make([]ProcessingStep, 0, len(model.StageOrder)),
		},
		seenCollaborators: make(map[string]bool),
	}
}

// CreateProvenance computes the provenance record from the raw input.
// It is called once, at ingestion; later calls are ignored so the
// provenance stays immutable.
func (t *Tracker) CreateProvenance(sourcePath string, raw []byte, format model.Format) {
	if t.manifest.Provenance != nil {
		return
	}

	sum := sha3.Sum256(raw)
	t.manifest.Provenance = &ProvenanceInfo{
		SourcePath:      sourcePath,
		SourceHash:      fmt.Sprintf("%x", sum),
		SourceSize:      int64(len(raw)),
		Format:          string(format),
		Timestamp:       time.Now().UTC(),
		PipelineVersion: PipelineVersion,
	}
}

// RecordStep appends the detailed processing step for a stage result and
// updates the aggregate counters. Called once per StageResult, in stage
// order.
func (t *Tracker) RecordStep(result model.StageResult) {
	t.manifest.ProcessingSteps = append(t.manifest.ProcessingSteps, ProcessingStep{
		Stage:      result.Name,
		Success:    result.Success,
		Degraded:   result.Degraded,
		StartedAt:  result.StartedAt,
		Duration:   result.Duration,
		Attempts:   result.Attempts,
		InputHash:  result.InputHash,
		OutputHash: result.OutputHash,
		Warnings:   result.Warnings,
		Errors:     result.Errors,
	})

	if result.Success {
		t.manifest.ProcessingLog.StagesCompleted = append(t.manifest.ProcessingLog.StagesCompleted, result.Name)
	}
	t.manifest.ProcessingLog.Warnings += len(result.Warnings)
	t.manifest.ProcessingLog.Errors += len(result.Errors)
}

// RecordCollaborator notes that a collaborator implementation was invoked.
func (t *Tracker) RecordCollaborator(name string) {
	if name == "" || t.seenCollaborators[name] {
		return
	}
	t.seenCollaborators[name] = true
	t.manifest.ProcessingLog.Collaborators = append(t.manifest.ProcessingLog.Collaborators, name)
}

// SetQuality records the validator's verdict. The score starts at 1.0 and
// loses a severity-weighted penalty per issue.
func (t *Tracker) SetQuality(report *model.ValidationReport) {
	if report == nil {
		return
	}

	score := 1.0
	for _, issue := range report.Issues {
		switch issue.Severity {
		case model.SeverityCritical:
			score -= 0.5
		case model.SeverityHigh:
			score -= 0.25
		case model.SeverityMedium:
			score -= 0.1
		case model.SeverityLow:
			score -= 0.05
		case model.SeverityInfo:
			// Informational issues do not affect the score.
		}
	}
	if score < 0 {
		score = 0
	}

	t.manifest.Quality = &QualityMetadata{
		Passed: report.Passed,
		Score:  score,
		Issues: report.Issues,
	}
}

// SetOutput records the generated artifact details.
func (t *Tracker) SetOutput(path string, sizeBytes int64) {
	t.manifest.Output = &OutputInfo{
		Path:      path,
		Format:    "deck.json",
		SizeBytes: sizeBytes,
	}
}

// SetSlidesProduced records the slide count of the generated deck.
func (t *Tracker) SetSlidesProduced(n int) {
	t.manifest.ProcessingLog.SlidesProduced = n
}

// Finalize seals the manifest with the run outcome and total duration.
// It is idempotent: the second and later calls are no-ops, which guards
// against double-finalization on overlapping failure/success paths.
func (t *Tracker) Finalize(success bool, duration time.Duration) {
	if t.finalized {
		return
	}
	t.finalized = true

	t.manifest.Success = success
	t.manifest.ProcessingLog.Duration = duration
	t.manifest.FinalizedAt = time.Now().UTC()
}

// Finalized reports whether Finalize has been called.
func (t *Tracker) Finalized() bool {
	return t.finalized
}

// Manifest returns the manifest accumulated so far.
func (t *Tracker) Manifest() *Manifest {
	return t.manifest
}

// Save writes the manifest as indented JSON to path, creating parent
// directories as needed.
func (t *Tracker) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(t.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// PathFor returns the manifest path for an output artifact:
// <output>_manifest.json next to the artifact.
func PathFor(outputPath string) string {
	return outputPath + "_manifest.json"
}

// Load reads a manifest back from disk. Used by the history command and
// tests.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided manifest path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
