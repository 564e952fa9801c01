package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/deckforge/deckforge/internal/model"
)

// StageFunc does the work of one stage. It reads and mutates the shared
// stage data and may append warnings or metadata to its result. Returned
// errors should be *model.PipelineError; anything else is classified with
// the stage's default kind.
type StageFunc func(ctx context.Context, data *model.StageData, res *model.StageResult) error

// FallbackFunc substitutes a degraded value into the stage data after a
// non-critical stage failure, letting the run continue.
type FallbackFunc func(data *model.StageData, res *model.StageResult)

// Stage describes one pipeline stage: its work function, failure
// classification, and degradation behavior.
type Stage struct {
	// Name is the canonical stage name.
	Name string

	// Kind is the default error classification when the stage fails with
	// an unclassified error.
	Kind model.ErrorKind

	// Critical marks stages whose failure must abort the run. Non-critical
	// stages degrade via Fallback instead.
	Critical bool

	// Run does the stage work.
	Run StageFunc

	// Fallback substitutes a degraded value after failure. Required for
	// non-critical stages, nil for critical ones.
	Fallback FallbackFunc

	// InputHash and OutputHash compute the provenance hashes over the
	// stage's relevant input and output. Either may be nil.
	InputHash  func(data *model.StageData) string
	OutputHash func(data *model.StageData) string
}

// hashBytes returns the hex SHA3-256 digest of raw input bytes.
func hashBytes(b []byte) string {
	sum := sha3.Sum256(b)
	return fmt.Sprintf("%x", sum)
}

// hashJSON hashes the canonical JSON encoding of a structured value, so
// the provenance hash is stable across runs regardless of in-memory
// representation.
func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return hashBytes(data)
}

// classify wraps an unclassified error with the stage's default kind.
// Already-classified errors pass through untouched.
func classify(stage Stage, err error) *model.PipelineError {
	var perr *model.PipelineError
	if errors.As(err, &perr) {
		return perr
	}
	return model.NewPipelineError(stage.Name, stage.Kind, "stage execution failed", err)
}
