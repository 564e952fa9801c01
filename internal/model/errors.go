package model

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies a pipeline failure. The kind decides how the
// orchestrator reacts: recoverable kinds are eligible for retry, the rest
// fail the stage immediately.
//
// Design decision: Go has no exception hierarchy, so the taxonomy is a
// tagged value carried inside PipelineError rather than a type tree.
// Callers branch on Kind (or use errors.As to get the *PipelineError)
// instead of type-switching over many error types.
type ErrorKind int

const (
	// KindRecoverable marks transient failures that are safe to retry,
	// such as a collaborator hitting a temporary resource limit.
	KindRecoverable ErrorKind = iota

	// KindCritical marks failures that must stop the run immediately.
	KindCritical

	// KindValidation marks a deck that failed schema or content validation.
	KindValidation

	// KindExtraction marks a failure to parse the raw input into a
	// semantic document structure.
	KindExtraction

	// KindTransformation marks a failure to map the semantic structure
	// onto the deck schema.
	KindTransformation

	// KindGeneration marks a failure to produce the output artifact.
	KindGeneration

	// KindCheckpoint marks a checkpoint read or write failure.
	KindCheckpoint
)

// String returns the canonical name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindRecoverable:
		return "recoverable"
	case KindCritical:
		return "critical"
	case KindValidation:
		return "validation"
	case KindExtraction:
		return "extraction"
	case KindTransformation:
		return "transformation"
	case KindGeneration:
		return "generation"
	case KindCheckpoint:
		return "checkpoint"
	default:
		return "unknown"
	}
}

// kindInfo carries the retry eligibility and the user-facing remedy text
// for an error kind.
type kindInfo struct {
	Recoverable bool
	Suggestion  string
}

// kindInfoMapping maps error kinds to their metadata. This centralized
// mapping keeps retry eligibility and suggestion text consistent across
// the application.
//
// Design decision: We use a map rather than attaching the metadata to each
// construction site because:
// 1. It provides a single source of truth for retry eligibility
// 2. Suggestions stay uniform no matter which component raised the error
// 3. It makes it easy to generate error documentation
var kindInfoMapping = map[ErrorKind]kindInfo{
	KindRecoverable: {
		Recoverable: true,
		Suggestion:  "The failure looks transient. Re-run the command; retry with backoff is applied automatically unless --no-retry is set.",
	},
	KindCritical: {
		Recoverable: false,
		Suggestion:  "Inspect the partial results directory for the state at the point of failure, then resume with --resume-from once the cause is fixed.",
	},
	KindValidation: {
		Recoverable: false,
		Suggestion:  "Review the validation issues in the manifest. Fix the source document or re-run without --strict to downgrade warnings.",
	},
	KindExtraction: {
		Recoverable: false,
		Suggestion:  "Check that the input is valid markdown, JSON outline, or HTML. Use --verbose to see which parser was selected.",
	},
	KindTransformation: {
		Recoverable: false,
		Suggestion:  "The extracted structure could not be mapped to the deck schema. Inspect stage_data.json in the partial results directory.",
	},
	KindGeneration: {
		Recoverable: false,
		Suggestion:  "Verify the output path is writable and has free space, then resume with --resume-from generation.",
	},
	KindCheckpoint: {
		Recoverable: true,
		Suggestion:  "The checkpoint could not be read or written. Run 'deckforge checkpoints list' to inspect the store, or re-run without --resume-checkpoint to start cold.",
	},
}

// KindRecoverableDefault reports whether the kind is retryable by default.
func KindRecoverableDefault(k ErrorKind) bool {
	return kindInfoMapping[k].Recoverable
}

// KindSuggestion returns the remedy text for the kind.
func KindSuggestion(k ErrorKind) string {
	return kindInfoMapping[k].Suggestion
}

// PipelineError is the structured error produced at the stage boundary.
// Collaborator errors are classified into the taxonomy and wrapped into a
// PipelineError with stage context attached. The value is never mutated
// after construction.
type PipelineError struct {
	// Stage is the name of the stage that failed.
	Stage string `json:"stage"`

	// Kind classifies the failure.
	Kind ErrorKind `json:"kind"`

	// KindText is the string form of Kind for serialized output.
	KindText string `json:"kind_text"`

	// Message describes what went wrong.
	Message string `json:"message"`

	// Context carries stage-specific key/value diagnostics.
	Context map[string]string `json:"context,omitempty"`

	// Recoverable reports whether retrying the stage may succeed.
	Recoverable bool `json:"recoverable"`

	// Suggestion is the actionable remedy shown to the user.
	Suggestion string `json:"suggestion"`

	// cause is the wrapped underlying error, if any. It is not serialized;
	// Message already contains its text.
	cause error
}

// NewPipelineError creates a PipelineError for the given stage and kind.
// Recoverability and suggestion text are derived from the kind mapping.
func NewPipelineError(stage string, kind ErrorKind, msg string, cause error) *PipelineError {
	return &PipelineError{
		Stage:       stage,
		Kind:        kind,
		KindText:    kind.String(),
		Message:     msg,
		Recoverable: KindRecoverableDefault(kind),
		Suggestion:  KindSuggestion(kind),
		cause:       cause,
	}
}

// WithContext returns the error with an extra diagnostic key/value pair.
// It is intended for use at construction time only.
func (e *PipelineError) WithContext(key, value string) *PipelineError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s stage failed (%s): %s: %v", e.Stage, e.KindText, e.Message, e.cause)
	}
	return fmt.Sprintf("%s stage failed (%s): %s", e.Stage, e.KindText, e.Message)
}

// Unwrap returns the wrapped cause for errors.Is/errors.As chains.
func (e *PipelineError) Unwrap() error {
	return e.cause
}

// Format renders the multi-line, user-facing description of the failure:
// stage, kind, cause, context, and the actionable suggestion. The CLI
// prints this instead of a bare error chain.
func (e *PipelineError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stage:      %s\n", e.Stage)
	fmt.Fprintf(&b, "Kind:       %s\n", e.KindText)
	fmt.Fprintf(&b, "Problem:    %s\n", e.Message)
	if e.cause != nil {
		fmt.Fprintf(&b, "Cause:      %v\n", e.cause)
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, e.Context[k])
		}
	}
	fmt.Fprintf(&b, "Suggestion: %s", e.Suggestion)
	return b.String()
}
