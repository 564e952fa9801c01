package config

import "errors"

// Configuration validation errors. These are returned by Config.Validate()
// and provide specific information about what is wrong.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic handling while still providing
// human-readable messages.
var (
	// ErrNoInput is returned when no input document is specified.
	ErrNoInput = errors.New("no input specified: provide a source document path")

	// ErrNoOutput is returned when no output path is specified.
	ErrNoOutput = errors.New("no output specified: provide an artifact destination path")

	// ErrInvalidRetryAttempts is returned when the retry attempt bound is
	// not positive. At least one attempt is always required.
	ErrInvalidRetryAttempts = errors.New("invalid max retry attempts: must be positive")

	// ErrInvalidRetryDelay is returned when the backoff delay is negative.
	ErrInvalidRetryDelay = errors.New("invalid retry delay: must be non-negative")

	// ErrInvalidRetryMultiplier is returned when the backoff multiplier is
	// below 1.0, which would shrink delays instead of growing them.
	ErrInvalidRetryMultiplier = errors.New("invalid retry multiplier: must be >= 1.0")

	// ErrInvalidKeepCheckpoints is returned when the retention count is
	// not positive; keeping zero checkpoints would defeat resuming.
	ErrInvalidKeepCheckpoints = errors.New("invalid keep checkpoints: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrUnknownResumeStage is returned when --resume-from names a stage
	// that is not part of the fixed pipeline order.
	ErrUnknownResumeStage = errors.New("unknown resume stage: must be one of ingestion, extraction, transformation, template_selection, validation, generation")

	// ErrConflictingResume is returned when both --resume-from and
	// --resume-checkpoint are specified.
	ErrConflictingResume = errors.New("conflicting resume options: --resume-from and --resume-checkpoint cannot be used together")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
