package checkpoint

import "errors"

// Checkpoint store errors. The orchestrator treats all of them as
// recoverable: a failed load falls back to running from the start, a
// failed save is logged and the run continues.
var (
	// ErrNotFound is returned when the requested checkpoint does not exist.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrCorrupt is returned when a checkpoint file exists but cannot be
	// decoded.
	ErrCorrupt = errors.New("checkpoint file is corrupt")
)
