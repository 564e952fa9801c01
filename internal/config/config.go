package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These are chosen so a bare
// "deckforge run in.md out.deck.json" behaves sensibly without flags.
const (
	// DefaultMaxRetryAttempts bounds how often a recoverable stage failure
	// is retried. Three attempts absorbs most transient failures without
	// stretching a failing run past a few seconds of backoff.
	DefaultMaxRetryAttempts = 3

	// DefaultRetryDelay is the initial backoff delay. Stage work is local
	// (no network), so a short base delay is enough.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultRetryMultiplier doubles the delay after each failed attempt.
	DefaultRetryMultiplier = 2.0

	// DefaultKeepCheckpoints is how many checkpoints the retention policy
	// keeps per run directory. Six covers one checkpoint per stage.
	DefaultKeepCheckpoints = 6

	// DefaultBatchSize is the number of concurrent pipeline runs when
	// processing multiple inputs. Runs are CPU and disk bound, so a small
	// default avoids thrashing while still overlapping I/O.
	DefaultBatchSize = 4

	// DefaultTemplateID is the template used when no override is given
	// and the selector has no better match.
	DefaultTemplateID = "plain"

	// AppName is the application name used for XDG directory paths.
	AppName = "deckforge"
)

// Config describes one pipeline invocation. It is created once at
// invocation, validated, and never mutated afterwards; every component
// receives it by value or pointer but treats it as read-only.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., RetryConfig, CheckpointConfig) for simplicity, mirroring how the
// CLI flags map onto it. The struct carries JSON tags because a snapshot
// of it is embedded in every checkpoint.
type Config struct {
	// Inputs are the source document paths. Exactly one for a normal run;
	// more than one switches the CLI into batch mode.
	Inputs []string `json:"inputs"`

	// OutputPath is the artifact destination: a file path for a single
	// input, a directory for batch mode.
	OutputPath string `json:"output_path"`

	// Theme is the template override. Empty means let the selector decide.
	// An unknown theme never fails the run; the selector falls back to the
	// default template.
	Theme string `json:"theme,omitempty"`

	// EnableCheckpoints controls whether state is persisted after each
	// successful stage.
	EnableCheckpoints bool `json:"enable_checkpoints"`

	// EnableRetry controls whether recoverable stage failures are retried
	// with exponential backoff.
	EnableRetry bool `json:"enable_retry"`

	// MaxRetryAttempts bounds the retry loop, including the first attempt.
	MaxRetryAttempts int `json:"max_retry_attempts"`

	// RetryDelay is the initial backoff delay.
	RetryDelay time.Duration `json:"retry_delay"`

	// RetryMultiplier scales the delay after each failed attempt.
	RetryMultiplier float64 `json:"retry_multiplier"`

	// SavePartialResults controls whether a diagnostic dump is written
	// when the run fails unrecoverably.
	SavePartialResults bool `json:"save_partial_results"`

	// ResumeFromStage restarts the run at the named stage, restoring
	// state from the most relevant checkpoint. Empty means run from the
	// start.
	ResumeFromStage string `json:"resume_from_stage,omitempty"`

	// ResumeFromCheckpoint restores state from an explicit checkpoint
	// file before running.
	ResumeFromCheckpoint string `json:"resume_from_checkpoint,omitempty"`

	// CheckpointDir is the checkpoint store root. Empty means derive a
	// per-run directory under the XDG data dir from the input hash, which
	// keeps concurrent runs on different inputs from contending on one
	// index file.
	CheckpointDir string `json:"checkpoint_dir,omitempty"`

	// KeepCheckpoints is the retention policy: how many recent checkpoints
	// survive cleanup.
	KeepCheckpoints int `json:"keep_checkpoints"`

	// Strict promotes validation warnings to failures.
	Strict bool `json:"strict"`

	// BatchSize is the number of concurrent runs in batch mode.
	BatchSize int `json:"batch_size"`

	// Verbose enables debug-level log output.
	Verbose bool `json:"verbose"`

	// JSONReport prints the run summary as JSON instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool `json:"json_report"`

	// MarkdownReport prints the run summary as Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool `json:"markdown_report"`

	// ReportFile writes the run summary to a file instead of stdout.
	ReportFile string `json:"report_file,omitempty"`

	// SaveToDB persists the run result and manifest to the run-history
	// database under DBDir.
	SaveToDB bool `json:"save_to_db"`

	// DBDir is the run-history database directory.
	DBDir string `json:"db_dir,omitempty"`

	// ConfigFilePath is the .deckforge file path. Empty triggers the
	// default search (current directory, then home).
	ConfigFilePath string `json:"config_file_path,omitempty"`

	// DocumentConfigs holds per-document settings loaded from the config
	// file. Not serialized into checkpoints; reloaded on resume.
	DocumentConfigs *File `json:"-"`
}

// NewConfig creates a Config with default values. Checkpoints, retry, and
// partial-result saving are on by default; resilience is the point of the
// tool, so opting out is the explicit action (--no-checkpoints, --no-retry).
func NewConfig() *Config {
	return &Config{
		EnableCheckpoints:  true,
		EnableRetry:        true,
		MaxRetryAttempts:   DefaultMaxRetryAttempts,
		RetryDelay:         DefaultRetryDelay,
		RetryMultiplier:    DefaultRetryMultiplier,
		SavePartialResults: true,
		KeepCheckpoints:    DefaultKeepCheckpoints,
		BatchSize:          DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for deckforge.
// On Linux: ~/.local/share/deckforge
// On macOS: ~/Library/Application Support/deckforge
// On Windows: %LOCALAPPDATA%\deckforge
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for deckforge.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for deckforge.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// DefaultCheckpointRoot returns the directory under which per-run
// checkpoint directories are created when CheckpointDir is not set.
func DefaultCheckpointRoot() string {
	return filepath.Join(XDGDataDir(), "checkpoints")
}

// knownStages is used to validate --resume-from values.
var knownStages = map[string]bool{
	"ingestion":          true,
	"extraction":         true,
	"transformation":     true,
	"template_selection": true,
	"validation":         true,
	"generation":         true,
}

// Validate checks if the configuration is valid. It returns a specific
// sentinel error describing the first problem found.
//
// Design decision: We validate once after CLI parsing, before any stage
// runs, to fail fast with a clear message. First-error-wins keeps the
// output actionable; fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	if c.OutputPath == "" {
		return ErrNoOutput
	}

	if c.MaxRetryAttempts <= 0 {
		return ErrInvalidRetryAttempts
	}

	if c.RetryDelay < 0 {
		return ErrInvalidRetryDelay
	}

	if c.RetryMultiplier < 1.0 {
		return ErrInvalidRetryMultiplier
	}

	if c.KeepCheckpoints <= 0 {
		return ErrInvalidKeepCheckpoints
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.ResumeFromStage != "" && !knownStages[c.ResumeFromStage] {
		return ErrUnknownResumeStage
	}

	// Resume targets are mutually exclusive; an explicit checkpoint
	// already pins the stage to restart from.
	if c.ResumeFromStage != "" && c.ResumeFromCheckpoint != "" {
		return ErrConflictingResume
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
