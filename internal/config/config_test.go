package config

import (
	"errors"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected
// default values. This serves as living documentation of the defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("checkpoints are enabled by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.EnableCheckpoints {
			t.Error("expected EnableCheckpoints to be true")
		}
	})

	t.Run("retry is enabled by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.EnableRetry {
			t.Error("expected EnableRetry to be true")
		}
	})

	t.Run("default MaxRetryAttempts is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxRetryAttempts != 3 {
			t.Errorf("expected MaxRetryAttempts to be 3, got %d", cfg.MaxRetryAttempts)
		}
	})

	t.Run("default RetryDelay is 500ms", func(t *testing.T) {
		t.Parallel()
		if cfg.RetryDelay != 500*time.Millisecond {
			t.Errorf("expected RetryDelay to be 500ms, got %v", cfg.RetryDelay)
		}
	})

	t.Run("default RetryMultiplier is 2.0", func(t *testing.T) {
		t.Parallel()
		if cfg.RetryMultiplier != 2.0 {
			t.Errorf("expected RetryMultiplier to be 2.0, got %f", cfg.RetryMultiplier)
		}
	})

	t.Run("partial results are saved by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SavePartialResults {
			t.Error("expected SavePartialResults to be true")
		}
	})

	t.Run("default KeepCheckpoints is 6", func(t *testing.T) {
		t.Parallel()
		if cfg.KeepCheckpoints != 6 {
			t.Errorf("expected KeepCheckpoints to be 6, got %d", cfg.KeepCheckpoints)
		}
	})

	t.Run("default BatchSize is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 4 {
			t.Errorf("expected BatchSize to be 4, got %d", cfg.BatchSize)
		}
	})
}

// TestConfigValidate verifies validation returns the right sentinel for
// each class of invalid configuration.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Inputs = []string{"in.md"}
		cfg.OutputPath = "out.json"
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(); err != nil {
			t.Errorf("expected valid config to pass, got %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "no inputs",
			mutate:  func(c *Config) { c.Inputs = nil },
			wantErr: ErrNoInput,
		},
		{
			name:    "no output",
			mutate:  func(c *Config) { c.OutputPath = "" },
			wantErr: ErrNoOutput,
		},
		{
			name:    "zero retry attempts",
			mutate:  func(c *Config) { c.MaxRetryAttempts = 0 },
			wantErr: ErrInvalidRetryAttempts,
		},
		{
			name:    "negative retry delay",
			mutate:  func(c *Config) { c.RetryDelay = -time.Second },
			wantErr: ErrInvalidRetryDelay,
		},
		{
			name:    "multiplier below one",
			mutate:  func(c *Config) { c.RetryMultiplier = 0.5 },
			wantErr: ErrInvalidRetryMultiplier,
		},
		{
			name:    "zero keep checkpoints",
			mutate:  func(c *Config) { c.KeepCheckpoints = 0 },
			wantErr: ErrInvalidKeepCheckpoints,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.BatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "unknown resume stage",
			mutate:  func(c *Config) { c.ResumeFromStage = "compilation" },
			wantErr: ErrUnknownResumeStage,
		},
		{
			name: "conflicting resume targets",
			mutate: func(c *Config) {
				c.ResumeFromStage = "validation"
				c.ResumeFromCheckpoint = "/tmp/cp.json"
			},
			wantErr: ErrConflictingResume,
		},
		{
			name: "conflicting report formats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestConfigValidateResumeStages verifies every canonical stage is an
// accepted resume target.
func TestConfigValidateResumeStages(t *testing.T) {
	t.Parallel()

	stages := []string{
		"ingestion", "extraction", "transformation",
		"template_selection", "validation", "generation",
	}
	for _, stage := range stages {
		t.Run(stage, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			cfg.Inputs = []string{"in.md"}
			cfg.OutputPath = "out.json"
			cfg.ResumeFromStage = stage
			if err := cfg.Validate(); err != nil {
				t.Errorf("expected resume from %q to validate, got %v", stage, err)
			}
		})
	}
}
