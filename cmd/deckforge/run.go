package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/database"
	"github.com/deckforge/deckforge/internal/log"
	"github.com/deckforge/deckforge/internal/manifest"
	"github.com/deckforge/deckforge/internal/model"
	"github.com/deckforge/deckforge/internal/pipeline"
	"github.com/deckforge/deckforge/internal/report"
)

// errConversionFailed is returned when a run fails. The summary already
// describes the failure, so Execute prints only this short line.
var errConversionFailed = errors.New("conversion failed")

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <input>... <output>",
		Short: "Convert a document into a presentation deck",
		Long: `Run converts one or more structured documents into presentation deck
artifacts. The last argument is the output path: a file for a single
input, a directory for multiple inputs (batch mode).

The pipeline runs six stages in order: ingestion, extraction,
transformation, template_selection, validation, and generation. State is
checkpointed after every successful stage, so a failed run can be
resumed from where it stopped.

Examples:
  # Convert a markdown document
  deckforge run slides.md slides.deck.json

  # Convert with an explicit theme and strict validation
  deckforge run --theme mono --strict notes.md notes.deck.json

  # Resume a failed run from the validation stage
  deckforge run --resume-from validation slides.md slides.deck.json

  # Resume from a specific checkpoint file
  deckforge run --resume-checkpoint ~/.local/share/deckforge/checkpoints/run-a1b2c3d4e5f6/20260829T101500.000000000-deadbeef.json slides.md slides.deck.json

  # Convert a batch of documents into a directory
  deckforge run docs/a.md docs/b.md docs/c.md decks/

Configuration file (.deckforge) example:
  defaults:
    maxBulletsPerSlide: 6
  documents:
    slides.md:
      theme: briefing
      strict: true`,
		Args: cobra.MinimumNArgs(2),
		RunE: runRunCmd,
	}

	// Conversion flags
	cmd.Flags().StringP("theme", "t", "",
		"Template override (plain, mono, briefing, gallery); default lets the selector decide")
	cmd.Flags().Bool("strict", false,
		"Promote validation warnings to failures")

	// Resilience flags
	cmd.Flags().Bool("no-checkpoints", false,
		"Disable checkpointing after each stage")
	cmd.Flags().Bool("no-retry", false,
		"Disable retry with exponential backoff for recoverable failures")
	cmd.Flags().Int("max-retries", config.DefaultMaxRetryAttempts,
		"Maximum attempts per stage, including the first")
	cmd.Flags().Duration("retry-delay", config.DefaultRetryDelay,
		"Initial backoff delay before the second attempt")
	cmd.Flags().Bool("no-partial-results", false,
		"Disable the partial results dump on unrecoverable failure")

	// Resume flags
	cmd.Flags().String("resume-from", "",
		"Resume from the named stage using the most recent usable checkpoint")
	cmd.Flags().String("resume-checkpoint", "",
		"Resume from an explicit checkpoint file (mutually exclusive with --resume-from)")
	cmd.Flags().String("checkpoint-dir", "",
		"Checkpoint directory (default: per-input directory under the XDG data dir)")
	cmd.Flags().Int("keep-checkpoints", config.DefaultKeepCheckpoints,
		"How many recent checkpoints to keep per run directory")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent conversions in batch mode")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .deckforge in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write the run summary to the specified file instead of stdout")

	// History flags
	cmd.Flags().Bool("no-db", false,
		"Do not record the run in the history database")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	if len(cfg.Inputs) > 1 {
		return runBatchConversion(ctx, cfg, logger)
	}
	return runSingleConversion(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildRunConfig creates a Config from cobra command flags. The last
// positional argument is the output path; the rest are inputs.
func buildRunConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	cfg.Inputs = args[:len(args)-1]
	cfg.OutputPath = args[len(args)-1]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.Theme, err = cmd.Flags().GetString("theme")
	if err != nil {
		return nil, err
	}

	cfg.Strict, err = cmd.Flags().GetBool("strict")
	if err != nil {
		return nil, err
	}

	noCheckpoints, err := cmd.Flags().GetBool("no-checkpoints")
	if err != nil {
		return nil, err
	}
	cfg.EnableCheckpoints = !noCheckpoints

	noRetry, err := cmd.Flags().GetBool("no-retry")
	if err != nil {
		return nil, err
	}
	cfg.EnableRetry = !noRetry

	cfg.MaxRetryAttempts, err = cmd.Flags().GetInt("max-retries")
	if err != nil {
		return nil, err
	}

	cfg.RetryDelay, err = cmd.Flags().GetDuration("retry-delay")
	if err != nil {
		return nil, err
	}

	noPartial, err := cmd.Flags().GetBool("no-partial-results")
	if err != nil {
		return nil, err
	}
	cfg.SavePartialResults = !noPartial

	cfg.ResumeFromStage, err = cmd.Flags().GetString("resume-from")
	if err != nil {
		return nil, err
	}

	cfg.ResumeFromCheckpoint, err = cmd.Flags().GetString("resume-checkpoint")
	if err != nil {
		return nil, err
	}

	cfg.CheckpointDir, err = cmd.Flags().GetString("checkpoint-dir")
	if err != nil {
		return nil, err
	}

	cfg.KeepCheckpoints, err = cmd.Flags().GetInt("keep-checkpoints")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-document configurations from the config file. An explicit
	// path that does not exist is an error; a missing default file is not.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.DocumentConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.DocumentConfigs = &config.File{
			Documents: make(map[string]config.DocumentConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// configForDocument applies the per-document config file settings to a
// copy of the run config. CLI flags win over the config file.
func configForDocument(cfg *config.Config, input string) (*config.Config, int) {
	docCfg := cfg.DocumentConfigs.GetDocumentConfig(input)

	perDoc := *cfg
	if perDoc.Theme == "" {
		perDoc.Theme = docCfg.Theme
	}
	if docCfg.Strict {
		perDoc.Strict = true
	}
	return &perDoc, docCfg.MaxBulletsPerSlide
}

// runSingleConversion converts one document and reports the outcome.
func runSingleConversion(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	input := cfg.Inputs[0]
	perDoc, maxBullets := configForDocument(cfg, input)

	orch, err := pipeline.NewOrchestrator(perDoc, input, cfg.OutputPath, maxBullets,
		pipeline.WithOrchestratorLogger(logger),
	)
	if err != nil {
		return err
	}

	fmt.Printf("Converting %s...\n", input)
	startTime := time.Now()

	result, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Done in %s\n", time.Since(startTime).Round(time.Millisecond))

	if err := outputSummary(cfg, result); err != nil {
		logger.Error("summary failed", "input", input, "error", err)
	}
	saveRunHistory(ctx, cfg, input, result, logger)

	switch {
	case !result.Success:
		return errConversionFailed
	case result.HasWarnings() || result.RecoveredFromErrors > 0:
		return ErrCompletedWithWarnings
	default:
		return nil
	}
}

// runBatchConversion converts multiple documents concurrently. The
// output path is treated as a directory.
func runBatchConversion(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := os.MkdirAll(cfg.OutputPath, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fmt.Printf("Starting batch conversion of %d documents (concurrency: %d)...\n\n",
		len(cfg.Inputs), cfg.BatchSize)
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(input, output string) (*pipeline.Orchestrator, error) {
			perDoc, maxBullets := configForDocument(cfg, input)
			return pipeline.NewOrchestrator(perDoc, input, output, maxBullets,
				pipeline.WithOrchestratorLogger(logger),
			)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	results, err := bp.ProcessBatch(ctx, cfg.Inputs, cfg.OutputPath)
	if err != nil {
		return err
	}

	var failed, warned int
	for i, result := range results {
		if result == nil {
			continue
		}
		fmt.Printf("[%d/%d] %s\n", i+1, len(results), cfg.Inputs[i])
		if err := outputSummary(cfg, result); err != nil {
			logger.Error("summary failed", "input", cfg.Inputs[i], "error", err)
		}
		saveRunHistory(ctx, cfg, cfg.Inputs[i], result, logger)

		if !result.Success {
			failed++
		} else if result.HasWarnings() || result.RecoveredFromErrors > 0 {
			warned++
		}
	}

	fmt.Printf("\nBatch conversion completed in %s (%d failed, %d with warnings)\n",
		time.Since(startTime).Round(time.Millisecond), failed, warned)

	switch {
	case failed > 0:
		return errConversionFailed
	case warned > 0:
		return ErrCompletedWithWarnings
	default:
		return nil
	}
}

// outputSummary writes the run summary in the requested format.
func outputSummary(cfg *config.Config, result *model.PipelineResult) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Close error is not actionable here
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := w.Write(result)
	return err
}

// saveRunHistory records the run in the history database if enabled.
// History failures are logged, never fatal; the artifact already exists.
func saveRunHistory(ctx context.Context, cfg *config.Config, input string, result *model.PipelineResult, logger *slog.Logger) {
	if !cfg.SaveToDB {
		return
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database", "dir", cfg.DBDir, "error", err)
		return
	}
	defer db.Close() //nolint:errcheck // Close error is not actionable here

	var m *manifest.Manifest
	if result.ManifestPath != "" {
		m, err = manifest.Load(result.ManifestPath)
		if err != nil {
			logger.Warn("failed to load manifest for history", "path", result.ManifestPath, "error", err)
		}
	}

	if err := db.SaveRun(ctx, input, result, m); err != nil {
		logger.Warn("failed to save run history", "input", input, "error", err)
		return
	}
	logger.Debug("run history saved", "run_id", result.RunID)
}
