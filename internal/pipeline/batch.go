package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/model"
)

// BatchProcessor converts multiple input documents concurrently. Each
// input gets its own Orchestrator so run state never leaks between inputs.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Orchestrator because:
// 1. It keeps the Orchestrator focused on single-run execution
// 2. It allows different batch strategies (e.g., rate limiting)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// factory creates a fresh orchestrator for one input/output pair.
	factory func(input, output string) (*Orchestrator, error)

	// concurrency is the maximum number of concurrent runs.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed run results, indexed by input position.
	// Access is synchronized via mutex.
	results []*model.PipelineResult
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent runs.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
//
// The factory is called once per input to create a fresh Orchestrator,
// so per-document configuration can differ between inputs.
func NewBatchProcessor(factory func(input, output string) (*Orchestrator, error), opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: config.DefaultBatchSize,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch converts the inputs concurrently, writing each artifact
// into outputDir. Results keep the order of the inputs slice.
//
// A failed run never cancels its siblings; the failure lives in that
// input's PipelineResult. The error return covers context cancellation
// and orchestrator construction failures only.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, inputs []string, outputDir string) ([]*model.PipelineResult, error) {
	bp.logger.Info("starting batch conversion",
		"total_inputs", len(inputs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	bp.results = make([]*model.PipelineResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			output := OutputPathFor(outputDir, input)
			bp.logger.Info("converting document",
				"input", input,
				"output", output,
				"index", i+1,
				"total", len(inputs),
			)

			orch, err := bp.factory(input, output)
			if err != nil {
				return err
			}

			result, err := orch.Run(ctx)
			if err != nil {
				return err
			}

			bp.mu.Lock()
			bp.results[i] = result
			bp.mu.Unlock()

			if !result.Success {
				bp.logger.Warn("conversion failed",
					"input", input,
					"last_successful_stage", result.LastSuccessfulStage,
				)
			}
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch conversion complete",
		"total_inputs", len(inputs),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// OutputPathFor derives the artifact path for one input in batch mode:
// the input's base name with its extension replaced by .deck.json,
// placed in outputDir.
func OutputPathFor(outputDir, input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, base+".deck.json")
}
