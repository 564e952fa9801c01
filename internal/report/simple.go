package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/deckforge/deckforge/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables per-stage detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-stage details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(result *model.PipelineResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeStages(&sb, result)
	w.writeWarnings(&sb, result)
	if !result.Success {
		w.writeFailure(&sb, result)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the run outcome and key facts.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.PipelineResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         DECKFORGE RUN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Run ID:           %s\n", result.RunID))
	switch {
	case result.Success && result.RecoveredFromErrors > 0:
		sb.WriteString(fmt.Sprintf("Status:           DEGRADED (recovered from %d error(s))\n", result.RecoveredFromErrors))
	case result.Success:
		sb.WriteString("Status:           SUCCESS\n")
	default:
		sb.WriteString("Status:           FAILED\n")
	}
	if result.OutputPath != "" {
		sb.WriteString(fmt.Sprintf("Output:           %s\n", result.OutputPath))
	}
	if result.ManifestPath != "" {
		sb.WriteString(fmt.Sprintf("Manifest:         %s\n", result.ManifestPath))
	}
	sb.WriteString(fmt.Sprintf("Stages Completed: %d/%d\n", result.StagesCompleted, len(model.StageOrder)))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", result.Duration))
	sb.WriteString("\n")
}

// writeStages writes the per-stage outcome table.
func (w *SimpleWriter) writeStages(sb *strings.Builder, result *model.PipelineResult) {
	if len(result.StageResults) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("STAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, r := range result.StageResults {
		sb.WriteString(fmt.Sprintf("  [%s] %-20s %s", stageIndicator(r), r.Name, r.Duration))
		if r.Attempts > 1 {
			sb.WriteString(fmt.Sprintf(" (%d attempts)", r.Attempts))
		}
		sb.WriteString("\n")

		if w.verbose {
			for _, warning := range r.Warnings {
				sb.WriteString(fmt.Sprintf("        warning: %s\n", warning))
			}
			for _, e := range r.Errors {
				sb.WriteString(fmt.Sprintf("        error:   %s\n", e))
			}
		}
	}
	sb.WriteString("\n")
}

// stageIndicator returns a visual marker for a stage outcome.
func stageIndicator(r model.StageResult) string {
	switch {
	case r.Degraded:
		return "~"
	case r.Success:
		return "+"
	default:
		return "x"
	}
}

// writeWarnings writes the aggregated warning list.
func (w *SimpleWriter) writeWarnings(sb *strings.Builder, result *model.PipelineResult) {
	if !result.HasWarnings() {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("WARNINGS (%d)\n", len(result.Warnings)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, warning := range result.Warnings {
		sb.WriteString(fmt.Sprintf("  * %s\n", warning))
	}
	sb.WriteString("\n")
}

// writeFailure writes the failure diagnostics: the classified errors
// with their suggestions, plus where the recovery material lives.
func (w *SimpleWriter) writeFailure(sb *strings.Builder, result *model.PipelineResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILURE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, perr := range result.StructuredErrors {
		for line := range strings.Lines(perr.Format()) {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n\n")
	}

	if result.LastSuccessfulStage != "" {
		sb.WriteString(fmt.Sprintf("  Last successful stage: %s\n", result.LastSuccessfulStage))
	}
	if result.PartialResultsPath != "" {
		sb.WriteString(fmt.Sprintf("  Partial results:       %s\n", result.PartialResultsPath))
	}
	if result.CheckpointPath != "" {
		sb.WriteString(fmt.Sprintf("  Latest checkpoint:     %s\n", result.CheckpointPath))
	}
	sb.WriteString("\n")
}
