package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/deckforge/deckforge/internal/model"
)

// MarkdownWriter outputs run summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(result *model.PipelineResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeStages(md, result)
	w.writeWarnings(md, result)
	if !result.Success {
		w.writeFailure(md, result)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run facts table and the outcome alert.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.PipelineResult) {
	md.H1("Deckforge Run Summary")
	md.PlainText("")

	rows := [][]string{
		{"Run ID", "`" + result.RunID + "`"},
		{"Status", w.getStatusText(result)},
		{"Stages Completed", strconv.Itoa(result.StagesCompleted) + "/" + strconv.Itoa(len(model.StageOrder))},
		{"Duration", result.Duration.String()},
	}
	if result.OutputPath != "" {
		rows = append(rows, []string{"Output", "`" + result.OutputPath + "`"})
	}
	if result.ManifestPath != "" {
		rows = append(rows, []string{"Manifest", "`" + result.ManifestPath + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeAlert(md, result)
}

// getStatusText returns the status text based on the run outcome.
func (w *MarkdownWriter) getStatusText(result *model.PipelineResult) string {
	switch {
	case result.Success && result.RecoveredFromErrors > 0:
		return "⚠️ Degraded"
	case result.Success:
		return "✅ Success"
	default:
		return "❌ Failed"
	}
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.PipelineResult) {
	switch {
	case !result.Success:
		md.Cautionf(
			"The run failed after completing %d stage(s). See the failure section for recovery options.",
			result.StagesCompleted,
		)
	case result.RecoveredFromErrors > 0:
		md.Warningf(
			"The deck was produced, but %d stage(s) degraded to fallback behavior. Review the warnings before sharing.",
			result.RecoveredFromErrors,
		)
	case result.HasWarnings():
		md.Importantf(
			"The deck was produced with %d warning(s).",
			len(result.Warnings),
		)
	default:
		md.Tip("The deck was produced cleanly with no warnings.")
	}
	md.PlainText("")
}

// writeStages writes the per-stage outcome table and the duration chart.
func (w *MarkdownWriter) writeStages(md *markdown.Markdown, result *model.PipelineResult) {
	if len(result.StageResults) == 0 {
		return
	}

	md.H2("Stages")
	md.PlainText("")

	rows := make([][]string, len(result.StageResults))
	for i, r := range result.StageResults {
		rows[i] = []string{
			r.Name,
			stageOutcome(r),
			strconv.Itoa(r.Attempts),
			r.Duration.String(),
			strconv.Itoa(len(r.Warnings)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Stage", "Outcome", "Attempts", "Duration", "Warnings"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeOutcomeChart(md, result)
}

// stageOutcome returns the outcome cell text for a stage result.
func stageOutcome(r model.StageResult) string {
	switch {
	case r.Degraded:
		return "⚠️ degraded"
	case r.Success:
		return "✅ ok"
	default:
		return "❌ failed"
	}
}

// writeOutcomeChart writes a mermaid pie chart of stage outcomes.
func (w *MarkdownWriter) writeOutcomeChart(md *markdown.Markdown, result *model.PipelineResult) {
	var ok, degraded, failed int
	for _, r := range result.StageResults {
		switch {
		case r.Degraded:
			degraded++
		case r.Success:
			ok++
		default:
			failed++
		}
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Stage Outcomes"),
		piechart.WithShowData(true),
	)
	if ok > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(ok))
	}
	if degraded > 0 {
		chart.LabelAndIntValue("Degraded", uint64(degraded))
	}
	if failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeWarnings writes the aggregated warning list.
func (w *MarkdownWriter) writeWarnings(md *markdown.Markdown, result *model.PipelineResult) {
	if !result.HasWarnings() {
		return
	}

	md.H2("Warnings")
	md.PlainText("")
	md.BulletList(result.Warnings...)
	md.PlainText("")
}

// writeFailure writes the failure diagnostics with recovery pointers.
func (w *MarkdownWriter) writeFailure(md *markdown.Markdown, result *model.PipelineResult) {
	md.H2("Failure")
	md.PlainText("")

	for _, perr := range result.StructuredErrors {
		md.CodeBlocks(markdown.SyntaxHighlightText, perr.Format())
		md.PlainText("")
	}

	var pointers []string
	if result.LastSuccessfulStage != "" {
		pointers = append(pointers, "Last successful stage: `"+result.LastSuccessfulStage+"`")
	}
	if result.PartialResultsPath != "" {
		pointers = append(pointers, "Partial results: `"+result.PartialResultsPath+"`")
	}
	if result.CheckpointPath != "" {
		pointers = append(pointers, "Latest checkpoint: `"+result.CheckpointPath+"`")
	}
	if len(pointers) > 0 {
		md.BulletList(pointers...)
		md.PlainText("")
	}
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Summary generated by deckforge*")
}
