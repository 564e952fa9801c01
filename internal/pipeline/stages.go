package pipeline

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/deckforge/deckforge/internal/document"
	"github.com/deckforge/deckforge/internal/model"
	"github.com/deckforge/deckforge/internal/template"
)

// stages builds the six stage descriptors for this run. The orchestrator
// executes them in slice order, which matches model.StageOrder.
//
// Criticality follows the degradation policy: ingestion, transformation,
// and generation have no sensible fallback and abort the run; extraction,
// template_selection, and validation degrade. Strict mode promotes
// validation to critical.
func (o *Orchestrator) stages() []Stage {
	return []Stage{
		{
			Name:     model.StageIngestion,
			Kind:     model.KindCritical,
			Critical: true,
			Run:      o.runIngestion,
			InputHash: func(data *model.StageData) string {
				return hashBytes([]byte(data.SourcePath))
			},
			OutputHash: func(data *model.StageData) string {
				return hashBytes(data.RawInput)
			},
		},
		{
			Name:     model.StageExtraction,
			Kind:     model.KindExtraction,
			Critical: false,
			Run:      o.runExtraction,
			Fallback: o.fallbackExtraction,
			InputHash: func(data *model.StageData) string {
				return hashBytes(data.RawInput)
			},
			OutputHash: func(data *model.StageData) string {
				return hashJSON(data.Document)
			},
		},
		{
			Name:     model.StageTransformation,
			Kind:     model.KindTransformation,
			Critical: true,
			Run:      o.runTransformation,
			InputHash: func(data *model.StageData) string {
				return hashJSON(data.Document)
			},
			OutputHash: func(data *model.StageData) string {
				return hashJSON(data.Deck)
			},
		},
		{
			Name:     model.StageTemplateSelection,
			Kind:     model.KindTransformation,
			Critical: false,
			Run:      o.runTemplateSelection,
			Fallback: o.fallbackTemplateSelection,
			InputHash: func(data *model.StageData) string {
				return hashJSON(data.Deck)
			},
			OutputHash: func(data *model.StageData) string {
				return hashBytes([]byte(data.TemplateID))
			},
		},
		{
			Name:     model.StageValidation,
			Kind:     model.KindValidation,
			Critical: o.cfg.Strict,
			Run:      o.runValidation,
			Fallback: o.fallbackValidation,
			InputHash: func(data *model.StageData) string {
				return hashJSON(data.Deck)
			},
			OutputHash: func(data *model.StageData) string {
				return hashJSON(data.Validation)
			},
		},
		{
			Name:     model.StageGeneration,
			Kind:     model.KindGeneration,
			Critical: true,
			Run:      o.runGeneration,
			InputHash: func(data *model.StageData) string {
				return hashJSON(data.Deck)
			},
			OutputHash: func(data *model.StageData) string {
				return hashBytes([]byte(data.ArtifactPath))
			},
		},
	}
}

// runIngestion reads the source file and sniffs its format.
func (o *Orchestrator) runIngestion(_ context.Context, data *model.StageData, res *model.StageResult) error {
	raw, err := os.ReadFile(data.SourcePath) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return model.NewPipelineError(model.StageIngestion, model.KindCritical, "cannot read input file", err).
			WithContext("path", data.SourcePath)
	}
	if len(raw) == 0 {
		return model.NewPipelineError(model.StageIngestion, model.KindCritical, "input file is empty", nil).
			WithContext("path", data.SourcePath)
	}

	data.RawInput = raw
	data.DetectedFormat = document.DetectFormat(raw)

	o.tracker.CreateProvenance(data.SourcePath, raw, data.DetectedFormat)

	res.Metadata = map[string]string{
		"format":     string(data.DetectedFormat),
		"size_bytes": strconv.Itoa(len(raw)),
	}
	if data.DetectedFormat == model.FormatUnknown {
		res.Warnings = append(res.Warnings, "input format could not be detected, treating as markdown")
	}
	return nil
}

// runExtraction parses the raw input into the semantic document.
func (o *Orchestrator) runExtraction(_ context.Context, data *model.StageData, res *model.StageResult) error {
	o.tracker.RecordCollaborator(o.collab.Extractor.Name())

	doc, err := o.collab.Extractor.Extract(data.RawInput, data.DetectedFormat)
	if err != nil {
		return model.NewPipelineError(model.StageExtraction, model.KindExtraction, "cannot parse input document", err).
			WithContext("format", string(data.DetectedFormat))
	}

	data.Document = doc
	res.Metadata = map[string]string{
		"sections": strconv.Itoa(len(doc.Sections)),
	}
	if doc.Title == "" {
		res.Warnings = append(res.Warnings, "document has no title")
	}
	return nil
}

// fallbackExtraction substitutes a flat single-section document built
// from the raw paragraphs, so the run continues with reduced structure.
func (o *Orchestrator) fallbackExtraction(data *model.StageData, res *model.StageResult) {
	data.Document = document.FallbackDocument(data.RawInput)
	res.Warnings = append(res.Warnings, "extraction degraded: structure flattened to plain paragraphs")
}

// runTransformation maps the document onto the deck schema.
func (o *Orchestrator) runTransformation(_ context.Context, data *model.StageData, res *model.StageResult) error {
	o.tracker.RecordCollaborator(o.collab.Transformer.Name())

	d, err := o.collab.Transformer.Transform(data.Document)
	if err != nil {
		return model.NewPipelineError(model.StageTransformation, model.KindTransformation, "cannot map document to deck", err)
	}

	data.Deck = d
	o.tracker.SetSlidesProduced(d.SlideCount())
	res.Metadata = map[string]string{
		"slides":         strconv.Itoa(d.SlideCount()),
		"content_slides": strconv.Itoa(d.ContentSlideCount()),
	}
	return nil
}

// runTemplateSelection picks the template, honoring the theme override.
func (o *Orchestrator) runTemplateSelection(_ context.Context, data *model.StageData, res *model.StageResult) error {
	o.tracker.RecordCollaborator(o.collab.Selector.Name())

	id := o.collab.Selector.Select(data.Deck, o.cfg.Theme)
	if _, ok := template.Lookup(id); !ok {
		return model.NewPipelineError(model.StageTemplateSelection, model.KindTransformation,
			fmt.Sprintf("selector returned unknown template %q", id), nil)
	}

	data.TemplateID = id
	if o.cfg.Theme != "" && id != o.cfg.Theme {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("requested theme %q is unknown, selected %q instead", o.cfg.Theme, id))
	}
	res.Metadata = map[string]string{"template": id}
	return nil
}

// fallbackTemplateSelection substitutes the default template.
func (o *Orchestrator) fallbackTemplateSelection(data *model.StageData, res *model.StageResult) {
	data.TemplateID = template.DefaultTemplateID
	res.Warnings = append(res.Warnings,
		fmt.Sprintf("template selection degraded: using default template %q", template.DefaultTemplateID))
}

// runValidation checks the deck against the schema rules. In strict mode
// a failed verdict fails the stage; otherwise issues surface as warnings.
func (o *Orchestrator) runValidation(_ context.Context, data *model.StageData, res *model.StageResult) error {
	o.tracker.RecordCollaborator(o.collab.Validator.Name())

	report, err := o.collab.Validator.Validate(data.Deck, data.TemplateID, o.cfg.Strict)
	if err != nil {
		return model.NewPipelineError(model.StageValidation, model.KindValidation, "validator failed", err)
	}

	data.Validation = report
	o.tracker.SetQuality(report)

	for _, issue := range report.Issues {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("validation %s [%s]: %s", issue.SeverityText, issue.Code, issue.Message))
	}
	res.Metadata = map[string]string{
		"issues": strconv.Itoa(len(report.Issues)),
		"passed": strconv.FormatBool(report.Passed),
	}

	if !report.Passed {
		perr := model.NewPipelineError(model.StageValidation, model.KindValidation,
			fmt.Sprintf("deck failed validation with %d issue(s)", len(report.Issues)), nil).
			WithContext("worst_severity", report.WorstSeverity().String())
		if !o.cfg.Strict {
			// Lenient mode: record the verdict but let the run continue.
			res.Warnings = append(res.Warnings, perr.Message)
			return nil
		}
		return perr
	}
	return nil
}

// fallbackValidation substitutes an unchecked verdict. The deck ships,
// but the manifest records that validation never ran to completion.
func (o *Orchestrator) fallbackValidation(data *model.StageData, res *model.StageResult) {
	data.Validation = &model.ValidationReport{Passed: true, Strict: o.cfg.Strict}
	o.tracker.SetQuality(data.Validation)
	res.Warnings = append(res.Warnings, "validation degraded: deck shipped without a completed check")
}

// runGeneration writes the output artifact.
func (o *Orchestrator) runGeneration(_ context.Context, data *model.StageData, res *model.StageResult) error {
	o.tracker.RecordCollaborator(o.collab.Generator.Name())

	size, err := o.collab.Generator.Generate(data.Deck, data.TemplateID, o.outputPath)
	if err != nil {
		return model.NewPipelineError(model.StageGeneration, model.KindGeneration, "cannot write output artifact", err).
			WithContext("output", o.outputPath)
	}

	data.ArtifactPath = o.outputPath
	data.ArtifactSize = size
	o.tracker.SetOutput(o.outputPath, size)

	res.Metadata = map[string]string{
		"artifact":   o.outputPath,
		"size_bytes": strconv.FormatInt(size, 10),
	}
	return nil
}
