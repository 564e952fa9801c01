// Package pipeline implements the staged document-to-deck pipeline.
//
// The pipeline runs six fixed stages in order: ingestion, extraction,
// transformation, template_selection, validation, and generation. The
// Orchestrator owns the run: it threads one StageData value through the
// stages, retries recoverable failures with exponential backoff,
// substitutes fallbacks for non-critical failures, checkpoints state
// after every successful stage, and dumps partial results when a run
// fails unrecoverably.
//
// Stage work is delegated to collaborator interfaces (Extractor,
// Transformer, TemplateSelector, Validator, Generator) so alternative
// implementations can be plugged in without touching the orchestration.
package pipeline
