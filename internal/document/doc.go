// Package document implements the Extractor collaborator: it turns the
// raw input (markdown, JSON outline, or HTML) into the format-independent
// semantic Document structure consumed by the transformation stage.
//
// Format detection is content-based, so the pipeline does not depend on
// file extensions. All extractors are deterministic: the same input always
// produces the same Document, which is what makes checkpoint resume
// reproducible.
package document
