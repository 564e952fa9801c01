package document

import (
	"errors"
	"fmt"

	"github.com/deckforge/deckforge/internal/model"
)

// ErrEmptyInput is returned when the input contains no extractable content.
var ErrEmptyInput = errors.New("input document is empty")

// Extractor parses raw input into the semantic Document structure.
// The zero value is ready to use.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Name identifies the extractor in the manifest's collaborator log.
func (e *Extractor) Name() string {
	return "builtin-extractor"
}

// Extract parses raw input of the given format into a Document.
// FormatUnknown falls back to the markdown parser, which accepts any
// plain text.
func (e *Extractor) Extract(raw []byte, format model.Format) (*model.Document, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyInput
	}

	switch format {
	case model.FormatJSON:
		return parseJSONOutline(raw)
	case model.FormatHTML:
		return parseHTML(raw)
	case model.FormatMarkdown, model.FormatUnknown:
		return parseMarkdown(raw)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

// FallbackDocument builds a minimal single-section document from raw
// text. The orchestrator substitutes it when the extraction stage is
// configured non-critical and the extractor fails: the deck degrades to
// one content slide per paragraph instead of aborting the run.
func FallbackDocument(raw []byte) *model.Document {
	doc := &model.Document{
		Title: "Untitled",
		Sections: []model.Section{
			{Level: 0},
		},
	}

	for _, para := range splitParagraphs(string(raw)) {
		doc.Sections[0].Blocks = append(doc.Sections[0].Blocks, model.Block{
			Kind: model.BlockParagraph,
			Text: para,
		})
	}

	return doc
}
