package pipeline

import (
	"log/slog"

	"github.com/deckforge/deckforge/internal/deck"
	"github.com/deckforge/deckforge/internal/document"
	"github.com/deckforge/deckforge/internal/model"
	"github.com/deckforge/deckforge/internal/render"
	"github.com/deckforge/deckforge/internal/template"
	"github.com/deckforge/deckforge/internal/validate"
)

// Extractor parses raw input into a semantic document.
type Extractor interface {
	// Extract parses raw bytes of the given format into a Document.
	Extract(raw []byte, format model.Format) (*model.Document, error)

	// Name returns the implementation name for the manifest log.
	Name() string
}

// Transformer maps a semantic document onto the deck schema.
type Transformer interface {
	Transform(doc *model.Document) (*model.Deck, error)
	Name() string
}

// TemplateSelector picks the template for a deck. An explicit override
// wins when it names a known template; otherwise the selector decides
// from the deck's content.
type TemplateSelector interface {
	Select(d *model.Deck, override string) string
	Name() string
}

// Validator checks a deck against the structural schema rules.
type Validator interface {
	Validate(d *model.Deck, templateID string, strict bool) (*model.ValidationReport, error)
	Name() string
}

// Generator writes the output artifact and returns its size in bytes.
type Generator interface {
	Generate(d *model.Deck, templateID, outputPath string) (int64, error)
	Name() string
}

// Collaborators bundles the five stage implementations the orchestrator
// delegates to.
//
// Design decision: We use interfaces rather than function types because:
// 1. Implementations carry configuration state (bullet limits, casers)
// 2. Name() feeds the manifest's collaborator log
// 3. Tests swap in failing fakes without touching the orchestration
type Collaborators struct {
	Extractor   Extractor
	Transformer Transformer
	Selector    TemplateSelector
	Validator   Validator
	Generator   Generator
}

// DefaultCollaborators wires up the builtin implementations.
// maxBullets bounds bullets per content slide; zero means the
// transformer default.
func DefaultCollaborators(logger *slog.Logger, maxBullets int) Collaborators {
	var transformerOpts []deck.Option
	if maxBullets > 0 {
		transformerOpts = append(transformerOpts, deck.WithMaxBulletsPerSlide(maxBullets))
	}

	return Collaborators{
		Extractor:   document.NewExtractor(),
		Transformer: deck.NewTransformer(transformerOpts...),
		Selector:    template.NewSelector(template.WithLogger(logger)),
		Validator:   validate.NewValidator(),
		Generator:   render.NewGenerator(),
	}
}
