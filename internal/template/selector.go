package template

import (
	"log/slog"

	"github.com/deckforge/deckforge/internal/model"
)

// briefingThreshold is the content-slide count at or below which the
// selector prefers the briefing template.
const briefingThreshold = 4

// Selector picks a template for a deck.
type Selector struct {
	logger *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets a custom logger for the selector.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		s.logger = logger
	}
}

// NewSelector creates a Selector.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name identifies the selector in the manifest's collaborator log.
func (s *Selector) Name() string {
	return "builtin-selector"
}

// Select returns the template ID for the deck. A valid override always
// wins. An unknown override is logged and ignored, since selection must
// never fail over styling, and the selector falls back to a
// content-based choice:
//   - decks containing code blocks get the mono template
//   - decks dominated by images get the gallery template
//   - short decks get the briefing template
//   - everything else gets the default
func (s *Selector) Select(d *model.Deck, override string) string {
	if override != "" {
		if _, ok := Lookup(override); ok {
			return override
		}
		s.logger.Warn("unknown template override, falling back",
			"override", override,
			"fallback", DefaultTemplateID,
		)
	}

	if d == nil || len(d.Slides) == 0 {
		return DefaultTemplateID
	}

	var codeBlocks, imageBlocks, totalBlocks int
	for _, slide := range d.Slides {
		for _, b := range slide.Blocks {
			totalBlocks++
			switch b.Kind {
			case model.BlockCode:
				codeBlocks++
			case model.BlockImage:
				imageBlocks++
			}
		}
	}

	switch {
	case codeBlocks > 0:
		return "mono"
	case totalBlocks > 0 && imageBlocks*2 >= totalBlocks:
		return "gallery"
	case d.ContentSlideCount() <= briefingThreshold:
		return "briefing"
	default:
		return DefaultTemplateID
	}
}
