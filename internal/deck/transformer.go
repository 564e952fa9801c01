package deck

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deckforge/deckforge/internal/model"
)

// DefaultMaxBulletsPerSlide is how many bullet blocks fit on one slide
// before the transformer splits the section across continuation slides.
const DefaultMaxBulletsPerSlide = 6

// ErrNoDocument is returned when Transform receives a nil document.
var ErrNoDocument = errors.New("no document to transform")

// Transformer maps a Document onto the Deck schema.
type Transformer struct {
	// maxBullets is the slide-splitting threshold for bullet blocks.
	maxBullets int

	// titleCaser normalizes slide titles to title case.
	titleCaser cases.Caser
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithMaxBulletsPerSlide sets the slide-splitting threshold.
func WithMaxBulletsPerSlide(n int) Option {
	return func(t *Transformer) {
		if n > 0 {
			t.maxBullets = n
		}
	}
}

// NewTransformer creates a Transformer with default settings.
func NewTransformer(opts ...Option) *Transformer {
	t := &Transformer{
		maxBullets: DefaultMaxBulletsPerSlide,
		titleCaser: cases.Title(language.English, cases.NoLower),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name identifies the transformer in the manifest's collaborator log.
func (t *Transformer) Name() string {
	return "builtin-transformer"
}

// Transform maps the document onto the deck schema:
//   - a title slide from the document title and author
//   - a section divider slide for each level-1 section that has deeper
//     sections following it
//   - a content slide per section, split when it holds more bullet
//     blocks than the threshold
func (t *Transformer) Transform(doc *model.Document) (*model.Deck, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}

	d := &model.Deck{
		Title:  doc.Title,
		Author: doc.Author,
	}

	d.Slides = append(d.Slides, model.Slide{
		Kind:  model.SlideTitle,
		Title: doc.Title,
	})

	for _, section := range doc.Sections {
		title := t.slideTitle(section)

		// A heading with no content of its own acts as a divider.
		if len(section.Blocks) == 0 && section.Heading != "" {
			d.Slides = append(d.Slides, model.Slide{
				Kind:  model.SlideSection,
				Title: title,
			})
			continue
		}

		for i, blocks := range t.splitBlocks(section.Blocks) {
			slideTitle := title
			if i > 0 {
				slideTitle = title + " (cont.)"
			}
			slide := model.Slide{
				Kind:   model.SlideContent,
				Title:  slideTitle,
				Blocks: blocks,
			}
			if i == 0 {
				slide.Notes = section.Notes
			}
			d.Slides = append(d.Slides, slide)
		}
	}

	return d, nil
}

// slideTitle derives the slide title for a section.
func (t *Transformer) slideTitle(section model.Section) string {
	heading := strings.TrimSpace(section.Heading)
	if heading == "" {
		return "Overview"
	}
	return t.titleCaser.String(heading)
}

// splitBlocks splits a section's blocks into slide-sized chunks. Only
// bullet blocks count against the threshold; a long prose section stays
// on one slide since the generator wraps paragraphs itself.
func (t *Transformer) splitBlocks(blocks []model.Block) [][]model.Block {
	if len(blocks) == 0 {
		return nil
	}

	var (
		chunks  [][]model.Block
		current []model.Block
		bullets int
	)

	for _, b := range blocks {
		if b.Kind == model.BlockBullet {
			if bullets >= t.maxBullets {
				chunks = append(chunks, current)
				current = nil
				bullets = 0
			}
			bullets++
		}
		current = append(current, b)
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}

	return chunks
}
