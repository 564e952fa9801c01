package model

// SlideKind identifies the layout role of a slide.
type SlideKind string

const (
	// SlideTitle is the opening title slide.
	SlideTitle SlideKind = "title"

	// SlideSection is a section divider slide.
	SlideSection SlideKind = "section"

	// SlideContent is a regular content slide.
	SlideContent SlideKind = "content"
)

// Deck is the target schema: the document transformed into the shape the
// generator consumes. One Deck is produced per run by the transformation
// stage and carried through template selection, validation, and generation.
type Deck struct {
	// Title is the deck title, shown on the title slide.
	Title string `json:"title"`

	// Author is the deck author, when known.
	Author string `json:"author,omitempty"`

	// Slides are the slides in presentation order.
	Slides []Slide `json:"slides"`
}

// Slide is a single slide of the deck.
type Slide struct {
	// Kind identifies the slide's layout role.
	Kind SlideKind `json:"kind"`

	// Title is the slide title.
	Title string `json:"title"`

	// Blocks are the slide's content blocks, reusing the document block
	// vocabulary. Empty for title and section slides.
	Blocks []Block `json:"blocks,omitempty"`

	// Notes holds speaker notes, when the source provides them.
	Notes string `json:"notes,omitempty"`
}

// SlideCount returns the number of slides in the deck.
func (d *Deck) SlideCount() int {
	return len(d.Slides)
}

// ContentSlideCount returns the number of content slides, excluding the
// title slide and section dividers.
func (d *Deck) ContentSlideCount() int {
	n := 0
	for _, s := range d.Slides {
		if s.Kind == SlideContent {
			n++
		}
	}
	return n
}
