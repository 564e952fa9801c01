package model

// Format identifies the detected input format of a source document.
type Format string

const (
	// FormatMarkdown is a markdown document, optionally with YAML front matter.
	FormatMarkdown Format = "markdown"

	// FormatJSON is a JSON outline document.
	FormatJSON Format = "json"

	// FormatHTML is an HTML document.
	FormatHTML Format = "html"

	// FormatUnknown is returned when detection fails; the extractor treats
	// the input as plain text in that case.
	FormatUnknown Format = "unknown"
)

// Document is the semantic structure extracted from the raw input.
// It is format-independent: the markdown, JSON, and HTML extractors all
// produce the same shape.
type Document struct {
	// Title is the document title, taken from front matter, the first
	// top-level heading, or the outline's title field.
	Title string `json:"title"`

	// Author is the document author, when the source declares one.
	Author string `json:"author,omitempty"`

	// Metadata holds remaining front-matter or outline fields that do not
	// map to a first-class field.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Sections are the top-level units of the document, in source order.
	Sections []Section `json:"sections"`
}

// Section is one heading-delimited unit of a document.
type Section struct {
	// Heading is the section heading text. May be empty for leading
	// content that appears before the first heading.
	Heading string `json:"heading"`

	// Level is the heading level (1 for top-level). 0 for the implicit
	// leading section.
	Level int `json:"level"`

	// Blocks are the content blocks of the section, in source order.
	Blocks []Block `json:"blocks"`

	// Notes holds speaker notes attached to the section, when the source
	// format supports them (JSON outline).
	Notes string `json:"notes,omitempty"`
}

// BlockKind identifies the kind of a content block.
type BlockKind string

const (
	// BlockParagraph is a run of plain text.
	BlockParagraph BlockKind = "paragraph"

	// BlockBullet is one item of a bulleted or numbered list.
	BlockBullet BlockKind = "bullet"

	// BlockCode is a fenced or indented code block.
	BlockCode BlockKind = "code"

	// BlockQuote is a block quotation.
	BlockQuote BlockKind = "quote"

	// BlockImage is an image reference.
	BlockImage BlockKind = "image"
)

// Block is a single content unit inside a section.
type Block struct {
	// Kind identifies how the block should be rendered.
	Kind BlockKind `json:"kind"`

	// Text is the block content. For images this is the alt text.
	Text string `json:"text"`

	// Language is the syntax hint for code blocks.
	Language string `json:"language,omitempty"`

	// Indent is the nesting depth for bullet blocks (0 for top level).
	Indent int `json:"indent,omitempty"`

	// Ref is the target for image blocks.
	Ref string `json:"ref,omitempty"`
}

// BlockCount returns the total number of blocks across all sections.
func (d *Document) BlockCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Blocks)
	}
	return n
}
