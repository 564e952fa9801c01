package document

import (
	"encoding/json"
	"fmt"

	"github.com/deckforge/deckforge/internal/model"
)

// jsonOutline is the wire format of a JSON outline document. It mirrors
// the semantic structure closely but allows a shorthand where a section
// lists bare bullet strings instead of typed blocks.
type jsonOutline struct {
	Title    string            `json:"title"`
	Author   string            `json:"author"`
	Metadata map[string]string `json:"metadata"`
	Sections []jsonSection     `json:"sections"`
}

type jsonSection struct {
	Heading string      `json:"heading"`
	Level   int         `json:"level"`
	Bullets []string    `json:"bullets"`
	Blocks  []jsonBlock `json:"blocks"`
	Notes   string      `json:"notes"`
}

type jsonBlock struct {
	Kind     string `json:"kind"`
	Text     string `json:"text"`
	Language string `json:"language"`
	Indent   int    `json:"indent"`
	Ref      string `json:"ref"`
}

// parseJSONOutline decodes a JSON outline into the semantic structure.
func parseJSONOutline(raw []byte) (*model.Document, error) {
	var outline jsonOutline
	if err := json.Unmarshal(raw, &outline); err != nil {
		return nil, fmt.Errorf("invalid JSON outline: %w", err)
	}

	doc := &model.Document{
		Title:    outline.Title,
		Author:   outline.Author,
		Metadata: outline.Metadata,
	}
	if doc.Title == "" {
		doc.Title = "Untitled"
	}

	for _, s := range outline.Sections {
		level := s.Level
		if level == 0 {
			level = 2
		}
		section := model.Section{
			Heading: s.Heading,
			Level:   level,
			Notes:   s.Notes,
		}

		for _, b := range s.Bullets {
			section.Blocks = append(section.Blocks, model.Block{
				Kind: model.BlockBullet,
				Text: b,
			})
		}

		for _, b := range s.Blocks {
			kind, err := blockKind(b.Kind)
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", s.Heading, err)
			}
			section.Blocks = append(section.Blocks, model.Block{
				Kind:     kind,
				Text:     b.Text,
				Language: b.Language,
				Indent:   b.Indent,
				Ref:      b.Ref,
			})
		}

		doc.Sections = append(doc.Sections, section)
	}

	if doc.Sections == nil {
		doc.Sections = []model.Section{}
	}

	return doc, nil
}

// blockKind validates a block kind string from the outline.
func blockKind(kind string) (model.BlockKind, error) {
	switch model.BlockKind(kind) {
	case model.BlockParagraph, model.BlockBullet, model.BlockCode,
		model.BlockQuote, model.BlockImage:
		return model.BlockKind(kind), nil
	case "":
		return model.BlockParagraph, nil
	default:
		return "", fmt.Errorf("unknown block kind %q", kind)
	}
}
