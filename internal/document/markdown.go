package document

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deckforge/deckforge/internal/model"
)

// frontMatterDelimiter separates YAML front matter from the body.
const frontMatterDelimiter = "---"

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletRe  = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])\s+(.*)$`)
	imageRe   = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]+)\)\s*$`)
	fenceRe   = regexp.MustCompile("^```\\s*(\\S*)\\s*$")
)

// parseMarkdown converts a markdown document into the semantic structure.
// The parser covers the outline subset that maps onto slides: headings,
// bullet and numbered lists, fenced code blocks, block quotes, images,
// and paragraphs. Inline formatting is deliberately left untouched; the
// generator decides how to render emphasis.
func parseMarkdown(raw []byte) (*model.Document, error) {
	body, meta, err := splitFrontMatter(string(raw))
	if err != nil {
		return nil, err
	}

	doc := &model.Document{Metadata: map[string]string{}}
	applyFrontMatter(doc, meta)

	// The implicit leading section collects content before the first
	// heading.
	current := &model.Section{Level: 0}

	var (
		inFence   bool
		fenceLang string
		fence     []string
		paragraph []string
	)

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		current.Blocks = append(current.Blocks, model.Block{
			Kind: model.BlockParagraph,
			Text: strings.Join(paragraph, " "),
		})
		paragraph = nil
	}

	flushSection := func() {
		if current.Heading != "" || len(current.Blocks) > 0 {
			doc.Sections = append(doc.Sections, *current)
		}
	}

	for line := range strings.Lines(body) {
		line = strings.TrimRight(line, "\n")

		if m := fenceRe.FindStringSubmatch(line); m != nil {
			if inFence {
				current.Blocks = append(current.Blocks, model.Block{
					Kind:     model.BlockCode,
					Text:     strings.Join(fence, "\n"),
					Language: fenceLang,
				})
				inFence = false
				fence = nil
				fenceLang = ""
			} else {
				flushParagraph()
				inFence = true
				fenceLang = m[1]
			}
			continue
		}
		if inFence {
			fence = append(fence, line)
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			flushParagraph()
			level := len(m[1])
			text := strings.TrimSpace(m[2])

			// The first top-level heading becomes the document title
			// rather than a section, unless front matter already set one.
			if level == 1 && doc.Title == "" && len(doc.Sections) == 0 &&
				current.Heading == "" && len(current.Blocks) == 0 {
				doc.Title = text
				continue
			}

			flushSection()
			current = &model.Section{Heading: text, Level: level}
			continue
		}

		if m := bulletRe.FindStringSubmatch(line); m != nil {
			flushParagraph()
			current.Blocks = append(current.Blocks, model.Block{
				Kind:   model.BlockBullet,
				Text:   strings.TrimSpace(m[3]),
				Indent: len(m[1]) / 2,
			})
			continue
		}

		if m := imageRe.FindStringSubmatch(line); m != nil {
			flushParagraph()
			current.Blocks = append(current.Blocks, model.Block{
				Kind: model.BlockImage,
				Text: m[1],
				Ref:  m[2],
			})
			continue
		}

		if strings.HasPrefix(line, ">") {
			flushParagraph()
			current.Blocks = append(current.Blocks, model.Block{
				Kind: model.BlockQuote,
				Text: strings.TrimSpace(strings.TrimPrefix(line, ">")),
			})
			continue
		}

		if strings.TrimSpace(line) == "" {
			flushParagraph()
			continue
		}

		paragraph = append(paragraph, strings.TrimSpace(line))
	}

	// An unterminated fence is treated as a code block to the end of the
	// document rather than an error; markdown renderers do the same.
	if inFence {
		current.Blocks = append(current.Blocks, model.Block{
			Kind:     model.BlockCode,
			Text:     strings.Join(fence, "\n"),
			Language: fenceLang,
		})
	}
	flushParagraph()
	flushSection()

	if doc.Title == "" {
		doc.Title = "Untitled"
	}
	if len(doc.Metadata) == 0 {
		doc.Metadata = nil
	}
	if doc.Sections == nil {
		doc.Sections = []model.Section{}
	}

	return doc, nil
}

// splitFrontMatter separates optional YAML front matter from the body.
// Front matter must start on the first line.
func splitFrontMatter(content string) (body string, meta map[string]string, err error) {
	if !strings.HasPrefix(content, frontMatterDelimiter+"\n") &&
		content != frontMatterDelimiter {
		return content, nil, nil
	}

	rest := strings.TrimPrefix(content, frontMatterDelimiter+"\n")
	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		// No closing delimiter: treat the whole document as body.
		return content, nil, nil
	}

	raw := rest[:end]
	body = rest[end+len("\n"+frontMatterDelimiter):]
	body = strings.TrimPrefix(body, "\n")

	var parsed map[string]any
	if err := yaml.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", nil, fmt.Errorf("invalid front matter: %w", err)
	}

	meta = make(map[string]string, len(parsed))
	for k, v := range parsed {
		meta[k] = fmt.Sprintf("%v", v)
	}
	return body, meta, nil
}

// applyFrontMatter moves well-known front-matter keys into first-class
// document fields and keeps the rest as metadata.
func applyFrontMatter(doc *model.Document, meta map[string]string) {
	for k, v := range meta {
		switch strings.ToLower(k) {
		case "title":
			doc.Title = v
		case "author":
			doc.Author = v
		default:
			doc.Metadata[k] = v
		}
	}
}

// splitParagraphs splits plain text on blank lines.
func splitParagraphs(text string) []string {
	var paras []string
	for _, chunk := range strings.Split(text, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		paras = append(paras, strings.Join(strings.Fields(chunk), " "))
	}
	return paras
}
