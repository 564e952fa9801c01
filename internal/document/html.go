package document

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/deckforge/deckforge/internal/model"
)

// parseHTML converts an HTML document into the semantic structure.
// Headings (h1-h6) delimit sections, li/p/pre/blockquote/img elements
// become blocks.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because:
//  1. It correctly handles malformed HTML
//  2. Provides a proper DOM-like structure to walk
//  3. More maintainable than complex regex patterns
func parseHTML(raw []byte) (*model.Document, error) {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid HTML: %w", err)
	}

	doc := &model.Document{}
	current := &model.Section{Level: 0}

	flushSection := func() {
		if current.Heading != "" || len(current.Blocks) > 0 {
			doc.Sections = append(doc.Sections, *current)
		}
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if doc.Title == "" {
					doc.Title = textContent(n)
				}
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				level := int(n.Data[1] - '0')
				text := textContent(n)
				if n.Data == "h1" && doc.Title == "" && len(doc.Sections) == 0 &&
					current.Heading == "" && len(current.Blocks) == 0 {
					doc.Title = text
					return
				}
				flushSection()
				current = &model.Section{Heading: text, Level: level}
				return
			case "li":
				if text := textContent(n); text != "" {
					current.Blocks = append(current.Blocks, model.Block{
						Kind: model.BlockBullet,
						Text: text,
					})
				}
				return
			case "pre":
				current.Blocks = append(current.Blocks, model.Block{
					Kind: model.BlockCode,
					Text: rawTextContent(n),
				})
				return
			case "blockquote":
				if text := textContent(n); text != "" {
					current.Blocks = append(current.Blocks, model.Block{
						Kind: model.BlockQuote,
						Text: text,
					})
				}
				return
			case "img":
				current.Blocks = append(current.Blocks, model.Block{
					Kind: model.BlockImage,
					Text: attr(n, "alt"),
					Ref:  attr(n, "src"),
				})
				return
			case "p":
				if text := textContent(n); text != "" {
					current.Blocks = append(current.Blocks, model.Block{
						Kind: model.BlockParagraph,
						Text: text,
					})
				}
				return
			case "script", "style":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	flushSection()

	if doc.Title == "" {
		doc.Title = "Untitled"
	}
	if doc.Sections == nil {
		doc.Sections = []model.Section{}
	}

	return doc, nil
}

// textContent collects the whitespace-normalized text under a node.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// rawTextContent collects text under a node without normalizing
// whitespace. Used for code blocks where indentation matters.
func rawTextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Trim(b.String(), "\n")
}

// attr returns the value of the named attribute, or empty string.
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
