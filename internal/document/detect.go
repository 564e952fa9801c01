package document

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/deckforge/deckforge/internal/model"
)

// DetectFormat sniffs the input format from content alone.
//
// Design decision: Detection is content-based rather than extension-based
// because the pipeline accepts input from stdin-like sources and temp
// files where extensions lie or are absent. The checks are ordered from
// cheapest and most reliable to weakest:
//  1. Valid JSON object or array -> JSON outline
//  2. Doctype or <html marker -> HTML
//  3. Everything else -> markdown (plain text is valid markdown)
func DetectFormat(raw []byte) model.Format {
	trimmed := bytes.TrimLeftFunc(raw, unicode.IsSpace)
	if len(trimmed) == 0 {
		return model.FormatUnknown
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		if json.Valid(trimmed) {
			return model.FormatJSON
		}
	}

	head := strings.ToLower(string(trimmed[:min(len(trimmed), 256)]))
	if strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") {
		return model.FormatHTML
	}

	return model.FormatMarkdown
}
