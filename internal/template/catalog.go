package template

// Template describes one built-in deck template.
type Template struct {
	// ID is the stable identifier recorded in stage data and manifests.
	ID string `json:"id"`

	// Name is the human-readable template name.
	Name string `json:"name"`

	// Description explains when the template is a good fit.
	Description string `json:"description"`

	// MonospaceBody indicates the template renders body text in a
	// monospace face, which suits code-heavy decks.
	MonospaceBody bool `json:"monospace_body"`

	// MaxBlocksPerSlide is the layout's comfortable block capacity;
	// the validator warns when a slide exceeds it.
	MaxBlocksPerSlide int `json:"max_blocks_per_slide"`
}

// DefaultTemplateID is the fallback template identifier.
const DefaultTemplateID = "plain"

// catalog holds the built-in templates keyed by ID.
//
// Design decision: The catalog is a compiled-in map rather than files on
// disk because the pipeline only needs stable identifiers and a few
// layout hints for validation, not rendering internals.
var catalog = map[string]Template{
	"plain": {
		ID:                "plain",
		Name:              "Plain",
		Description:       "Neutral layout that works for any content mix.",
		MaxBlocksPerSlide: 8,
	},
	"mono": {
		ID:                "mono",
		Name:              "Mono",
		Description:       "Monospace body text for code-heavy decks.",
		MonospaceBody:     true,
		MaxBlocksPerSlide: 6,
	},
	"briefing": {
		ID:                "briefing",
		Name:              "Briefing",
		Description:       "Large type for short decks meant to be skimmed.",
		MaxBlocksPerSlide: 4,
	},
	"gallery": {
		ID:                "gallery",
		Name:              "Gallery",
		Description:       "Image-first layout for visual decks.",
		MaxBlocksPerSlide: 3,
	},
}

// Lookup returns the template for an ID and whether it exists.
func Lookup(id string) (Template, bool) {
	t, ok := catalog[id]
	return t, ok
}

// IDs returns all known template IDs. Order is unspecified.
func IDs() []string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	return ids
}
