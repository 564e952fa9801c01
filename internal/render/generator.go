package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deckforge/deckforge/internal/model"
	"github.com/deckforge/deckforge/internal/template"
)

// Artifact wire format version. Bump when the layout changes shape.
const artifactVersion = "1"

// ErrNoDeck is returned when Generate receives a nil deck.
var ErrNoDeck = errors.New("no deck to generate")

// artifact is the on-disk shape of a generated deck.
type artifact struct {
	Version     string       `json:"version"`
	GeneratedAt time.Time    `json:"generated_at"`
	Template    templateInfo `json:"template"`
	Deck        *model.Deck  `json:"deck"`
}

type templateInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MonospaceBody bool   `json:"monospace_body"`
}

// Generator writes deck artifacts. The zero value is ready to use.
type Generator struct {
	now func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name identifies the generator in the manifest's collaborator log.
func (g *Generator) Name() string {
	return "builtin-generator"
}

// Generate serializes the deck with its template hints to outputPath and
// returns the written size in bytes. The parent directory is created if
// missing, and the write is atomic so a crash never leaves a half-written
// artifact behind.
func (g *Generator) Generate(d *model.Deck, templateID, outputPath string) (int64, error) {
	if d == nil {
		return 0, ErrNoDeck
	}

	tmpl, ok := template.Lookup(templateID)
	if !ok {
		tmpl, _ = template.Lookup(template.DefaultTemplateID)
	}

	art := artifact{
		Version:     artifactVersion,
		GeneratedAt: g.now().UTC(),
		Template: templateInfo{
			ID:            tmpl.ID,
			Name:          tmpl.Name,
			MonospaceBody: tmpl.MonospaceBody,
		},
		Deck: d,
	}

	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal deck artifact: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".deckforge-*.json")
	if err != nil {
		return 0, fmt.Errorf("create temporary artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()        //nolint:errcheck // Best effort cleanup
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return 0, fmt.Errorf("write deck artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return 0, fmt.Errorf("close deck artifact: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return 0, fmt.Errorf("chmod deck artifact: %w", err)
	}
	if err := os.Rename(tmpName, outputPath); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return 0, fmt.Errorf("finalize deck artifact: %w", err)
	}
	return int64(len(data)), nil
}
