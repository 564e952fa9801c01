package template

import (
	"log/slog"
	"testing"

	"github.com/deckforge/deckforge/internal/model"
)

// TestLookup verifies catalog membership.
func TestLookup(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"plain", "mono", "briefing", "gallery"} {
		tmpl, ok := Lookup(id)
		if !ok {
			t.Errorf("expected template %q to exist", id)
			continue
		}
		if tmpl.ID != id {
			t.Errorf("expected ID %q, got %q", id, tmpl.ID)
		}
		if tmpl.MaxBlocksPerSlide <= 0 {
			t.Errorf("expected positive block capacity for %q", id)
		}
	}

	if _, ok := Lookup("corporate"); ok {
		t.Error("expected unknown ID to miss")
	}
}

// TestIDs verifies the catalog enumeration.
func TestIDs(t *testing.T) {
	t.Parallel()

	ids := IDs()
	if len(ids) != 4 {
		t.Fatalf("expected 4 template IDs, got %d", len(ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if _, ok := Lookup(id); !ok {
			t.Errorf("IDs returned unknown template %q", id)
		}
		if seen[id] {
			t.Errorf("duplicate ID %q", id)
		}
		seen[id] = true
	}
}

func contentDeck(slides ...model.Slide) *model.Deck {
	all := append([]model.Slide{{Kind: model.SlideTitle, Title: "T"}}, slides...)
	return &model.Deck{Title: "T", Slides: all}
}

// TestSelect verifies override handling and the content heuristics.
func TestSelect(t *testing.T) {
	t.Parallel()

	proseSlide := model.Slide{
		Kind:  model.SlideContent,
		Title: "Prose",
		Blocks: []model.Block{
			{Kind: model.BlockParagraph, Text: "words"},
			{Kind: model.BlockBullet, Text: "point"},
		},
	}
	codeSlide := model.Slide{
		Kind:   model.SlideContent,
		Title:  "Code",
		Blocks: []model.Block{{Kind: model.BlockCode, Text: "x := 1"}},
	}
	imageSlide := model.Slide{
		Kind:   model.SlideContent,
		Title:  "Pics",
		Blocks: []model.Block{{Kind: model.BlockImage, Ref: "a.png"}},
	}

	longDeck := contentDeck()
	for i := 0; i < 6; i++ {
		longDeck.Slides = append(longDeck.Slides, proseSlide)
	}

	tests := []struct {
		name     string
		deck     *model.Deck
		override string
		want     string
	}{
		{"valid override wins", longDeck, "gallery", "gallery"},
		{"unknown override falls through", contentDeck(codeSlide), "corporate", "mono"},
		{"nil deck", nil, "", DefaultTemplateID},
		{"empty deck", &model.Deck{Title: "T"}, "", DefaultTemplateID},
		{"code blocks pick mono", contentDeck(proseSlide, codeSlide), "", "mono"},
		{"image-heavy picks gallery", contentDeck(imageSlide, imageSlide), "", "gallery"},
		{"short deck picks briefing", contentDeck(proseSlide), "", "briefing"},
		{"long prose deck picks default", longDeck, "", DefaultTemplateID},
	}

	s := NewSelector(WithLogger(slog.New(slog.DiscardHandler)))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := s.Select(tt.deck, tt.override); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestSelectorName verifies the manifest collaborator name.
func TestSelectorName(t *testing.T) {
	t.Parallel()

	if got := NewSelector().Name(); got != "builtin-selector" {
		t.Errorf("expected 'builtin-selector', got %q", got)
	}
}
