package validate

import (
	"errors"
	"fmt"

	"github.com/deckforge/deckforge/internal/model"
	"github.com/deckforge/deckforge/internal/template"
)

// ErrNoDeck is returned when Validate receives a nil deck.
var ErrNoDeck = errors.New("no deck to validate")

// Validator checks a deck against the structural schema rules.
// The zero value is ready to use.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Name identifies the validator in the manifest's collaborator log.
func (v *Validator) Name() string {
	return "builtin-validator"
}

// Validate checks the deck and returns the verdict with all issues found.
// In strict mode any issue at SeverityMedium or above fails the deck;
// otherwise only SeverityHigh and above fail it.
func (v *Validator) Validate(d *model.Deck, templateID string, strict bool) (*model.ValidationReport, error) {
	if d == nil {
		return nil, ErrNoDeck
	}

	report := &model.ValidationReport{Strict: strict}
	add := func(issue model.Issue) {
		issue.SeverityText = issue.Severity.String()
		report.Issues = append(report.Issues, issue)
	}

	if d.Title == "" {
		add(model.Issue{
			Code:     "missing_title",
			Severity: model.SeverityCritical,
			Message:  "deck has no title",
		})
	}

	if len(d.Slides) == 0 {
		add(model.Issue{
			Code:     "empty_deck",
			Severity: model.SeverityCritical,
			Message:  "deck has no slides",
		})
	}

	tmpl, templateKnown := template.Lookup(templateID)
	if !templateKnown {
		add(model.Issue{
			Code:     "unknown_template",
			Severity: model.SeverityHigh,
			Message:  fmt.Sprintf("selected template %q is not in the catalog", templateID),
		})
	}

	seenTitles := make(map[string]int)
	for i, slide := range d.Slides {
		num := i + 1

		if slide.Title == "" && slide.Kind != model.SlideContent {
			add(model.Issue{
				Code:     "untitled_slide",
				Severity: model.SeverityMedium,
				Message:  fmt.Sprintf("%s slide has no title", slide.Kind),
				Slide:    num,
			})
		}

		if slide.Kind == model.SlideContent && len(slide.Blocks) == 0 {
			add(model.Issue{
				Code:     "empty_slide",
				Severity: model.SeverityMedium,
				Message:  "content slide has no blocks",
				Slide:    num,
			})
		}

		if templateKnown && len(slide.Blocks) > tmpl.MaxBlocksPerSlide {
			add(model.Issue{
				Code:     "overfull_slide",
				Severity: model.SeverityLow,
				Message: fmt.Sprintf("slide holds %d blocks, template %q is laid out for %d",
					len(slide.Blocks), tmpl.ID, tmpl.MaxBlocksPerSlide),
				Slide: num,
			})
		}

		if slide.Kind == model.SlideContent && slide.Title != "" {
			if first, dup := seenTitles[slide.Title]; dup {
				add(model.Issue{
					Code:     "duplicate_title",
					Severity: model.SeverityInfo,
					Message:  fmt.Sprintf("slide title duplicates slide %d", first),
					Slide:    num,
				})
			} else {
				seenTitles[slide.Title] = num
			}
		}

		for _, b := range slide.Blocks {
			if b.Kind == model.BlockImage && b.Ref == "" {
				add(model.Issue{
					Code:     "image_without_ref",
					Severity: model.SeverityHigh,
					Message:  "image block has no reference",
					Slide:    num,
				})
			}
		}
	}

	threshold := model.SeverityHigh
	if strict {
		threshold = model.SeverityMedium
	}
	report.Passed = true
	for _, issue := range report.Issues {
		if issue.Severity >= threshold {
			report.Passed = false
			break
		}
	}

	return report, nil
}
