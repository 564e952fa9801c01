package model

// Severity represents the weight of a validation issue found in a deck.
// It lets the validator and report writers rank issues by how likely they
// are to produce a broken or misleading output artifact.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational issues with no impact on output.
	// Examples: empty speaker notes, unused template placeholders.
	SeverityInfo Severity = iota

	// SeverityLow indicates cosmetic issues the generator can absorb.
	// Examples: a slide title longer than the template's comfortable width.
	SeverityLow

	// SeverityMedium indicates issues that degrade the output quality.
	// Examples: a content slide with no blocks, duplicated slide titles.
	SeverityMedium

	// SeverityHigh indicates issues that likely produce a broken artifact.
	// Examples: a slide referencing a template region that does not exist.
	SeverityHigh

	// SeverityCritical indicates issues that make generation pointless.
	// Examples: a deck with zero slides, a missing deck title.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Issue is a single validation finding reported against a deck.
type Issue struct {
	// Code identifies the rule that produced the issue (e.g. "empty_slide").
	Code string `json:"code"`

	// Severity is the weight of the issue.
	Severity Severity `json:"severity"`

	// SeverityText is the string form of Severity, kept alongside the
	// numeric value so serialized issues stay readable without the Go type.
	SeverityText string `json:"severity_text"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Slide is the 1-based index of the offending slide, or 0 when the
	// issue applies to the deck as a whole.
	Slide int `json:"slide,omitempty"`
}

// ValidationReport is the validator's verdict on a deck.
type ValidationReport struct {
	// Passed is true when no issue at or above the failure threshold exists.
	Passed bool `json:"passed"`

	// Strict records whether strict mode was in effect for this run.
	Strict bool `json:"strict"`

	// Issues lists every finding, ordered as discovered.
	Issues []Issue `json:"issues"`
}

// CountBySeverity returns the number of issues with the given severity.
func (r *ValidationReport) CountBySeverity(s Severity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			count++
		}
	}
	return count
}

// WorstSeverity returns the highest severity present in the report.
// Returns SeverityInfo for an empty report.
func (r *ValidationReport) WorstSeverity() Severity {
	worst := SeverityInfo
	for _, issue := range r.Issues {
		if issue.Severity > worst {
			worst = issue.Severity
		}
	}
	return worst
}
