package config

// DocumentConfig holds per-document overrides loaded from the .deckforge
// configuration file. This allows tuning the pipeline per source document
// without extra CLI flags.
type DocumentConfig struct {
	// Theme overrides the template for this document.
	Theme string `yaml:"theme,omitempty"`

	// MaxBulletsPerSlide overrides how many bullet blocks the transformer
	// packs onto one slide before splitting. Zero means use the default.
	MaxBulletsPerSlide int `yaml:"maxBulletsPerSlide,omitempty"`

	// Strict promotes validation warnings to failures for this document.
	Strict bool `yaml:"strict,omitempty"`
}

// File represents the structure of the .deckforge configuration file.
type File struct {
	// Documents maps input paths (as given on the command line) to their
	// per-document configuration.
	Documents map[string]DocumentConfig `yaml:"documents,omitempty"`

	// Defaults contains configuration applied to all documents unless
	// overridden per document.
	Defaults DocumentConfig `yaml:"defaults,omitempty"`
}

// GetDocumentConfig returns the configuration for a specific input path,
// merging document-specific settings over the defaults.
func (cf *File) GetDocumentConfig(path string) DocumentConfig {
	result := cf.Defaults

	if docConfig, ok := cf.Documents[path]; ok {
		if docConfig.Theme != "" {
			result.Theme = docConfig.Theme
		}
		if docConfig.MaxBulletsPerSlide != 0 {
			result.MaxBulletsPerSlide = docConfig.MaxBulletsPerSlide
		}
		if docConfig.Strict {
			result.Strict = true
		}
	}

	return result
}
