// Package config provides configuration structures and utilities for
// deckforge. It defines the immutable per-run pipeline configuration,
// validation of that configuration, and the optional .deckforge YAML file
// with per-document overrides.
package config
