// Package main provides the entry point for the deckforge CLI.
//
// Deckforge converts structured documents (markdown, JSON outlines, HTML)
// into presentation deck artifacts through a resilient staged pipeline
// with checkpointing, retry, and graceful degradation.
//
// Usage:
//
//	deckforge run <input> <output>
//	deckforge run --resume-from validation <input> <output>
//
// See --help for all available options.
package main

// main is the entry point for deckforge.
func main() {
	Execute()
}
