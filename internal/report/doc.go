// Package report renders pipeline run results for humans and tools.
//
// Three formats are supported: a plain-text summary for terminals, JSON
// for programmatic consumption, and Markdown for documentation. All
// writers implement the same Writer interface so the CLI can combine
// terminal and file output freely.
package report
