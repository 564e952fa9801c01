// Package log provides structured logging helpers for deckforge.
//
// The pipeline logs fragments of the documents it processes (stage inputs,
// extracted headings, validation messages). SanitizeHandler keeps that
// output usable and shareable: oversized attribute values are truncated so
// a pasted document cannot flood the terminal, and paths under the user's
// home directory are shortened to ~ so logs can be attached to bug reports
// without leaking the local directory layout.
package log
