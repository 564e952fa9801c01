package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// MaxValueLen is the longest attribute value emitted before truncation.
// Stage inputs and extracted text can be whole documents; anything longer
// than this is noise in a log line.
const MaxValueLen = 256

// truncationMark is appended to truncated values.
const truncationMark = "...(truncated)"

// SanitizeHandler wraps an slog.Handler to keep log output bounded and
// shareable. It truncates oversized string values and replaces the user's
// home directory prefix in path-like values with "~".
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, tint)
//  3. Components keep logging raw values; sanitization happens in one place
type SanitizeHandler struct {
	// handler is the underlying slog handler that receives sanitized records.
	handler slog.Handler

	// home is the user's home directory, empty when unknown.
	home string
}

// NewSanitizeHandler creates a SanitizeHandler wrapping the given handler.
// If handler is nil, the returned SanitizeHandler uses slog.Default().Handler().
func NewSanitizeHandler(handler slog.Handler) *SanitizeHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	home, _ := os.UserHomeDir() //nolint:errcheck // Missing home just disables path shortening
	return &SanitizeHandler{handler: handler, home: home}
}

// Enabled reports whether the handler handles records at the given level.
func (h *SanitizeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it to the underlying
// handler.
func (h *SanitizeHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added,
// sanitized first.
func (h *SanitizeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SanitizeHandler{handler: h.handler.WithAttrs(sanitizedAttrs), home: h.home}
}

// WithGroup returns a new handler with the given group name.
func (h *SanitizeHandler) WithGroup(name string) slog.Handler {
	return &SanitizeHandler{handler: h.handler.WithGroup(name), home: h.home}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *SanitizeHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	val := a.Value.String()
	val = h.shortenHome(val)
	val = truncate(val)
	return slog.String(a.Key, val)
}

// shortenHome replaces the user's home directory prefix with "~".
func (h *SanitizeHandler) shortenHome(s string) string {
	if h.home == "" || !strings.HasPrefix(s, h.home) {
		return s
	}
	return "~" + strings.TrimPrefix(s, h.home)
}

// truncate bounds a value to MaxValueLen runes.
func truncate(s string) string {
	if len(s) <= MaxValueLen {
		return s
	}
	// Cut on a rune boundary so truncation never splits a multi-byte
	// character from the source document.
	runes := []rune(s)
	if len(runes) <= MaxValueLen {
		return s
	}
	return string(runes[:MaxValueLen]) + truncationMark
}

// NewLogger creates a *slog.Logger for CLI use. Output is colorized via
// tint when writing to a terminal-like writer, with sanitization applied
// on top.
//
// Parameters:
//   - w: the io.Writer to write log output to (typically os.Stderr)
//   - verbose: if true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level: level,
	})

	return slog.New(NewSanitizeHandler(handler))
}

// NewJSONLogger creates a *slog.Logger that emits sanitized JSON records.
// Useful for structured log aggregation in batch runs.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewSanitizeHandler(jsonHandler))
}
