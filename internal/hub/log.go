package hub

import (
	"context"
	"log/slog"

	"go.klb.dev/cliplog/internal/history"
)

// LogEntry logs a history event at INFO (ref, size) and, at DEBUG only, a
// preview of the text up to 120 chars. Clipboard text stays out of info logs.
func LogEntry(event string, e history.Entry) {
	slog.Info(event, "ref", e.Ref(), "bytes", len(e.Content), "copies", e.CopyCount)

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	slog.Debug("clipboard text", "ref", e.Ref(), "preview", Preview(e.Content, 120))
}

// Preview shortens s to at most n runes on a single line.
func Preview(s string, n int) string {
	out := make([]rune, 0, n)
	for _, r := range s {
		if len(out) == n {
			return string(out) + "…"
		}
		switch r {
		case '\n', '\r', '\t':
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
