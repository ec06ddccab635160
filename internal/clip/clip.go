// Package clip provides a unified text interface to the system clipboard
// across platforms. Build constraints select the implementation:
//
//	clip_system.go   — macOS, Windows, Linux via golang.design/x/clipboard
//	clip_other.go    — everything else, headless stub
//	clip_headless.go — no-op backend, also used when the display is unavailable
//	memory.go        — in-process backend for tests and embedding
package clip

import "errors"

// ErrAccess marks a transient failure to read or write the clipboard, for
// example another application holding it open. Callers retry later.
var ErrAccess = errors.New("clipboard access failed")

// Backend is the interface that all clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the current clipboard text. An empty clipboard or one
	// holding only non-text data yields "", nil.
	ReadText() (string, error)

	// WriteText replaces the clipboard contents with text.
	WriteText(text string) error

	// Close releases any resources held by the backend.
	Close()
}
