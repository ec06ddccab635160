// Package logging configures the global slog logger for cliplog.
//
// cliplog runs in two shapes with different needs. The daemon is a
// long-lived service: it logs at info, so each captured entry shows up as one
// line with its ref and size but never its text. The one-shot commands
// (list, fav, export, ...) print their results on stdout and log at warn, so
// a healthy run writes nothing to stderr. Either shape drops to debug when
// run interactively or when asked; only debug logs carry clipboard previews.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Profile is the default level of one kind of process.
type Profile struct {
	// Level applies when no level is configured.
	Level slog.Level
	// Interactive switches to debug when no level is configured.
	Interactive bool
}

var (
	// Daemon is the profile of `cliplog daemon`.
	Daemon = Profile{Level: slog.LevelInfo}
	// Command is the profile of the one-shot commands.
	Command = Profile{Level: slog.LevelWarn}
)

// ParseFormat converts a string to a Format, returning FormatAuto for unknown values.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel converts a string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Resolve returns the level for the configured level string. An
// explicit level always wins.
func (p Profile) Resolve(level string) slog.Level {
	switch {
	case level != "":
		return ParseLevel(level)
	case p.Interactive:
		return slog.LevelDebug
	default:
		return p.Level
	}
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// NewHandler builds the handler Setup installs, writing to w. Auto picks
// tinter when w is a terminal and JSON otherwise.
func NewHandler(w io.Writer, format Format, level slog.Level) slog.Handler {
	if format == FormatText || (format == FormatAuto && IsTTY(w)) {
		return tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// Setup installs the global logger on stderr. Call once after flag/viper
// parsing.
func Setup(p Profile, format, level string) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, ParseFormat(format), p.Resolve(level))))
}
