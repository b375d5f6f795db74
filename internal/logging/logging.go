// Package logging builds the slog loggers used by the commands.
package logging

import (
	"io"
	"log/slog"
)

// Level maps a -v count to a level: warnings by default, then info, then
// debug.
func Level(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// New returns a logger writing to w, as JSON when asJSON is set.
func New(w io.Writer, verbosity int, asJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     Level(verbosity),
		AddSource: verbosity >= 3,
	}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
