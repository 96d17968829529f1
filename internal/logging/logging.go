// Package logging installs the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a logger writing text (default) or JSON records to w.
func New(format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup makes a logger for format on stderr the slog default.
func Setup(format string) *slog.Logger {
	l := New(format, os.Stderr)
	slog.SetDefault(l)
	return l
}
