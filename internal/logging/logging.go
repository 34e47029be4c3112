// Package logging builds the operator-facing logger.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w. debug lowers the level to Debug,
// quiet raises it to Error; otherwise warnings and above are shown.
func New(w io.Writer, debug, quiet bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
