// Package logging builds the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
)

// New returns a text logger on stderr, at debug level when requested,
// and installs it as the slog default.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
