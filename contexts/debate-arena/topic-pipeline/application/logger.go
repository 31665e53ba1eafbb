package application

import (
	"io"
	"log/slog"
)

// ResolveLogger returns the provided logger, or a discard logger when nil so
// use cases never have to nil-check before logging.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
