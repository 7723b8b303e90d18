package helpers

import "log/slog"

// NewNoopLogger returns a logger that discards every record. Components fall back to it when no logger is injected.
func NewNoopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
