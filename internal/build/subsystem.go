package build

import "log/slog"

// NewSubLogger returns a slog.Logger scoped to the given subsystem tag. The
// tag is threaded through HandlerSet.SubSystem so every record emitted by
// the returned logger carries it, matching the four-character subsystem
// tags (e.g. "RTR ", "BRDG", "AUTH", "ADMN") used by cmd/capwired.
func NewSubLogger(handlers *HandlerSet, subsystem string) *slog.Logger {
	return slog.New(handlers.SubSystem(subsystem))
}
