// Package logger configures the structured logger the connection runtime and session layer use
// for diagnostics (spec §2 Ambient Stack): log/slog, kept as stdlib since no pack repo reaches
// for a third-party structured logger as a first-order dependency.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns a slog.Logger writing JSON to stderr at the given level ("debug", "info", "warn",
// "error"; unrecognized values default to "info").
func New(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Session returns a child logger scoped to one session, the way the teacher's internal/logger
// attached per-connection fields to every subsequent call.
func Session(base *slog.Logger, sessionID, role string) *slog.Logger {
	return base.With("session_id", sessionID, "bind_role", role)
}
