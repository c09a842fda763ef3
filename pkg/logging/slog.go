// Package logging adapts log/slog to the types.Logger contract used by the
// attendance commands.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goliatone/go-attendance/pkg/types"
)

// Logger wraps an slog.Logger.
type Logger struct {
	log *slog.Logger
}

var _ types.Logger = (*Logger)(nil)

// New wraps an existing slog logger; nil falls back to slog.Default.
func New(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{log: l}
}

// NewJSON writes JSON lines to w (stdout when nil) at the named level.
func NewJSON(w io.Writer, level string) *Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &Logger{log: slog.New(handler).With("component", "go-attendance")}
}

// ParseLevel maps debug, warn and error; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// With returns a logger carrying extra fields.
func (l *Logger) With(fields ...any) *Logger {
	return &Logger{log: l.log.With(fields...)}
}

// Slog exposes the underlying logger.
func (l *Logger) Slog() *slog.Logger {
	return l.log
}

// Debug implements types.Logger.
func (l *Logger) Debug(msg string, fields ...any) {
	l.log.Debug(msg, fields...)
}

// Info implements types.Logger.
func (l *Logger) Info(msg string, fields ...any) {
	l.log.Info(msg, fields...)
}

// Error implements types.Logger.
func (l *Logger) Error(msg string, err error, fields ...any) {
	if err != nil {
		fields = append([]any{"error", err.Error()}, fields...)
	}
	l.log.Error(msg, fields...)
}
