// Package diag holds the diagnostic side channel: structured logging and a
// bounded trace of recent events. Nothing in the synchronization core depends
// on it for correctness.
package diag

import (
	"io"
	"log/slog"
	"strings"
)

// BuildLogger returns a logger writing to w at the given level. Levels are
// the slog names: debug, info, warn, error.
func BuildLogger(w io.Writer, level string, json bool) *slog.Logger {
	ops := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}
	if json {
		return slog.New(slog.NewJSONHandler(w, ops))
	}
	return slog.New(slog.NewTextHandler(w, ops))
}

func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ErrAttr(err error) slog.Attr {
	return slog.Any("error", err)
}
