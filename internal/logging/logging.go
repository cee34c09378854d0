// Package logging configures structured logging for Stride. Output goes
// to stderr so command results on stdout stay machine-readable; the
// format and level come from config.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the log level and output format.
type Config struct {
	Level  string // debug, info, warn, error; default info
	Format string // text or json; default text
}

// New builds a logger writing to stderr.
func New(cfg Config) *slog.Logger {
	return NewWriter(os.Stderr, cfg)
}

// NewWriter builds a logger writing to w. Split out for tests.
func NewWriter(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
