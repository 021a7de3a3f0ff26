package app

import (
	"io"
	"log/slog"
	"path/filepath"
)

// newLogger builds the isolated logger of one App. Unknown levels fall back
// to info. Every record carries the component and the module tree it boots,
// plus the role when one is forced from the command line.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	attrs := []any{"component", "modboot", "tree", filepath.Base(cfg.TreePath)}
	if cfg.Role != "" {
		attrs = append(attrs, "role", cfg.Role)
	}
	return slog.New(handler).With(attrs...)
}
