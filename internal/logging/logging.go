// Package logging builds the slog logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/idilsaglam/adminpanel/internal/config"
)

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}

// New returns a logger writing to w and installs it as the slog default.
func New(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level := slog.LevelWarn
	if cfg.Level != "" {
		l, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch cfg.Format {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("log format %q: want text or json", cfg.Format)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, nil
}

// Open picks the log destination. With a configured file the logger appends
// to it; otherwise interactive runs discard logs (the terminal belongs to the
// UI) and one-shot commands log to stderr. The returned closer is never nil.
func Open(cfg config.LogConfig, interactive bool) (*slog.Logger, io.Closer, error) {
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("mkdir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		logger, err := New(cfg, f)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return logger, f, nil
	}

	var w io.Writer = os.Stderr
	if interactive {
		w = io.Discard
	}
	logger, err := New(cfg, w)
	if err != nil {
		return nil, nil, err
	}
	return logger, io.NopCloser(nil), nil
}
