package config

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger returns a structured logger writing to w at the configured level.
func NewLogger(w io.Writer, cfg LogConfig, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           cfg.LogLevel(),
		Prefix:          prefix,
		ReportTimestamp: true,
	})
}

// OpenLogFile returns a logger for the terminal client, which cannot write to
// the screen it draws on. Without a log file the output is discarded. The
// returned close function is never nil.
func OpenLogFile(cfg LogConfig, prefix string) (*log.Logger, func() error, error) {
	if cfg.File == "" {
		return NewLogger(io.Discard, cfg, prefix), func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewLogger(f, cfg, prefix), f.Close, nil
}
