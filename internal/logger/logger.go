// Package logger wraps zap construction so binaries share one logging setup.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger carries the shared zap instance.
type Logger struct {
	// Log is the configured zap logger. Nil until Init is called.
	Log *zap.Logger
}

// New returns an uninitialized Logger. Call Init before use.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a production zap logger at the given level ("Debug", "Info",
// "Warn", "Error"). It replaces the no-op logger set by New.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	l.Log = log
	return nil
}
