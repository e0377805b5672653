// Package openlog builds the *zap.Logger the CLI creates from its
// --log-level flag. There is no package-level global logger; the reader,
// planner, and executor constructors take no logger, and the CLI only
// builds the logger and syncs it on exit.
package openlog

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a *zap.Logger at the given level ("debug", "info",
// "warn", "error"). Output is human-readable console encoding to stderr,
// matching a CLI tool's expected output rather than a long-running
// service's JSON log stream.
func NewLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, fmt.Errorf("openlog: invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "" // CLI invocations are short-lived; timestamps add noise, not signal

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("openlog: build logger: %w", err)
	}
	return logger, nil
}

// NopIfNil returns l unchanged, or a no-op logger when l is nil. No
// constructor in this repository takes a logger, so only its test calls it.
func NopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
