// Package observability owns the process-wide structured logger.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the logger used by command execution. It is a no-op
// until Init runs, so packages can log unconditionally.
var CLILogger = zap.NewNop()

// Init builds CLILogger at the given level ("debug", "info", "warn",
// "error"). Log output goes to stderr so command output on stdout
// stays machine-readable.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	CLILogger = logger
	return nil
}

// Sync flushes buffered log entries. Safe to call on exit.
func Sync() {
	_ = CLILogger.Sync()
}
