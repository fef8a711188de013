// Package observability wires up structured logging for the CLI.
//
// CLILogger is a package-level *zap.Logger, following the same pattern
// as the observability package consumed throughout internal/cmd: every
// command logs through this single logger rather than threading one
// through every call, and every log line carries structured fields
// instead of an interpolated string.
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the logger used by every cobra command. It is replaced by
// Init once flags have been parsed; before that it defaults to a no-op
// logger so that package-level var initializers never see a
// nil logger.
var CLILogger *zap.Logger = zap.NewNop()

// Init builds the CLI logger. verbose selects a human-readable development
// encoder at debug level; otherwise a JSON production encoder at info
// level is used, matching how the CLI runs in scripted/batch contexts.
func Init(verbose bool) error {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	CLILogger = logger
	return nil
}

// Sync flushes any buffered log entries. Call it once before process exit.
func Sync() {
	_ = CLILogger.Sync()
}
