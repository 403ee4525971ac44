// Package corelog is the Engine's structured-logging boundary: a thin
// wrapper over go.uber.org/zap, grounded on theRebelliousNerd-codenerd's
// cmd/nerd/main.go zap.NewProductionConfig()/zap.NewDevelopmentConfig()
// selection. Every failure path in the Analysis Engine logs through
// here instead of letting a raw error or stack trace reach a caller.
package corelog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	global *zap.Logger
)

// New builds a Logger. verbose selects debug-level development config
// (human-readable, grounded on the teacher's --verbose flag); otherwise
// a production JSON config is used, matching how the teacher's CLI
// behaves for non-interactive commands.
func New(verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
	}
	return cfg.Build()
}

// Global returns a process-wide Logger, building one from the
// environment on first use (CORECUBE_VERBOSE=1 selects development
// config). Safe for concurrent use across Sessions.
func Global() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		return global
	}
	verbose := os.Getenv("CORECUBE_VERBOSE") != ""
	l, err := New(verbose)
	if err != nil {
		l = zap.NewNop()
	}
	global = l
	return global
}

// QueryFields builds the fixed set of structured fields the error
// handling design requires at the engine boundary: the original
// question, the classified error kind, the retry count, and the
// generated code that produced the failure.
func QueryFields(question string, errKind string, retryCount int, lastCode string) []zap.Field {
	return []zap.Field{
		zap.String("question", question),
		zap.String("error_kind", errKind),
		zap.Int("retry_count", retryCount),
		zap.String("last_code", lastCode),
	}
}
