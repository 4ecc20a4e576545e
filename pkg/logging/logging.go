// Package logging builds the zap-backed ectologger used across the service and CLI.
package logging

import (
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level   string
	Pretty  bool
	AppName string
	Version string
}

// NewZapLogger uses the development config when Pretty is set and production otherwise.
func NewZapLogger(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	cfg := zap.NewProductionConfig()
	if opts.Pretty {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if opts.AppName != "" {
		logger = logger.With(zap.String("app", opts.AppName), zap.String("version", opts.Version))
	}

	return logger, nil
}

func New(opts Options) (ectologger.Logger, *zap.Logger, error) {
	zapLogger, err := NewZapLogger(opts)
	if err != nil {
		return nil, nil, err
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil), zapLogger, nil
}

// Nop discards everything. Used by tests and quiet CLI runs.
func Nop() ectologger.Logger {
	return ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
}
