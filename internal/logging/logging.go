package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls how the process logger is built.
type Options struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string

	// Release selects the JSON production encoder instead of the
	// colored console encoder.
	Release bool

	// Silent discards all output.
	Silent bool

	// Paths overrides the output sinks. Default: stderr.
	Paths []string
}

// New builds a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	if opts.Silent {
		return zap.NewNop(), nil
	}

	level := zap.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var cfg zap.Config
	if opts.Release {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		// Warn is routine on the CLI (degraded verdicts, failed syncs).
		cfg.DisableStacktrace = true
	}
	cfg.Level.SetLevel(level)
	cfg.OutputPaths = []string{"stderr"}
	if len(opts.Paths) > 0 {
		cfg.OutputPaths = opts.Paths
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
