// Package logging builds the zap logger shared by the CLI and the session.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where log lines go and how verbose they are.
type Options struct {
	Verbose bool
	// File receives the logs. Empty means stderr, unless Quiet is set.
	File string
	// Quiet discards logs unless File is set. The TUI uses it so nothing is written over the screen.
	Quiet bool
}

// New builds a JSON production logger, at debug level when Verbose is set.
func New(opts Options) (*zap.Logger, error) {
	if opts.Quiet && opts.File == "" {
		return zap.NewNop(), nil
	}

	config := zap.NewProductionConfig()
	if opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.DisableStacktrace = !opts.Verbose

	if opts.File != "" {
		config.OutputPaths = []string{opts.File}
		config.ErrorOutputPaths = []string{opts.File}
	} else {
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
