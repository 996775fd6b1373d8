// ============================================================================
// kylang - Teaching Language Interpreter
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating loggers from configuration
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/pkg/core/config"
)

var (
	// Log files opened by NewLogger, keyed by path
	openFiles   = make(map[string]*os.File)
	openFilesMu sync.Mutex
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error, off)
	Level string

	// Output format: "json", "text" or "console" (default: text)
	Format string

	// Output target: "stderr", "stdout" or a file path (default: stderr)
	Output string

	// Additional outputs besides Output
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "warn",
		Format:      "text",
		Output:      "stderr",
	}
}

// FromConfig converts the [logging] section into a LoggerConfig
func FromConfig(serviceName string, cfg config.LoggingConfig) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       cfg.Level,
		Format:      cfg.Format,
		Output:      cfg.Output,
	}
}

// NewLogger creates a new Foundation logger. Invalid levels and formats fall
// back to info and text; an unwritable log file falls back to stderr and the
// failure is logged there.
func NewLogger(cfg LoggerConfig) *mdwlog.Logger {
	// Determine log level
	level, levelErr := mdwlog.ParseLevel(cfg.Level)

	// Determine format
	format, formatErr := mdwlog.ParseFormat(cfg.Format)

	// Build output writer
	output, outputErr := openOutput(cfg.Output)
	if outputErr != nil {
		output = os.Stderr
	}

	// Add additional outputs if specified
	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	logger := mdwlog.NewWithConfig(mdwlog.Config{
		Level:  level,
		Format: format,
		Output: output,
		Name:   cfg.ServiceName,
	})

	for _, err := range []error{levelErr, formatErr, outputErr} {
		if err != nil {
			logger.Warn("Logger configuration problem, using fallback", mdwlog.Fields{"error": err.Error()})
		}
	}
	return logger
}

// NewSimpleLogger creates a logger with the default configuration
func NewSimpleLogger(serviceName string) *mdwlog.Logger {
	return NewLogger(DefaultLoggerConfig(serviceName))
}

// CloseOutputs closes all log files opened by NewLogger
func CloseOutputs() error {
	openFilesMu.Lock()
	defer openFilesMu.Unlock()

	var firstErr error
	for path, f := range openFiles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(openFiles, path)
	}
	return firstErr
}

// openOutput resolves an output target, reusing files that are already open
func openOutput(target string) (io.Writer, error) {
	switch target {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}

	openFilesMu.Lock()
	defer openFilesMu.Unlock()

	if f, ok := openFiles[target]; ok {
		return f, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	openFiles[target] = f
	return f, nil
}
