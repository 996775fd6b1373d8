// ============================================================================
// kylang - Teaching Language Interpreter
// ============================================================================
//
// Package:     logging
// Description: Key/value logger used by the long-running services
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package logging

import (
	mdwlog "github.com/msto63/kylang/foundation/core/log"
)

// Logger wraps the Foundation logger with key/value style methods
type Logger struct {
	*mdwlog.Logger
	name string
}

// New creates a key/value logger with the default configuration
func New(name string) *Logger {
	return &Logger{
		Logger: NewSimpleLogger(name),
		name:   name,
	}
}

// Wrap adapts an existing Foundation logger
func Wrap(logger *mdwlog.Logger, name string) *Logger {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	return &Logger{
		Logger: logger.WithField("component", name),
		name:   name,
	}
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// With returns a child logger carrying the given key/value pairs
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.WithFields(toFields(keysAndValues...)),
		name:   l.name,
	}
}

// Debug logs a debug message with key/value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key/value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key/value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key/value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields converts key-value pairs to mdwlog.Fields
func toFields(keysAndValues ...interface{}) mdwlog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(mdwlog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
