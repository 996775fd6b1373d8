// File: logger.go
// Title: Core Logger Implementation
// Description: Implements the Logger type: levelled structured logging with
//              persistent context fields and integration with the error codes
//              of foundation/core/error.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Defaults to stderr, removed async mode

package log

import (
	"io"
	"os"
	"sync"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
)

// Logger represents a structured logger with contextual information
type Logger struct {
	level         Level
	formatter     Formatter
	output        io.Writer
	name          string
	contextFields Fields

	// shared by all loggers derived from the same root so that writes to
	// one output never interleave
	writeMu *sync.Mutex
}

// Config represents logger configuration
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
	Name   string
}

// New creates a logger with the default level writing text to stderr
func New() *Logger {
	return NewWithConfig(Config{Level: DefaultLevel(), Format: FormatText})
}

// NewWithConfig creates a new logger with the specified configuration
func NewWithConfig(config Config) *Logger {
	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	return &Logger{
		level:         config.Level,
		formatter:     GetFormatter(config.Format),
		output:        output,
		name:          config.Name,
		contextFields: make(Fields),
		writeMu:       &sync.Mutex{},
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewWithConfig(Config{Level: LevelOff, Output: io.Discard})
}

// WithName returns a child logger with a different name
func (l *Logger) WithName(name string) *Logger {
	clone := l.clone()
	clone.name = name
	return clone
}

// WithLevel returns a child logger with a different minimum level
func (l *Logger) WithLevel(level Level) *Logger {
	clone := l.clone()
	clone.level = level
	return clone
}

// WithField returns a child logger that adds key to every entry
func (l *Logger) WithField(key string, value interface{}) *Logger {
	clone := l.clone()
	clone.contextFields[key] = value
	return clone
}

// WithFields returns a child logger that adds fields to every entry
func (l *Logger) WithFields(fields Fields) *Logger {
	clone := l.clone()
	for k, v := range fields {
		clone.contextFields[k] = v
	}
	return clone
}

// Trace logs at trace level
func (l *Logger) Trace(message string, fields ...Fields) {
	l.log(LevelTrace, message, nil, fields...)
}

// Debug logs at debug level
func (l *Logger) Debug(message string, fields ...Fields) {
	l.log(LevelDebug, message, nil, fields...)
}

// Info logs at info level
func (l *Logger) Info(message string, fields ...Fields) {
	l.log(LevelInfo, message, nil, fields...)
}

// Warn logs at warn level
func (l *Logger) Warn(message string, fields ...Fields) {
	l.log(LevelWarn, message, nil, fields...)
}

// Error logs at error level
func (l *Logger) Error(message string, fields ...Fields) {
	l.log(LevelError, message, nil, fields...)
}

// Fatal logs at fatal level and exits the process
func (l *Logger) Fatal(message string, fields ...Fields) {
	l.log(LevelFatal, message, nil, fields...)
	os.Exit(1)
}

// ErrorWithErr logs message with err attached
func (l *Logger) ErrorWithErr(message string, err error, fields ...Fields) {
	l.log(LevelError, message, err, fields...)
}

// LogError logs err at a level derived from its severity. Errors in a
// user's program (low severity) are logged at info.
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}
	mdwErr, ok := err.(*mdwerror.Error)
	if !ok {
		l.log(LevelError, err.Error(), err)
		return
	}

	fields := Fields{
		"error_code":     mdwErr.Code().String(),
		"error_severity": mdwErr.Severity().String(),
	}
	if op := mdwErr.Operation(); op != "" {
		fields["error_operation"] = op
	}
	for k, v := range mdwErr.Details() {
		fields["error_"+k] = v
	}

	level := LevelError
	switch mdwErr.Severity() {
	case mdwerror.SeverityLow:
		level = LevelInfo
	case mdwerror.SeverityMedium:
		level = LevelWarn
	}
	l.log(level, mdwErr.Message(), err, fields)
}

// StartTimer creates and starts a new operation timer
func (l *Logger) StartTimer(operation string) *Timer {
	return NewTimer(l, operation)
}

// IsLevelEnabled returns true if the given level would be written
func (l *Logger) IsLevelEnabled(level Level) bool {
	return level.Enabled(l.level)
}

// GetLevel returns the minimum level
func (l *Logger) GetLevel() Level {
	return l.level
}

func (l *Logger) log(level Level, message string, err error, fields ...Fields) {
	if !level.Enabled(l.level) {
		return
	}

	entry := NewEntry(level, message)
	entry.Logger = l.name
	entry.Error = err
	for k, v := range l.contextFields {
		entry.Fields[k] = v
	}
	for _, set := range fields {
		for k, v := range set {
			entry.Fields[k] = v
		}
	}
	l.write(entry)
}

func (l *Logger) write(entry *Entry) {
	formatted, err := l.formatter.Format(entry)
	if err != nil {
		return
	}
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	_, _ = l.output.Write(formatted)
}

func (l *Logger) clone() *Logger {
	fields := make(Fields, len(l.contextFields))
	for k, v := range l.contextFields {
		fields[k] = v
	}
	return &Logger{
		level:         l.level,
		formatter:     l.formatter,
		output:        l.output,
		name:          l.name,
		contextFields: fields,
		writeMu:       l.writeMu,
	}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New()
)

// GetDefault returns the process-wide default logger
func GetDefault() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide default logger
func SetDefault(logger *Logger) {
	if logger == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// Debug logs at debug level on the default logger
func Debug(message string, fields ...Fields) { GetDefault().Debug(message, fields...) }

// Info logs at info level on the default logger
func Info(message string, fields ...Fields) { GetDefault().Info(message, fields...) }

// Warn logs at warn level on the default logger
func Warn(message string, fields ...Fields) { GetDefault().Warn(message, fields...) }

// Error logs at error level on the default logger
func Error(message string, fields ...Fields) { GetDefault().Error(message, fields...) }
