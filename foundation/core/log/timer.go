// File: timer.go
// Title: Operation Timers
// Description: Timer measures an operation and logs its duration when stopped.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Stop and StopWithError only

package log

import "time"

// Timer measures the duration of an operation
type Timer struct {
	logger    *Logger
	operation string
	start     time.Time
	level     Level
	fields    Fields
}

// NewTimer starts a timer for operation
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		start:     time.Now(),
		level:     LevelDebug,
		fields:    make(Fields),
	}
}

// WithLevel sets the level used when the timer is stopped
func (t *Timer) WithLevel(level Level) *Timer {
	t.level = level
	return t
}

// WithField adds a field to the completion entry
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the time since the timer started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Stop logs "<operation> completed" and returns the duration
func (t *Timer) Stop() time.Duration {
	return t.finish(nil)
}

// StopWithError logs completion or failure depending on err
func (t *Timer) StopWithError(err error) time.Duration {
	return t.finish(err)
}

func (t *Timer) finish(err error) time.Duration {
	d := t.Elapsed()
	if t.logger == nil {
		return d
	}
	level, msg := t.level, t.operation+" completed"
	if err != nil {
		level, msg = LevelWarn, t.operation+" failed"
	}
	if !level.Enabled(t.logger.level) {
		return d
	}
	entry := NewEntry(level, msg)
	entry.Logger = t.logger.name
	entry.Error = err
	entry.Duration = d
	for k, v := range t.logger.contextFields {
		entry.Fields[k] = v
	}
	for k, v := range t.fields {
		entry.Fields[k] = v
	}
	entry.Fields["operation"] = t.operation
	t.logger.write(entry)
	return d
}
