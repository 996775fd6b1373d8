// File: entry.go
// Title: Log Entries and Fields
// Description: Entry is one formatted log record; Fields are its key/value pairs.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Trimmed entry metadata

package log

import (
	"sort"
	"time"
)

// Fields represents custom key-value pairs for structured logging
type Fields map[string]interface{}

// Err creates an error field
func Err(err error) Fields {
	if err == nil {
		return Fields{}
	}
	return Fields{"error": err.Error()}
}

// Duration creates a duration field in milliseconds
func Duration(key string, d time.Duration) Fields {
	return Fields{key: float64(d.Microseconds()) / 1000}
}

// Merge returns a new Fields containing f overlaid by other
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Keys returns the field names in sorted order
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entry represents a single log entry
type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Logger    string
	Fields    Fields
	Error     error
	Duration  time.Duration
}

// NewEntry creates an entry stamped with the current time
func NewEntry(level Level, message string) *Entry {
	return &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    make(Fields),
	}
}
