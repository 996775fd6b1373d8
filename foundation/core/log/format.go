// File: format.go
// Title: Log Formatters
// Description: JSON, text and console formatters for log entries.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Deterministic field order in text output

package log

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format selects a formatter
type Format int

const (
	FormatJSON Format = iota
	FormatText
	FormatConsole
)

// String returns the name of the format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	case FormatConsole:
		return "console"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name
func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return FormatJSON, nil
	case "text", "":
		return FormatText, nil
	case "console", "color":
		return FormatConsole, nil
	default:
		return FormatText, fmt.Errorf("invalid log format %q", format)
	}
}

// Formatter turns an entry into bytes
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// GetFormatter returns the formatter for a format
func GetFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter()
	case FormatConsole:
		return NewConsoleFormatter()
	default:
		return NewTextFormatter()
	}
}

// JSONFormatter formats log entries as one JSON object per line
type JSONFormatter struct {
	TimestampFormat string
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{TimestampFormat: time.RFC3339}
}

// Format formats a log entry as JSON
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Fields)+5)
	for k, v := range entry.Fields {
		data[k] = v
	}
	data["timestamp"] = entry.Timestamp.Format(f.TimestampFormat)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message
	if entry.Logger != "" {
		data["logger"] = entry.Logger
	}
	if entry.Error != nil {
		data["error"] = entry.Error.Error()
		if m, ok := entry.Error.(json.Marshaler); ok {
			if raw, err := m.MarshalJSON(); err == nil {
				data["error_details"] = json.RawMessage(raw)
			}
		}
	}
	if entry.Duration > 0 {
		data["duration_ms"] = float64(entry.Duration.Microseconds()) / 1000
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// TextFormatter formats entries as "time level [logger] message k=v ..."
type TextFormatter struct {
	TimestampFormat string
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{TimestampFormat: "15:04:05.000"}
}

// Format formats a log entry as text
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var b strings.Builder
	b.WriteString(entry.Timestamp.Format(f.TimestampFormat))
	b.WriteByte(' ')
	b.WriteString(entry.Level.ShortString())
	if entry.Logger != "" {
		fmt.Fprintf(&b, " [%s]", entry.Logger)
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	for _, k := range entry.Fields.Keys() {
		fmt.Fprintf(&b, " %s=%s", k, quoteValue(entry.Fields[k]))
	}
	if entry.Error != nil {
		fmt.Fprintf(&b, " error=%s", quoteValue(entry.Error.Error()))
	}
	if entry.Duration > 0 {
		fmt.Fprintf(&b, " duration=%s", entry.Duration)
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// ConsoleFormatter is a TextFormatter with ANSI colors
type ConsoleFormatter struct {
	DisableColors bool
	*TextFormatter
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{TextFormatter: NewTextFormatter()}
}

// Format formats a log entry for a terminal
func (f *ConsoleFormatter) Format(entry *Entry) ([]byte, error) {
	data, err := f.TextFormatter.Format(entry)
	if err != nil || f.DisableColors {
		return data, err
	}
	line := strings.TrimSuffix(string(data), "\n")
	return []byte(entry.Level.Color() + line + "\033[0m\n"), nil
}

func quoteValue(v interface{}) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
