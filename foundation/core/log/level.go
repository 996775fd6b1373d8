// File: level.go
// Title: Log Levels
// Description: Defines log levels and parsing from configuration strings.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Level set without audit level

package log

import (
	"fmt"
	"strings"
)

// Level represents the importance level of a log message
type Level int

const (
	// LevelTrace logs every token and statement
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	// LevelFatal entries are written and then the process exits
	LevelFatal
	// LevelOff disables logging entirely
	LevelOff
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	case LevelOff:
		return "off"
	default:
		return "unknown"
	}
}

// ShortString returns a fixed-width tag for console output
func (l Level) ShortString() string {
	switch l {
	case LevelTrace:
		return "TRC"
	case LevelDebug:
		return "DBG"
	case LevelInfo:
		return "INF"
	case LevelWarn:
		return "WRN"
	case LevelError:
		return "ERR"
	case LevelFatal:
		return "FTL"
	default:
		return "???"
	}
}

// Color returns the ANSI color code for the level
func (l Level) Color() string {
	switch l {
	case LevelTrace:
		return "\033[90m"
	case LevelDebug:
		return "\033[36m"
	case LevelInfo:
		return "\033[32m"
	case LevelWarn:
		return "\033[33m"
	case LevelError, LevelFatal:
		return "\033[31m"
	default:
		return ""
	}
}

// Enabled reports whether a message at l passes the minimum level
func (l Level) Enabled(min Level) bool {
	return min != LevelOff && l >= min
}

// ParseLevel parses a level name such as "debug" or "WARNING"
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	case "off", "none":
		return LevelOff, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
}

// DefaultLevel returns the default minimum level
func DefaultLevel() Level {
	return LevelInfo
}
