// File: logger_test.go
// Title: Logger Tests
// Description: Tests for levels, formatters, child loggers and timers.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Initial tests for the reduced logger

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"WARNING", LevelWarn, false},
		{" error ", LevelError, false},
		{"", LevelInfo, false},
		{"off", LevelOff, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelWarn, Format: FormatText, Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug and info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "WRN shown") {
		t.Errorf("Expected warn entry, got %q", out)
	}
}

func TestLevelOffWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelOff, Output: &buf})
	logger.Error("nothing")
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestJSONFormatterIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelDebug, Format: FormatJSON, Output: &buf, Name: "kylang"}).
		WithField("component", "parser")

	logger.Debug("statement parsed", Fields{"row": 3})

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %q: %v", buf.String(), err)
	}
	if decoded["component"] != "parser" {
		t.Errorf("Expected component parser, got %v", decoded["component"])
	}
	if decoded["row"] != float64(3) {
		t.Errorf("Expected row 3, got %v", decoded["row"])
	}
	if decoded["logger"] != "kylang" {
		t.Errorf("Expected logger kylang, got %v", decoded["logger"])
	}
	if decoded["level"] != "debug" {
		t.Errorf("Expected level debug, got %v", decoded["level"])
	}
}

func TestWithFieldDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithConfig(Config{Level: LevelInfo, Output: &buf})
	_ = parent.WithField("child", true)

	parent.Info("parent entry")
	if strings.Contains(buf.String(), "child=") {
		t.Errorf("Expected parent without child field, got %q", buf.String())
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelInfo, Output: &buf})
	logger.Info("run", Fields{"b": 2, "a": "x y"})

	out := buf.String()
	if !strings.Contains(out, `a="x y" b=2`) {
		t.Errorf("Expected sorted, quoted fields, got %q", out)
	}
}

func TestConsoleFormatterColors(t *testing.T) {
	f := NewConsoleFormatter()
	data, err := f.Format(NewEntry(LevelError, "boom"))
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.HasPrefix(string(data), LevelError.Color()) {
		t.Errorf("Expected colored output, got %q", data)
	}

	f.DisableColors = true
	data, _ = f.Format(NewEntry(LevelError, "boom"))
	if strings.Contains(string(data), "\033[") {
		t.Errorf("Expected no escape codes, got %q", data)
	}
}

func TestLogErrorUsesSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"program fault logs at info", mdwerror.New("Division by zero").WithCode(mdwerror.CodeArithmetic), "INF"},
		{"database fault logs at error", mdwerror.New("locked").WithCode(mdwerror.CodeDatabaseError), "ERR"},
		{"plain error logs at error", errors.New("plain"), "ERR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithConfig(Config{Level: LevelTrace, Output: &buf})
			logger.LogError(tt.err)
			if !strings.Contains(buf.String(), " "+tt.want+" ") {
				t.Errorf("Expected level %s, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestTimerLogsDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelDebug, Output: &buf})

	timer := logger.StartTimer("execute").WithField("steps", 4)
	timer.Stop()

	out := buf.String()
	if !strings.Contains(out, "execute completed") {
		t.Errorf("Expected completion message, got %q", out)
	}
	if !strings.Contains(out, "steps=4") {
		t.Errorf("Expected timer field, got %q", out)
	}

	buf.Reset()
	logger.StartTimer("parse").StopWithError(errors.New("bad"))
	if !strings.Contains(buf.String(), "parse failed") {
		t.Errorf("Expected failure message, got %q", buf.String())
	}
}

func TestDefaultLogger(t *testing.T) {
	original := GetDefault()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(NewWithConfig(Config{Level: LevelInfo, Output: &buf}))
	Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("Expected default logger output, got %q", buf.String())
	}

	SetDefault(nil)
	if GetDefault() == nil {
		t.Error("SetDefault(nil) must be ignored")
	}
}
