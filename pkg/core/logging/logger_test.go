package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/pkg/core/config"
)

func TestNew(t *testing.T) {
	logger := New("test-service")

	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.Name() != "test-service" {
		t.Errorf("Name() = %v, want test-service", logger.Name())
	}
}

func TestLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(LoggerConfig{
		ServiceName:       "kylang-server",
		Level:             "debug",
		Format:            "json",
		Output:            "stderr",
		AdditionalOutputs: []io.Writer{&buf},
	})
	logger := Wrap(base, "ws").With("session", "abc")

	logger.Info("run finished", "steps", 12, "status", "ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &decoded); err != nil {
		t.Fatalf("Expected JSON entry, got %q: %v", buf.String(), err)
	}
	for key, want := range map[string]interface{}{
		"component": "ws",
		"session":   "abc",
		"steps":     float64(12),
		"status":    "ok",
		"logger":    "kylang-server",
	} {
		if decoded[key] != want {
			t.Errorf("%s = %v, want %v", key, decoded[key], want)
		}
	}
}

func TestLogger_OddKeyValues(t *testing.T) {
	logger := Wrap(mdwlog.Discard(), "test")

	// Should not panic with odd number of key-values
	logger.Info("message", "key1", "value1", "orphan")
	logger.Warn("message without key-values")
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("my-service")

	if cfg.ServiceName != "my-service" {
		t.Errorf("ServiceName = %v, want my-service", cfg.ServiceName)
	}
	if cfg.Level != "warn" {
		t.Errorf("Level = %v, want warn", cfg.Level)
	}
	if cfg.Output != "stderr" {
		t.Errorf("Output = %v, want stderr", cfg.Output)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig("kylang", config.LoggingConfig{Level: "debug", Format: "json", Output: "stdout"})
	if cfg.ServiceName != "kylang" || cfg.Level != "debug" || cfg.Format != "json" || cfg.Output != "stdout" {
		t.Errorf("FromConfig() = %+v", cfg)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		input    string
		expected mdwlog.Level
	}{
		{"debug", mdwlog.LevelDebug},
		{"info", mdwlog.LevelInfo},
		{"warning", mdwlog.LevelWarn},
		{"error", mdwlog.LevelError},
		{"invalid", mdwlog.LevelInfo}, // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			logger := NewLogger(LoggerConfig{Level: tt.input, AdditionalOutputs: []io.Writer{&bytes.Buffer{}}})
			if logger.GetLevel() != tt.expected {
				t.Errorf("GetLevel() = %v, want %v", logger.GetLevel(), tt.expected)
			}
		})
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "kylang.log")
	defer CloseOutputs()

	first := NewLogger(LoggerConfig{Level: "info", Output: path})
	second := NewLogger(LoggerConfig{Level: "info", Output: path})
	first.Info("first entry")
	second.Info("second entry")

	if err := CloseOutputs(); err != nil {
		t.Fatalf("CloseOutputs() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "first entry") || !strings.Contains(string(data), "second entry") {
		t.Errorf("Expected both entries in the log file, got %q", data)
	}
}

func TestToFields(t *testing.T) {
	// Empty input
	fields := toFields()
	if fields != nil {
		t.Error("toFields() with no args should return nil")
	}

	// Valid key-value pairs
	fields = toFields("key1", "value1", "key2", 42)
	if fields["key1"] != "value1" {
		t.Errorf("fields[key1] = %v, want value1", fields["key1"])
	}
	if fields["key2"] != 42 {
		t.Errorf("fields[key2] = %v, want 42", fields["key2"])
	}

	// Non-string key (should be skipped)
	fields = toFields(123, "value")
	if len(fields) != 0 {
		t.Errorf("Non-string key should be skipped, got %v fields", len(fields))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Wrap(mdwlog.Discard(), "benchmark")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
	}
}
