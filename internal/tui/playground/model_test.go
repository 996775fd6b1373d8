// ============================================================================
// kylang - Teaching Language Interpreter
// ============================================================================
//
// Package:     playground
// Description: Tests for the playground model
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package playground

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/internal/history"
)

func newTestModel(t *testing.T, cfg Config) Model {
	t.Helper()
	cfg.Logger = mdwlog.Discard()
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

// press sends a key and runs the resulting command once, feeding its
// message back into the model
func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	if cmd != nil {
		if next := cmd(); next != nil {
			updated, _ = m.Update(next)
			m = updated.(Model)
		}
	}
	return m
}

func TestNew_LoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.ky")
	if err := os.WriteFile(path, []byte("display 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	m := newTestModel(t, Config{Path: path})
	if m.Source() != "display 1\n" {
		t.Errorf("Expected file content in editor, got %q", m.Source())
	}

	m = newTestModel(t, Config{Path: filepath.Join(t.TempDir(), "new.ky")})
	if m.Source() != "" {
		t.Errorf("Expected empty editor for a new file, got %q", m.Source())
	}
}

func TestModel_Run(t *testing.T) {
	store := history.NewMemoryStore()
	m := newTestModel(t, Config{
		Source:  "input n\ndisplay n * 2",
		Input:   "21",
		History: store,
	})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = updated.(Model)
	if !m.running || cmd == nil {
		t.Fatal("Expected a run to start")
	}

	// A second run request is ignored while running
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR}); again != nil {
		t.Error("Expected no command while a run is in progress")
	}

	updated, _ = m.Update(cmd())
	m = updated.(Model)
	if m.running {
		t.Error("Expected run to be finished")
	}
	if m.Output() != "42\n" {
		t.Errorf("Expected output 42, got %q", m.Output())
	}
	if !strings.HasPrefix(m.status, "ok") {
		t.Errorf("Expected ok status, got %q", m.status)
	}

	runs, err := store.List(context.Background(), history.Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Origin != history.OriginPlayground {
		t.Errorf("Expected one playground run, got %+v", runs)
	}
}

func TestModel_RunErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		cfg    Config
		code   mdwerror.Code
	}{
		{"division by zero", "display 1 / 0", Config{}, mdwerror.CodeArithmetic},
		{"syntax", "let x 1", Config{}, mdwerror.CodeSyntax},
		{"timeout", "while 0 = 0: let x := 1", Config{RunTimeout: 20 * time.Millisecond}, mdwerror.CodeCancelled},
		{"step limit", "while 0 = 0: let x := 1", Config{MaxSteps: 50}, mdwerror.CodeStepLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Source = tt.source
			m := press(t, newTestModel(t, cfg), tea.KeyMsg{Type: tea.KeyCtrlR})

			if !mdwerror.HasCode(m.lastErr, tt.code) {
				t.Errorf("Expected %s, got %v", tt.code, m.lastErr)
			}
			if !strings.Contains(m.status, tt.code.String()) {
				t.Errorf("Expected status to name %s, got %q", tt.code, m.status)
			}
			if !strings.Contains(m.View(), "row 1") {
				t.Error("Expected the error position in the view")
			}
		})
	}
}

func TestModel_FocusCycle(t *testing.T) {
	m := newTestModel(t, Config{})
	want := []Focus{FocusInput, FocusOutput, FocusEditor}
	for _, f := range want {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.focus != f {
			t.Errorf("Expected focus %d, got %d", f, m.focus)
		}
	}
}

func TestModel_TypingMarksModified(t *testing.T) {
	m := newTestModel(t, Config{})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if !m.modified {
		t.Error("Expected editor to be marked modified")
	}
	if m.Source() != "d" {
		t.Errorf("Expected typed text in editor, got %q", m.Source())
	}
}

func TestModel_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.ky")
	m := newTestModel(t, Config{Path: path, Source: "display 5"})
	m.modified = true

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "display 5\n" {
		t.Errorf("Expected saved program with trailing newline, got %q", data)
	}
	if m.modified {
		t.Error("Expected modified flag to be cleared")
	}

	m = press(t, newTestModel(t, Config{Source: "display 5"}), tea.KeyMsg{Type: tea.KeyCtrlS})
	if !mdwerror.HasCode(m.lastErr, mdwerror.CodeInvalidInput) {
		t.Errorf("Expected INVALID_INPUT without a path, got %v", m.lastErr)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, Config{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestModel_View(t *testing.T) {
	m, err := New(Config{Logger: mdwlog.Discard()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if m.View() != "Loading playground..." {
		t.Errorf("Expected loading view before the first resize, got %q", m.View())
	}

	m = newTestModel(t, Config{Path: "demo.ky"})
	view := m.View()
	for _, want := range []string{Logo, "demo.ky", "Program", "Input", "Output"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
}
