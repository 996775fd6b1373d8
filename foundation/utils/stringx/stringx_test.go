// File: stringx_test.go
// Title: String Utility Tests
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Tests for the reduced helper set

package stringx

import (
	"reflect"
	"testing"
)

func TestIsBlank(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{" \t \n", true},
		{" ", true},
		{" x ", false},
	}
	for _, tt := range tests {
		if got := IsBlank(tt.input); got != tt.want {
			t.Errorf("IsBlank(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsBlankFunc(t *testing.T) {
	onlySpace := func(r rune) bool { return r == ' ' }
	if !IsBlankFunc("   ", onlySpace) {
		t.Error("Expected spaces to be blank")
	}
	if IsBlankFunc(" \t ", onlySpace) {
		t.Error("Expected tab to count as content")
	}
	if !IsBlankFunc("", onlySpace) {
		t.Error("Expected empty string to be blank")
	}
}

func TestFirstNonBlank(t *testing.T) {
	if got := FirstNonBlank("", "  ", "a", "b"); got != "a" {
		t.Errorf("Expected a, got %q", got)
	}
	if got := FirstNonBlank(" "); got != "" {
		t.Errorf("Expected empty, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"display counter", 8, "displ..."},
		{"äöüäöü", 4, "ä..."},
		{"abc", 2, "..."},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.input, tt.maxLen, "..."); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("LET", 6); got != "LET   " {
		t.Errorf("Expected padded value, got %q", got)
	}
	if got := PadRight("IDENTIFIER", 4); got != "IDENTIFIER" {
		t.Errorf("Expected unchanged value, got %q", got)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"let x := 1", []string{"let x := 1"}},
		{"a\nb\n", []string{"a", "b"}},
		{"a\r\n\r\nb", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		if got := SplitLines(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
