// File: stringx.go
// Title: String Utility Functions
// Description: Small string helpers shared by the interpreter front-end and
//              the command line tools.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.1: Added IsBlankFunc
// - 2026-10-19 v0.2.0: Reduced to the helpers kylang needs, added SplitLines CRLF handling

package stringx

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsBlank reports whether s is empty or only whitespace
func IsBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// IsBlankFunc reports whether every rune of s satisfies isSpace
func IsBlankFunc(s string, isSpace func(rune) bool) bool {
	for _, r := range s {
		if !isSpace(r) {
			return false
		}
	}
	return true
}

// FirstNonBlank returns the first argument that is not blank
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if !IsBlank(v) {
			return v
		}
	}
	return ""
}

// Truncate shortens s to maxLen runes, ending with ellipsis when cut
func Truncate(s string, maxLen int, ellipsis string) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	keep := maxLen - utf8.RuneCountInString(ellipsis)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(s)
	return string(runes[:keep]) + ellipsis
}

// PadRight pads s with spaces to width runes
func PadRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// SplitLines splits text into lines, accepting \n and \r\n endings. A
// trailing newline does not produce an extra empty line.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
