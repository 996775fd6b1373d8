// File: indent.go
// Title: Indentation Measurement
// Description: Measures the block level of a source line. A tab is one
//              level and every four spaces count as one level; counting
//              stops at the first other character.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package parser

import mdwstringx "github.com/msto63/kylang/foundation/utils/stringx"

// SpacesPerLevel is the number of spaces equivalent to one tab
const SpacesPerLevel = 4

// CountIndent returns the indentation level of line
func CountIndent(line string) int {
	levels, spaces := 0, 0
	for _, r := range line {
		switch r {
		case '\t':
			levels++
		case ' ':
			spaces++
			if spaces == SpacesPerLevel {
				levels++
				spaces = 0
			}
		default:
			return levels
		}
	}
	return levels
}

// IsBlankLine reports whether line holds only the whitespace the lexer skips
func IsBlankLine(line string) bool {
	return mdwstringx.IsBlankFunc(line, isLineSpace)
}
