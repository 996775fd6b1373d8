// File: lexer_test.go
// Title: kylang Lexer Unit Tests
// Description: Tests for token classification, line scanning, position
//              tracking and invalid lexemes.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial test suite

package parser

import (
	"strings"
	"testing"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
)

func tok(kind TokenKind, text string, row, column int) Token {
	return Token{kind: kind, text: text, row: row, column: column}
}

func TestLexer_NextToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "Assignment",
			input: "let x := 5",
			expected: []Token{
				tok(KindLet, "let", 1, 1),
				tok(KindIdentifier, "x", 1, 5),
				tok(KindAssign, ":=", 1, 7),
				tok(KindIntLit, "5", 1, 10),
				tok(KindEOL, ";", 1, 11),
			},
		},
		{
			name:  "Keywords are case-insensitive, identifiers keep spelling",
			input: "DISPLAY Counter_1",
			expected: []Token{
				tok(KindDisplay, "display", 1, 1),
				tok(KindIdentifier, "Counter_1", 1, 9),
				tok(KindEOL, ";", 1, 18),
			},
		},
		{
			name:  "Range without spaces",
			input: "for i in 1..10:",
			expected: []Token{
				tok(KindFor, "for", 1, 1),
				tok(KindIdentifier, "i", 1, 5),
				tok(KindIn, "in", 1, 7),
				tok(KindIntLit, "1", 1, 10),
				tok(KindRange, "..", 1, 11),
				tok(KindIntLit, "10", 1, 13),
				tok(KindColon, ":", 1, 15),
				tok(KindEOL, ";", 1, 16),
			},
		},
		{
			name:  "Two-character operators win over prefixes",
			input: "a<=b>=c==d/=e",
			expected: []Token{
				tok(KindIdentifier, "a", 1, 1),
				tok(KindLE, "<=", 1, 2),
				tok(KindIdentifier, "b", 1, 4),
				tok(KindGE, ">=", 1, 5),
				tok(KindIdentifier, "c", 1, 7),
				tok(KindEQ, "==", 1, 8),
				tok(KindIdentifier, "d", 1, 10),
				tok(KindNE, "/=", 1, 11),
				tok(KindIdentifier, "e", 1, 13),
				tok(KindEOL, ";", 1, 14),
			},
		},
		{
			name:  "Arithmetic and parentheses",
			input: "(8-3)*2/-1+x",
			expected: []Token{
				tok(KindLeftParen, "(", 1, 1),
				tok(KindIntLit, "8", 1, 2),
				tok(KindSubtract, "-", 1, 3),
				tok(KindIntLit, "3", 1, 4),
				tok(KindRightParen, ")", 1, 5),
				tok(KindMultiply, "*", 1, 6),
				tok(KindIntLit, "2", 1, 7),
				tok(KindDivide, "/", 1, 8),
				tok(KindSubtract, "-", 1, 9),
				tok(KindIntLit, "1", 1, 10),
				tok(KindAdd, "+", 1, 11),
				tok(KindIdentifier, "x", 1, 12),
				tok(KindEOL, ";", 1, 13),
			},
		},
		{
			name:  "Columns count leading indentation",
			input: "\t\tinput n",
			expected: []Token{
				tok(KindInput, "input", 3, 3),
				tok(KindIdentifier, "n", 3, 9),
				tok(KindEOL, ";", 3, 10),
			},
		},
		{
			name:  "Digits followed by letters split",
			input: "12ab",
			expected: []Token{
				tok(KindIntLit, "12", 1, 1),
				tok(KindIdentifier, "ab", 1, 3),
				tok(KindEOL, ";", 1, 5),
			},
		},
		{
			name:     "Empty line",
			input:    "",
			expected: []Token{tok(KindEOL, ";", 1, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := 1
			if len(tt.expected) > 0 {
				row = tt.expected[0].row
			}
			tokens, err := TokenizeLine(tt.input, row)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(tokens) != len(tt.expected) {
				t.Fatalf("Expected %d tokens, got %d: %v", len(tt.expected), len(tokens), tokens)
			}
			for i, want := range tt.expected {
				if tokens[i] != want {
					t.Errorf("Token %d: expected %v, got %v", i, want, tokens[i])
				}
			}
		})
	}
}

func TestLexer_EOLForever(t *testing.T) {
	l := NewLexer("display x", 4)
	for i := 0; i < 2; i++ {
		if _, err := l.NextToken(); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		got, err := l.NextToken()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !got.Is(KindEOL) {
			t.Fatalf("Expected EOL on call %d, got %v", i, got)
		}
	}
	if !l.Exhausted() {
		t.Error("Expected lexer to be exhausted")
	}
}

func TestLexer_PeekDoesNotConsume(t *testing.T) {
	l := NewLexer("let y", 1)
	first, _ := l.PeekToken()
	second, _ := l.PeekToken()
	if first != second {
		t.Errorf("Expected identical peeks, got %v and %v", first, second)
	}
	next, _ := l.NextToken()
	if next != first {
		t.Errorf("Expected NextToken to return the peeked token, got %v", next)
	}
}

func TestLexer_InvalidLexeme(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		lexeme   string
		column   int
		validPre int
	}{
		{"dollar sign", "let $x := 1", "$", 5, 1},
		{"single dot", "for i in 1.3", ".", 11, 4},
		{"leading underscore", "display _tmp", "_", 9, 1},
		{"exclamation", "if a != b:", "!", 6, 2},
		{"non-ascii letter", "let ä := 1", "ä", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := TokenizeLine(tt.input, 2)
			if err == nil {
				t.Fatalf("Expected lexical error, got tokens %v", tokens)
			}
			if len(tokens) != tt.validPre {
				t.Errorf("Expected %d valid tokens before the error, got %d", tt.validPre, len(tokens))
			}
			if !mdwerror.HasCode(err, mdwerror.CodeLexical) {
				t.Errorf("Expected KYLANG_LEXICAL, got %s", mdwerror.GetCode(err))
			}
			want := "Invalid lexeme \"" + tt.lexeme + "\" at line 2"
			if !strings.HasPrefix(err.Error(), want) {
				t.Errorf("Expected message starting with %q, got %q", want, err.Error())
			}
			mdwErr := err.(*mdwerror.Error)
			if mdwErr.IntDetail("column") != tt.column {
				t.Errorf("Expected column %d, got %d", tt.column, mdwErr.IntDetail("column"))
			}
		})
	}
}

func TestLexer_NulByteIsALexeme(t *testing.T) {
	tokens, err := TokenizeLine("display 1\x00 $ junk", 1)
	if err == nil {
		t.Fatalf("Expected lexical error, got tokens %v", tokens)
	}
	if len(tokens) != 2 {
		t.Errorf("Expected 2 valid tokens before the error, got %d", len(tokens))
	}
	want := `Invalid lexeme "\x00" at line 1, column 10`
	if !strings.HasPrefix(err.Error(), want) {
		t.Errorf("Expected message starting with %q, got %q", want, err.Error())
	}
}

func TestIsBlankLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"", true},
		{" \t\r\f\v", true},
		{"\u00a0", false},
		{"\u0085", false},
		{"\x00", false},
		{"\tx", false},
	}
	for _, tt := range tests {
		if got := IsBlankLine(tt.line); got != tt.want {
			t.Errorf("IsBlankLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestNewToken(t *testing.T) {
	tests := []struct {
		name     string
		row, col int
		text     string
		wantKind TokenKind
		wantText string
		wantCode mdwerror.Code
	}{
		{"keyword upper", 1, 1, "WHILE", KindWhile, "while", ""},
		{"keyword mixed", 1, 1, "ElIf", KindElif, "elif", ""},
		{"identifier", 1, 1, "Total", KindIdentifier, "Total", ""},
		{"integer", 1, 1, "007", KindIntLit, "007", ""},
		{"equality synonym", 1, 1, "==", KindEQ, "==", ""},
		{"explicit eol", 1, 1, ";", KindEOL, ";", ""},
		{"blank text", 1, 1, "  ", 0, "", mdwerror.CodeLexical},
		{"non-ascii space", 1, 1, "\u00a0", 0, "", mdwerror.CodeLexical},
		{"unknown text", 1, 1, "#", 0, "", mdwerror.CodeLexical},
		{"negative row", -1, 1, "x", 0, "", mdwerror.CodeInternal},
		{"negative column", 1, -3, "x", 0, "", mdwerror.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewToken(tt.row, tt.col, tt.text)
			if tt.wantCode != "" {
				if err == nil {
					t.Fatalf("Expected error, got %v", got)
				}
				if mdwerror.GetCode(err) != tt.wantCode {
					t.Errorf("Expected code %s, got %s", tt.wantCode, mdwerror.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got.Kind() != tt.wantKind {
				t.Errorf("Expected kind %s, got %s", tt.wantKind, got.Kind())
			}
			if got.Text() != tt.wantText {
				t.Errorf("Expected text %q, got %q", tt.wantText, got.Text())
			}
		})
	}
}

func TestTokenKind_Predicates(t *testing.T) {
	for _, k := range []TokenKind{KindLT, KindLE, KindGT, KindGE, KindEQ, KindNE} {
		if !k.IsRelational() {
			t.Errorf("Expected %s to be relational", k)
		}
	}
	if KindRange.IsRelational() {
		t.Error("Expected RANGE not to be relational")
	}
	for kw, k := range keywords {
		if !k.IsKeyword() {
			t.Errorf("Expected %s (%s) to be a keyword", kw, k)
		}
	}
	if KindIdentifier.IsKeyword() {
		t.Error("Expected IDENTIFIER not to be a keyword")
	}
	if TokenKind(999).String() != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN for invalid kind, got %s", TokenKind(999))
	}
}

func TestCountIndent(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"display x", 0},
		{"\tdisplay x", 1},
		{"\t\tdisplay x", 2},
		{"    display x", 1},
		{"        display x", 2},
		{"  display x", 0},
		{"      display x", 1},
		{"\t    display x", 2},
		{"  \t  display x", 2},
		{"display\tx", 0},
	}
	for _, tt := range tests {
		if got := CountIndent(tt.line); got != tt.want {
			t.Errorf("CountIndent(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}
