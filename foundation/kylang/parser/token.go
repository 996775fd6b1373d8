// File: token.go
// Title: kylang Token Model
// Description: Token kinds and immutable tokens. The kind of a token is
//              derived from its text when the token is constructed.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial token model

package parser

import (
	"fmt"
	"strings"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwstringx "github.com/msto63/kylang/foundation/utils/stringx"
)

// TokenKind is the classification of a lexeme
type TokenKind int

const (
	KindIllegal TokenKind = iota

	// Arithmetic
	KindAdd      // +
	KindSubtract // -
	KindMultiply // *
	KindDivide   // /

	// Delimiters
	KindLeftParen  // (
	KindRightParen // )
	KindColon      // :
	KindAssign     // :=
	KindRange      // ..
	KindEOL        // ; and the implicit end of every line

	// Relational
	KindLT // <
	KindLE // <=
	KindGT // >
	KindGE // >=
	KindEQ // = or ==
	KindNE // /=

	// Literals and names
	KindIntLit
	KindIdentifier

	// Keywords
	KindLet
	KindDisplay
	KindInput
	KindIf
	KindElif
	KindElse
	KindWhile
	KindFor
	KindIn
)

// EOLText is the lexeme appended to every line
const EOLText = ";"

var kindNames = map[TokenKind]string{
	KindIllegal:    "ILLEGAL",
	KindAdd:        "ADD",
	KindSubtract:   "SUBTRACT",
	KindMultiply:   "MULTIPLY",
	KindDivide:     "DIVIDE",
	KindLeftParen:  "LEFT_PAREN",
	KindRightParen: "RIGHT_PAREN",
	KindColon:      "COLON",
	KindAssign:     "ASSIGN",
	KindRange:      "RANGE",
	KindEOL:        "EOL",
	KindLT:         "LT",
	KindLE:         "LE",
	KindGT:         "GT",
	KindGE:         "GE",
	KindEQ:         "EQ",
	KindNE:         "NE",
	KindIntLit:     "INT_LIT",
	KindIdentifier: "IDENTIFIER",
	KindLet:        "LET",
	KindDisplay:    "DISPLAY",
	KindInput:      "INPUT",
	KindIf:         "IF",
	KindElif:       "ELIF",
	KindElse:       "ELSE",
	KindWhile:      "WHILE",
	KindFor:        "FOR",
	KindIn:         "IN",
}

// String returns the upper-case name of the kind
func (k TokenKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsRelational reports whether k is a relational operator
func (k TokenKind) IsRelational() bool {
	return k >= KindLT && k <= KindNE
}

// IsKeyword reports whether k is a reserved word
func (k TokenKind) IsKeyword() bool {
	return k >= KindLet && k <= KindIn
}

var operators = map[string]TokenKind{
	"+":  KindAdd,
	"-":  KindSubtract,
	"*":  KindMultiply,
	"/":  KindDivide,
	"(":  KindLeftParen,
	")":  KindRightParen,
	":":  KindColon,
	":=": KindAssign,
	"..": KindRange,
	";":  KindEOL,
	"<":  KindLT,
	"<=": KindLE,
	">":  KindGT,
	">=": KindGE,
	"=":  KindEQ,
	"==": KindEQ,
	"/=": KindNE,
}

var keywords = map[string]TokenKind{
	"let":     KindLet,
	"display": KindDisplay,
	"input":   KindInput,
	"if":      KindIf,
	"elif":    KindElif,
	"else":    KindElse,
	"while":   KindWhile,
	"for":     KindFor,
	"in":      KindIn,
}

// Token is an immutable classified lexeme
type Token struct {
	kind   TokenKind
	text   string
	row    int
	column int
}

// NewToken classifies text and builds a token. It fails with a lexical
// error when text is blank or matches no token pattern, and with an
// internal error when row or column is negative.
func NewToken(row, column int, text string) (Token, error) {
	if row < 0 || column < 0 {
		return Token{}, mdwerror.Newf("invalid token position %d:%d", row, column).
			WithCode(mdwerror.CodeInternal).
			WithOperation("token.new")
	}
	if mdwstringx.IsBlankFunc(text, isLineSpace) {
		return Token{}, lexicalError(row, column, text)
	}

	kind, canonical, ok := Classify(text)
	if !ok {
		return Token{}, lexicalError(row, column, text)
	}
	return Token{kind: kind, text: canonical, row: row, column: column}, nil
}

// Classify returns the kind of text and its canonical spelling. Keywords
// are matched case-insensitively and canonicalised to lower case; all
// other lexemes keep their spelling.
func Classify(text string) (TokenKind, string, bool) {
	if kind, ok := operators[text]; ok {
		return kind, text, true
	}
	lower := strings.ToLower(text)
	if kind, ok := keywords[lower]; ok {
		return kind, lower, true
	}
	if isIntLiteral(text) {
		return KindIntLit, text, true
	}
	if isIdentifier(text) {
		return KindIdentifier, text, true
	}
	return KindIllegal, text, false
}

// Kind returns the token classification
func (t Token) Kind() TokenKind { return t.kind }

// Text returns the lexeme, lower-cased for keywords
func (t Token) Text() string { return t.text }

// Row returns the 1-based source line
func (t Token) Row() int { return t.row }

// Column returns the 1-based column within the source line
func (t Token) Column() int { return t.column }

// Is reports whether the token has kind k
func (t Token) Is(k TokenKind) bool { return t.kind == k }

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("%s(%s)@%d:%d", t.kind, t.text, t.row, t.column)
}

func lexicalError(row, column int, text string) *mdwerror.Error {
	return mdwerror.Newf("Invalid lexeme %q at line %d, column %d", text, row, column).
		WithCode(mdwerror.CodeLexical).
		WithOperation("lex").
		WithDetail("row", row).
		WithDetail("column", column).
		WithDetail("lexeme", text)
}

func isIntLiteral(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isLetter(s[i]) && !isDigit(s[i]) && s[i] != '_' {
			return false
		}
	}
	return true
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
