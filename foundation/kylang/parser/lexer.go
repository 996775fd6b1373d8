// File: lexer.go
// Title: kylang Lexical Analyzer
// Description: Splits one source line into lexemes and hands them out as
//              tokens. Two-character operators are matched before their
//              one-character prefixes. Characters that start no valid
//              lexeme are still emitted so that the failure is reported by
//              token construction with its exact position.
// Author: msto63
// Version: v0.1.1
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial lexer implementation
// - 2026-10-19 v0.1.1: End of line tracked by flag so NUL is scanned as a lexeme

package parser

// lexeme is raw text with its 1-based column
type lexeme struct {
	text   string
	column int
}

// Lexer produces the tokens of a single source line
type Lexer struct {
	input   []rune
	row     int
	readPos int
	ch      rune
	column  int
	eof     bool

	lexemes []lexeme
	next    int
	eol     Token
}

var twoCharOperators = map[string]bool{
	":=": true, "<=": true, ">=": true, "==": true, "/=": true, "..": true,
}

var oneCharOperators = map[rune]bool{
	'+': true, '-': true, '*': true, '/': true, '(': true, ')': true,
	';': true, ':': true, '<': true, '>': true, '=': true,
}

// NewLexer scans line (row is its 1-based line number)
func NewLexer(line string, row int) *Lexer {
	l := &Lexer{input: []rune(line), row: row}
	l.readChar()
	l.scan()
	l.eol = Token{kind: KindEOL, text: EOLText, row: row, column: len(l.input) + 1}
	return l
}

// NextToken consumes and returns the next token. Once the line is
// exhausted it returns the end-of-line token on every call.
func (l *Lexer) NextToken() (Token, error) {
	tok, err := l.PeekToken()
	if l.next < len(l.lexemes) {
		l.next++
	}
	return tok, err
}

// PeekToken returns the next token without consuming it
func (l *Lexer) PeekToken() (Token, error) {
	if l.next >= len(l.lexemes) {
		return l.eol, nil
	}
	lx := l.lexemes[l.next]
	return NewToken(l.row, lx.column, lx.text)
}

// Exhausted reports whether only the implicit end-of-line token remains
func (l *Lexer) Exhausted() bool {
	return l.next >= len(l.lexemes)
}

// Tokenize returns every remaining token including the final end-of-line
// token, stopping at the first invalid lexeme
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		exhausted := l.Exhausted()
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if exhausted {
			return tokens, nil
		}
	}
}

// TokenizeLine is a convenience wrapper around NewLexer and Tokenize
func TokenizeLine(line string, row int) ([]Token, error) {
	return NewLexer(line, row).Tokenize()
}

func (l *Lexer) scan() {
	for {
		l.skipWhitespace()
		if l.eof {
			return
		}
		col := l.column

		switch {
		case twoCharOperators[string([]rune{l.ch, l.peekChar()})]:
			text := string([]rune{l.ch, l.peekChar()})
			l.readChar()
			l.readChar()
			l.emit(text, col)
		case oneCharOperators[l.ch]:
			text := string(l.ch)
			l.readChar()
			l.emit(text, col)
		case l.ch < 128 && isDigit(byte(l.ch)):
			l.emit(l.readWhile(func(r rune) bool { return r < 128 && isDigit(byte(r)) }), col)
		case l.ch < 128 && isLetter(byte(l.ch)):
			l.emit(l.readWhile(func(r rune) bool {
				return r < 128 && (isLetter(byte(r)) || isDigit(byte(r)) || r == '_')
			}), col)
		default:
			text := string(l.ch)
			l.readChar()
			l.emit(text, col)
		}
	}
}

func (l *Lexer) emit(text string, column int) {
	l.lexemes = append(l.lexemes, lexeme{text: text, column: column})
}

// readChar advances to the next rune and sets eof past the last one
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.eof = true
	} else {
		l.ch = l.input[l.readPos]
	}
	l.readPos++
	l.column = l.readPos
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) readWhile(accept func(rune) bool) string {
	start := l.readPos - 1
	for !l.eof && accept(l.ch) {
		l.readChar()
	}
	return string(l.input[start : l.readPos-1])
}

func (l *Lexer) skipWhitespace() {
	for !l.eof && isLineSpace(l.ch) {
		l.readChar()
	}
}

// isLineSpace reports whether r separates lexemes. Any other rune,
// including NUL and non-ASCII spaces, belongs to a lexeme.
func isLineSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\f' || r == '\v'
}
