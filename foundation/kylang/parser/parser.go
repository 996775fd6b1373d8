// File: parser.go
// Title: kylang Recursive Descent Parser
// Description: Builds an ast.Program from source lines. Statements are
//              parsed one line at a time; control statements pull in the
//              following, deeper indented lines as their blocks. Parsing
//              stops at the first error.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial parser implementation

package parser

import (
	"fmt"
	"strconv"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/foundation/kylang/ast"
)

// Parser implements recursive descent parsing for kylang
type Parser struct {
	logger  *mdwlog.Logger
	options Options

	lines   []string
	next    int // index of the first unconsumed line
	lexer   *Lexer
	current Token
}

// Options configures parser behavior
type Options struct {
	Logger *mdwlog.Logger
}

// New creates a new parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	return &Parser{
		logger:  opts.Logger.WithField("component", "kylang-parser"),
		options: opts,
	}
}

// Parse parses lines with a parser using default options
func Parse(lines []string) (*ast.Program, error) {
	return New(Options{}).Parse(lines)
}

// Parse parses the complete program. A Parser may be reused but not
// shared between goroutines.
func (p *Parser) Parse(lines []string) (*ast.Program, error) {
	p.lines = lines
	p.next = 0
	p.lexer = nil

	p.logger.Debug("Starting kylang parsing", mdwlog.Fields{"lines": len(lines)})

	stmts, err := p.parseBlock(0)
	if err != nil {
		p.logger.Debug("kylang parsing failed", mdwlog.Fields{"error": err.Error()})
		return nil, err
	}

	p.logger.Debug("kylang parsing completed", mdwlog.Fields{"statements": len(stmts)})
	return &ast.Program{Stmts: stmts}, nil
}

// parseBlock parses consecutive statements indented exactly depth levels.
// A shallower line ends the block and is left for the caller.
func (p *Parser) parseBlock(depth int) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		idx, ok := p.nextContentLine()
		if !ok {
			return stmts, nil
		}

		level := CountIndent(p.lines[idx])
		if level < depth {
			return stmts, nil
		}
		if level > depth {
			if depth == 0 {
				return nil, syntaxError(idx+1, 1, fmt.Sprintf("Unexpected indentation at line %d", idx+1))
			}
			return nil, syntaxError(idx+1, 1,
				fmt.Sprintf("Expected %d indentation level(s) at line %d, found %d", depth, idx+1, level)).
				WithDetail("expected", depth).
				WithDetail("found", level)
		}

		if err := p.loadLine(idx); err != nil {
			return nil, err
		}
		stmt, err := p.parseStatement(depth)
		if err != nil {
			return nil, err
		}
		p.logger.Trace("Statement parsed", mdwlog.Fields{
			"row":   stmt.Position().Row,
			"depth": depth,
			"stmt":  stmt.String(),
		})
		stmts = append(stmts, stmt)
	}
}

// parseStatement parses the statement starting at the current token
func (p *Parser) parseStatement(depth int) (ast.Stmt, error) {
	switch p.current.Kind() {
	case KindLet, KindDisplay, KindInput:
		stmt, err := p.parseSimple()
		if err != nil {
			return nil, err
		}
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		return stmt, nil
	case KindIf:
		return p.parseIf(depth)
	case KindWhile:
		return p.parseWhile(depth)
	case KindFor:
		return p.parseFor(depth)
	default:
		return nil, p.expected("statement")
	}
}

// parseSimple parses a one-line statement without its terminator
func (p *Parser) parseSimple() (ast.Stmt, error) {
	start := p.current
	switch start.Kind() {
	case KindLet:
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.match(KindIdentifier)
		if err != nil {
			return nil, err
		}
		if _, err := p.match(KindAssign); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Name: name.Text(), Value: value, Pos: position(start)}, nil

	case KindDisplay:
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Display{Value: value, Pos: position(start)}, nil

	case KindInput:
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.match(KindIdentifier)
		if err != nil {
			return nil, err
		}
		return &ast.Input{Name: name.Text(), Pos: position(start)}, nil

	default:
		return nil, p.expected("let, display or input")
	}
}

func (p *Parser) parseWhile(depth int) (ast.Stmt, error) {
	start := p.current
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseBoolExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(KindColon); err != nil {
		return nil, err
	}
	body, err := p.parseBodyLine(depth, start)
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body, Pos: position(start)}, nil
}

func (p *Parser) parseFor(depth int) (ast.Stmt, error) {
	start := p.current
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.match(KindIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.match(KindIn); err != nil {
		return nil, err
	}
	from, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(KindRange); err != nil {
		return nil, err
	}
	to, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(KindColon); err != nil {
		return nil, err
	}
	body, err := p.parseBodyLine(depth, start)
	if err != nil {
		return nil, err
	}
	return &ast.For{Var: name.Text(), From: from, To: to, Body: body, Pos: position(start)}, nil
}

func (p *Parser) parseIf(depth int) (ast.Stmt, error) {
	start := p.current
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseBoolExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(KindColon); err != nil {
		return nil, err
	}
	then, inline, err := p.parseBody(depth, start)
	if err != nil {
		return nil, err
	}

	node := &ast.If{Cond: cond, Then: then, Pos: position(start)}
	if err := p.parseBranches(node, depth, inline); err != nil {
		return nil, err
	}
	return node, nil
}

// parseBranches collects the elif and else branches of node. They either
// follow an inline body on the same line or start a later line at the
// indentation level of the if itself.
func (p *Parser) parseBranches(node *ast.If, depth int, inline bool) error {
	for {
		if inline {
			if !p.current.Is(KindElif) && !p.current.Is(KindElse) {
				if err := p.expectEnd(); err != nil {
					return err
				}
				inline = false
				continue
			}
		} else {
			idx, ok := p.nextContentLine()
			if !ok || CountIndent(p.lines[idx]) != depth || !p.startsBranch(idx) {
				return nil
			}
			if err := p.loadLine(idx); err != nil {
				return err
			}
		}

		start := p.current
		if err := p.advance(); err != nil {
			return err
		}

		if start.Is(KindElse) {
			if _, err := p.match(KindColon); err != nil {
				return err
			}
			body, err := p.parseBodyLine(depth, start)
			if err != nil {
				return err
			}
			node.Else = body
			return nil
		}

		cond, err := p.parseBoolExpr()
		if err != nil {
			return err
		}
		if _, err := p.match(KindColon); err != nil {
			return err
		}
		body, inl, err := p.parseBody(depth, start)
		if err != nil {
			return err
		}
		node.Elifs = append(node.Elifs, ast.ElifClause{Cond: cond, Body: body, Pos: position(start)})
		inline = inl
	}
}

// parseBody parses what follows the colon of a control header: either one
// inline simple statement or, when the line ends, an indented block. For an
// inline body the line terminator is left unconsumed.
func (p *Parser) parseBody(depth int, header Token) (*ast.Block, bool, error) {
	if !p.current.Is(KindEOL) {
		stmt, err := p.parseSimple()
		if err != nil {
			return nil, false, err
		}
		return &ast.Block{Stmts: []ast.Stmt{stmt}, Pos: stmt.Position()}, true, nil
	}

	if err := p.expectEnd(); err != nil {
		return nil, false, err
	}
	stmts, err := p.parseBlock(depth + 1)
	if err != nil {
		return nil, false, err
	}
	if len(stmts) == 0 {
		return nil, false, syntaxError(header.Row(), header.Column(),
			fmt.Sprintf("Expected indented block at line %d", header.Row()))
	}
	return &ast.Block{Stmts: stmts, Pos: stmts[0].Position()}, false, nil
}

// parseBodyLine is parseBody for headers that cannot be continued on the
// same line
func (p *Parser) parseBodyLine(depth int, header Token) (*ast.Block, error) {
	body, inline, err := p.parseBody(depth, header)
	if err != nil {
		return nil, err
	}
	if inline {
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// Expressions

func (p *Parser) parseBoolExpr() (ast.BoolExpr, error) {
	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	opTok := p.current
	op, ok := relOps[opTok.Kind()]
	if !ok {
		return nil, p.expected("relational operator")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Compare{Op: op, Left: left, Right: right, Pos: left.Position()}, nil
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.current.Is(KindAdd) || p.current.Is(KindSubtract) {
		op := ast.OpAdd
		if p.current.Is(KindSubtract) {
			op = ast.OpSub
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Pos: left.Position()}
	}
	return left, nil
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.current.Is(KindMultiply) || p.current.Is(KindDivide) {
		op := ast.OpMul
		if p.current.Is(KindDivide) {
			op = ast.OpDiv
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Pos: left.Position()}
	}
	return left, nil
}

// parseFactor parses a factor. A leading minus applies to the complete
// expression that follows it.
func (p *Parser) parseFactor() (ast.Expr, error) {
	tok := p.current
	switch tok.Kind() {
	case KindLeftParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.match(KindRightParen); err != nil {
			return nil, err
		}
		return &ast.Paren{X: inner, Pos: position(tok)}, nil

	case KindSubtract:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Neg{X: operand, Pos: position(tok)}, nil

	case KindIntLit:
		value, err := strconv.ParseInt(tok.Text(), 10, 64)
		if err != nil {
			return nil, syntaxError(tok.Row(), tok.Column(),
				fmt.Sprintf("Integer literal %s out of range at row %d, column %d", tok.Text(), tok.Row(), tok.Column()))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.IntLit{Value: value, Pos: position(tok)}, nil

	case KindIdentifier:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Ident{Name: tok.Text(), Pos: position(tok)}, nil

	default:
		return nil, p.expected("expression")
	}
}

var relOps = map[TokenKind]ast.RelOp{
	KindLT: ast.RelLT,
	KindLE: ast.RelLE,
	KindGT: ast.RelGT,
	KindGE: ast.RelGE,
	KindEQ: ast.RelEQ,
	KindNE: ast.RelNE,
}

// Utility methods

// nextContentLine returns the index of the next non-blank line and marks
// skipped blank lines as consumed
func (p *Parser) nextContentLine() (int, bool) {
	for p.next < len(p.lines) && IsBlankLine(p.lines[p.next]) {
		p.next++
	}
	if p.next >= len(p.lines) {
		return 0, false
	}
	return p.next, true
}

// loadLine makes line idx the current line and reads its first token
func (p *Parser) loadLine(idx int) error {
	p.lexer = NewLexer(p.lines[idx], idx+1)
	p.next = idx + 1
	return p.advance()
}

// startsBranch reports whether line idx begins with elif or else
func (p *Parser) startsBranch(idx int) bool {
	tok, err := NewLexer(p.lines[idx], idx+1).PeekToken()
	return err == nil && (tok.Is(KindElif) || tok.Is(KindElse))
}

// advance moves to the next token
func (p *Parser) advance() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

// match consumes the current token if it has the expected kind
func (p *Parser) match(kind TokenKind) (Token, error) {
	tok := p.current
	if !tok.Is(kind) {
		return Token{}, p.expected(kind.String())
	}
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// expectEnd consumes the end of a simple statement. Nothing may follow an
// explicit ';'.
func (p *Parser) expectEnd() error {
	if _, err := p.match(KindEOL); err != nil {
		return err
	}
	if !p.current.Is(KindEOL) {
		return p.expected("end of line")
	}
	return nil
}

// expected builds the error for an unexpected current token
func (p *Parser) expected(what string) *mdwerror.Error {
	tok := p.current
	return syntaxError(tok.Row(), tok.Column(),
		fmt.Sprintf("Parse error at row %d, column %d: expected %s but found %s (%q)",
			tok.Row(), tok.Column(), what, tok.Kind(), tok.Text())).
		WithDetail("expected", what).
		WithDetail("found", tok.Kind().String())
}

func syntaxError(row, column int, message string) *mdwerror.Error {
	return mdwerror.New(message).
		WithCode(mdwerror.CodeSyntax).
		WithOperation("parse").
		WithDetail("row", row).
		WithDetail("column", column)
}

func position(tok Token) ast.Position {
	return ast.Position{Row: tok.Row(), Column: tok.Column()}
}
