// File: nodes.go
// Title: kylang AST Node Definitions
// Description: Defines all AST node types for expressions, conditions and
//              statements together with their source positions.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial AST node definitions

package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Node represents the base interface for all AST nodes
type Node interface {
	// String returns the node in source form
	String() string

	// Position returns the source position of the node
	Position() Position
}

// Position represents a position in the source code
type Position struct {
	Row    int // Line number (1-based)
	Column int // Column number (1-based)
}

// String returns "row:column"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}

// Expr is an expression producing an integer
type Expr interface {
	Node
	exprNode()
}

// BoolExpr is an expression producing a boolean
type BoolExpr interface {
	Node
	boolNode()
}

// Stmt is a statement executed for its effect
type Stmt interface {
	Node
	stmtNode()
}

// BinaryOp is an arithmetic operator
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
)

// String returns the operator symbol
func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// RelOp is a relational operator
type RelOp int

const (
	RelLT RelOp = iota
	RelLE
	RelGT
	RelGE
	RelEQ
	RelNE
)

// String returns the operator symbol
func (op RelOp) String() string {
	switch op {
	case RelLT:
		return "<"
	case RelLE:
		return "<="
	case RelGT:
		return ">"
	case RelGE:
		return ">="
	case RelEQ:
		return "="
	case RelNE:
		return "/="
	default:
		return "?"
	}
}

// Expression nodes

// IntLit is an integer literal
type IntLit struct {
	Value int64
	Pos   Position
}

// Ident is a variable reference. Name keeps the spelling used in source.
type Ident struct {
	Name string
	Pos  Position
}

// Neg negates the whole expression that follows the minus sign
type Neg struct {
	X   Expr
	Pos Position
}

// Paren is a parenthesized expression
type Paren struct {
	X   Expr
	Pos Position
}

// Binary is a left-associative arithmetic operation
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
	Pos   Position
}

func (e *IntLit) String() string { return strconv.FormatInt(e.Value, 10) }
func (e *Ident) String() string  { return e.Name }
func (e *Neg) String() string    { return "-" + e.X.String() }
func (e *Paren) String() string  { return "(" + e.X.String() + ")" }
func (e *Binary) String() string {
	return e.Left.String() + " " + e.Op.String() + " " + e.Right.String()
}

func (e *IntLit) Position() Position { return e.Pos }
func (e *Ident) Position() Position  { return e.Pos }
func (e *Neg) Position() Position    { return e.Pos }
func (e *Paren) Position() Position  { return e.Pos }
func (e *Binary) Position() Position { return e.Pos }

func (*IntLit) exprNode() {}
func (*Ident) exprNode()  {}
func (*Neg) exprNode()    {}
func (*Paren) exprNode()  {}
func (*Binary) exprNode() {}

// Condition nodes

// Compare is a single, non-chaining relational comparison
type Compare struct {
	Op    RelOp
	Left  Expr
	Right Expr
	Pos   Position
}

func (c *Compare) String() string {
	return c.Left.String() + " " + c.Op.String() + " " + c.Right.String()
}
func (c *Compare) Position() Position { return c.Pos }
func (*Compare) boolNode()            {}

// Statement nodes

// Assign is "let name := value"
type Assign struct {
	Name  string
	Value Expr
	Pos   Position
}

// Display is "display expr"
type Display struct {
	Value Expr
	Pos   Position
}

// Input is "input name"
type Input struct {
	Name string
	Pos  Position
}

// ElifClause is one "elif cond:" branch of an If
type ElifClause struct {
	Cond BoolExpr
	Body *Block
	Pos  Position
}

// If selects the first branch whose condition holds. Else may be nil.
type If struct {
	Cond  BoolExpr
	Then  *Block
	Elifs []ElifClause
	Else  *Block
	Pos   Position
}

// While repeats Body while Cond holds
type While struct {
	Cond BoolExpr
	Body *Block
	Pos  Position
}

// For binds Var to each value From..To inclusive
type For struct {
	Var  string
	From Expr
	To   Expr
	Body *Block
	Pos  Position
}

// Block is an ordered statement sequence
type Block struct {
	Stmts []Stmt
	Pos   Position
}

func (s *Assign) String() string  { return "let " + s.Name + " := " + s.Value.String() }
func (s *Display) String() string { return "display " + s.Value.String() }
func (s *Input) String() string   { return "input " + s.Name }
func (s *If) String() string      { return "if " + s.Cond.String() + ":" }
func (s *While) String() string   { return "while " + s.Cond.String() + ":" }
func (s *For) String() string {
	return "for " + s.Var + " in " + s.From.String() + " .. " + s.To.String() + ":"
}
func (s *Block) String() string {
	parts := make([]string, len(s.Stmts))
	for i, st := range s.Stmts {
		parts[i] = st.String()
	}
	return strings.Join(parts, "; ")
}

func (s *Assign) Position() Position  { return s.Pos }
func (s *Display) Position() Position { return s.Pos }
func (s *Input) Position() Position   { return s.Pos }
func (s *If) Position() Position      { return s.Pos }
func (s *While) Position() Position   { return s.Pos }
func (s *For) Position() Position     { return s.Pos }
func (s *Block) Position() Position   { return s.Pos }

func (*Assign) stmtNode()  {}
func (*Display) stmtNode() {}
func (*Input) stmtNode()   {}
func (*If) stmtNode()      {}
func (*While) stmtNode()   {}
func (*For) stmtNode()     {}
func (*Block) stmtNode()   {}

// Program is the ordered list of top-level statements
type Program struct {
	Stmts []Stmt
}

// String returns the program in canonical source form
func (p *Program) String() string {
	return Format(p)
}

// Position returns the start of the program
func (p *Program) Position() Position {
	return Position{Row: 1, Column: 1}
}

// IsSimple reports whether s occupies exactly one source line
func IsSimple(s Stmt) bool {
	switch s.(type) {
	case *Assign, *Display, *Input:
		return true
	default:
		return false
	}
}
