// File: doc.go
// Title: kylang Parser Package Documentation
// Description: Token model, line lexer and indentation-aware recursive
//              descent parser for kylang.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial parser package

/*
Package parser turns kylang source lines into an ast.Program.

Lexing is line based: a Lexer is created for one source line and hands out
tokens until the line is exhausted, after which it returns the end-of-line
token forever. The Parser walks the source line by line, measuring the
leading indentation of each line (one tab, or four spaces, per level) to
find where blocks begin and end.

Errors are *mdwerror.Error values with code KYLANG_LEXICAL or
KYLANG_SYNTAX and the details "row" and "column".

Grammar:

	Program   ::= { Statement }
	Statement ::= Assign | Display | Input | If | While | For
	Assign    ::= "let" Id ":=" Expr
	Display   ::= "display" Expr
	Input     ::= "input" Id
	If        ::= "if" BoolExpr ":" Body { "elif" BoolExpr ":" Body } [ "else" ":" Body ]
	While     ::= "while" BoolExpr ":" Body
	For       ::= "for" Id "in" Expr ".." Expr ":" Body
	Body      ::= Simple | NEWLINE IndentedBlock
	BoolExpr  ::= Expr RelOp Expr
	Expr      ::= Term { ("+"|"-") Term }
	Term      ::= Factor { ("*"|"/") Factor }
	Factor    ::= "(" Expr ")" | "-" Expr | IntLit | Id
*/
package parser
