// File: doc.go
// Title: kylang Package Documentation
// Description: Entry point documentation for the kylang interpreter
//              facade that combines parser and executor.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial documentation

/*
Package kylang provides a small interpreter for the kylang teaching
language: integer variables, arithmetic, relational conditions, if/elif/else,
while and inclusive for loops, with tab (or four space) indentation marking
blocks.

	engine := kylang.New(kylang.Options{Output: os.Stdout})
	result, err := engine.Run(ctx, "let x := 3\nfor i in 1 .. x: display i")
	if kylang.IsSyntax(err) {
		...
	}

The subpackages hold the pieces:

  - parser: token model, line lexer and recursive descent parser
  - ast: node types, source formatter and tree dumps
  - memory: the case-insensitive variable store
  - executor: the tree-walking evaluator

Every failure is an *mdwerror.Error. Language errors carry one of the codes
KYLANG_LEXICAL, KYLANG_SYNTAX, KYLANG_ARITHMETIC or KYLANG_INPUT_FORMAT and
the details "row" and "column".
*/
package kylang
