// File: doc.go
// Title: kylang Abstract Syntax Tree Package Documentation
// Description: Defines the syntax tree produced by the kylang parser and
//              consumed by the executor.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial AST implementation

/*
Package ast defines the Abstract Syntax Tree of kylang programs.

The tree is a closed set of node types grouped into three families:

  - Expr: integer-valued expressions (IntLit, Ident, Neg, Paren, Binary)
  - BoolExpr: boolean-valued expressions (Compare)
  - Stmt: statements executed for effect (Assign, Display, Input, If,
    While, For, Block)

The marker methods of each family are unexported, so no type outside this
package can join a family and a type switch over the listed variants is
exhaustive. Nodes are built once by the parser and never mutated afterwards.

Besides the node types the package offers Inspect for traversal, Format
for canonical source output, Print for an indented tree dump and ToMap for
JSON/YAML serialisation.
*/
package ast
