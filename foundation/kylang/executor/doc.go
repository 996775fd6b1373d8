// File: doc.go
// Title: kylang Executor Package Documentation
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial executor package

/*
Package executor runs kylang programs by walking their syntax tree.

Every statement and expression is evaluated against a memory.Store passed
explicitly by the caller. Children are evaluated before their parent and
left operands before right ones. The first runtime fault (division by
zero, malformed input) ends the run and is returned as an
*mdwerror.Error; the executor never terminates the process.

A run can be bounded by a context and by a statement budget
(Options.MaxSteps). With a background context and no budget a run ends
only when the program does.
*/
package executor
