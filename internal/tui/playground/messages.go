// ============================================================================
// kylang - Teaching Language Interpreter
// ============================================================================
//
// Package:     playground
// Description: Message types for async runs and saves in the playground
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package playground

import (
	"github.com/msto63/kylang/foundation/kylang"
)

// Message types for tea.Cmd async operations

// runFinishedMsg is sent when a program run ends
type runFinishedMsg struct {
	output string
	result *kylang.Result
	err    error
}

// savedMsg is sent when the editor content was written to disk
type savedMsg struct {
	path string
	err  error
}
