// ============================================================================
// kylang - Teaching Language Interpreter
// ============================================================================
//
// Package:     version
// Description: Central version management for the CLI and its components
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for kylang components
const (
	// Release version of the kylang distribution
	Release = "0.1.0"

	// Language level accepted by the parser
	Language = "1.0.0"

	// Component versions
	Engine     = "0.1.0"
	Server     = "0.1.0"
	Playground = "0.1.0"
	History    = "0.1.0"
)

// Build metadata, set via -ldflags "-X github.com/msto63/kylang/pkg/core/version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "language":
		return Language
	case "engine":
		return Engine
	case "server":
		return Server
	case "playground":
		return Playground
	case "history":
		return History
	default:
		return Release
	}
}

// Info returns a one-line build description
func Info() string {
	return fmt.Sprintf("kylang %s (language %s, commit %s, built %s, %s %s/%s)",
		Release, Language, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
