// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error codes used by the interpreter core and by the
//              surrounding tooling (CLI, history store, playground server).
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Language codes for lexer, parser and evaluator

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Language
	CodeLexical     Code = "KYLANG_LEXICAL"
	CodeSyntax      Code = "KYLANG_SYNTAX"
	CodeArithmetic  Code = "KYLANG_ARITHMETIC"
	CodeInputFormat Code = "KYLANG_INPUT_FORMAT"
	CodeCancelled   Code = "KYLANG_CANCELLED"
	CodeStepLimit   Code = "KYLANG_STEP_LIMIT"

	// Storage and I/O
	CodeFileNotFound  Code = "FILE_NOT_FOUND"
	CodeIOError       Code = "IO_ERROR"
	CodeDatabaseError Code = "DATABASE_ERROR"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout,
		CodeLexical, CodeSyntax, CodeArithmetic, CodeInputFormat, CodeCancelled, CodeStepLimit,
		CodeFileNotFound, CodeIOError, CodeDatabaseError,
		CodeConfigError, CodeInvalidConfig:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeLexical, CodeSyntax:
		return "compile"
	case CodeArithmetic, CodeInputFormat, CodeCancelled, CodeStepLimit:
		return "runtime"
	case CodeFileNotFound, CodeIOError, CodeDatabaseError:
		return "storage"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	default:
		return "generic"
	}
}

// IsLanguage reports whether the code describes a failure of a kylang program
// rather than of the tooling around it.
func (c Code) IsLanguage() bool {
	cat := c.Category()
	return cat == "compile" || cat == "runtime"
}

// HTTPStatus returns the HTTP status code used by the playground server
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeFileNotFound:
		return 404
	case CodeInvalidInput, CodeLexical, CodeSyntax:
		return 400
	case CodeArithmetic, CodeInputFormat, CodeStepLimit:
		return 422
	case CodeTimeout, CodeCancelled:
		return 408
	case CodeDatabaseError:
		return 503
	default:
		return 500
	}
}
