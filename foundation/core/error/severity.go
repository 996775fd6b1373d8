// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to pick the log level of a reported error.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Severity derived from kylang codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow is a fault in user input, e.g. a malformed program
	SeverityLow Severity = iota

	// SeverityMedium is the default for unclassified errors
	SeverityMedium

	// SeverityHigh marks failures of the tooling itself (database, files)
	SeverityHigh

	// SeverityCritical leaves the process unusable
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should be surfaced loudly
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines the severity level for an error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeLexical, CodeSyntax, CodeArithmetic, CodeInputFormat,
		CodeStepLimit, CodeCancelled, CodeInvalidInput, CodeNotFound:
		return SeverityLow
	case CodeDatabaseError, CodeIOError, CodeFileNotFound, CodeInvalidConfig, CodeConfigError:
		return SeverityHigh
	case CodeInternal:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
