// File: error.go
// Title: Core Error Implementation
// Description: Implements the Error type with code, severity, operation and
//              details. Error() returns only the human readable message chain,
//              so diagnostics printed by the CLI stay exactly as the language
//              front-end formats them.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Dropped stack traces and localization, added Newf and Is

package error

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// MaxErrorChainDepth limits how deep Wrap nests before flattening the chain
const MaxErrorChainDepth = 15

// Error represents a structured error with context, codes, and metadata
type Error struct {
	message   string
	cause     error
	code      Code
	severity  Severity
	timestamp time.Time
	operation string
	details   map[string]interface{}
}

// New creates a new Error with the given message
func New(message string) *Error {
	return &Error{
		message:   message,
		code:      CodeUnknown,
		severity:  SeverityMedium,
		timestamp: time.Now(),
		details:   make(map[string]interface{}),
	}
}

// Newf creates a new Error with a formatted message
func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with additional context. The code and
// severity of a wrapped *Error are inherited.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	if chainDepth(err) >= MaxErrorChainDepth {
		return &Error{
			message:   fmt.Sprintf("%s: %s", message, rootCause(err).Error()),
			code:      GetCode(err),
			severity:  SeverityHigh,
			timestamp: time.Now(),
			details:   map[string]interface{}{"truncated": true},
		}
	}

	wrapped := New(message)
	wrapped.cause = err
	if inner, ok := err.(*Error); ok {
		wrapped.code = inner.code
		wrapped.severity = inner.severity
	}
	return wrapped
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error with the same code, so sentinel values such as
// New("").WithCode(CodeSyntax) work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.code != CodeUnknown && t.code == e.code
}

// WithCode sets the error code and the matching default severity
func (e *Error) WithCode(code Code) *Error {
	e.code = code
	e.severity = GetSeverityFromCode(code)
	return e
}

// WithSeverity overrides the severity level
func (e *Error) WithSeverity(severity Severity) *Error {
	e.severity = severity
	return e
}

// WithOperation records the operation that failed
func (e *Error) WithOperation(operation string) *Error {
	e.operation = operation
	return e
}

// WithDetail adds a single detail
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.details[key] = value
	return e
}

// WithDetails adds multiple details
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	for k, v := range details {
		e.details[k] = v
	}
	return e
}

// Message returns the message without the cause chain
func (e *Error) Message() string { return e.message }

// Code returns the error code
func (e *Error) Code() Code { return e.code }

// Severity returns the severity level
func (e *Error) Severity() Severity { return e.severity }

// Timestamp returns when the error was created
func (e *Error) Timestamp() time.Time { return e.timestamp }

// Operation returns the failed operation, if recorded
func (e *Error) Operation() string { return e.operation }

// Details returns a copy of the details map
func (e *Error) Details() map[string]interface{} {
	out := make(map[string]interface{}, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}

// Detail returns a single detail value
func (e *Error) Detail(key string) (interface{}, bool) {
	v, ok := e.details[key]
	return v, ok
}

// IntDetail returns an integer detail such as a row or column, or -1
func (e *Error) IntDetail(key string) int {
	switch v := e.details[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return -1
	}
}

// RootCause returns the innermost error of the chain
func (e *Error) RootCause() error {
	return rootCause(e)
}

// String returns a multi-line representation for verbose output
func (e *Error) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\nCode: %s\nSeverity: %s", e.Error(), e.code, e.severity)
	if e.operation != "" {
		fmt.Fprintf(&b, "\nOperation: %s", e.operation)
	}
	if len(e.details) > 0 {
		keys := make([]string, 0, len(e.details))
		for k := range e.details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.details[k]))
		}
		fmt.Fprintf(&b, "\nDetails: {%s}", strings.Join(parts, ", "))
	}
	return b.String()
}

// MarshalJSON implements json.Marshaler for structured logging and the
// playground protocol
func (e *Error) MarshalJSON() ([]byte, error) {
	data := map[string]interface{}{
		"message":   e.Error(),
		"code":      e.code,
		"severity":  e.severity.String(),
		"timestamp": e.timestamp.Format(time.RFC3339),
	}
	if len(e.details) > 0 {
		data["details"] = e.details
	}
	if e.operation != "" {
		data["operation"] = e.operation
	}
	return json.Marshal(data)
}

// HasCode checks whether any *Error in the chain has the given code
func HasCode(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.code == code {
				return true
			}
			err = e.cause
			continue
		}
		return false
	}
	return false
}

// GetCode returns the error code, or CodeUnknown for foreign errors
func GetCode(err error) Code {
	if e, ok := err.(*Error); ok {
		return e.code
	}
	return CodeUnknown
}

// GetSeverity returns the severity, or SeverityMedium for foreign errors
func GetSeverity(err error) Severity {
	if e, ok := err.(*Error); ok {
		return e.severity
	}
	return SeverityMedium
}

func chainDepth(err error) int {
	depth := 0
	for err != nil && depth < MaxErrorChainDepth*2 {
		depth++
		e, ok := err.(*Error)
		if !ok {
			break
		}
		err = e.cause
	}
	return depth
}

func rootCause(err error) error {
	for {
		e, ok := err.(*Error)
		if !ok || e.cause == nil {
			return err
		}
		err = e.cause
	}
}
