// Package errors provides structured error types for vxgraph.
//
// This package defines error codes and types that enable:
//   - A single taxonomy shared by returned errors and recorded diagnostics
//   - Machine-readable error codes for the CLI, the HTTP API and reports
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Analysis errors follow the four categories of the semantic analysis core:
//   - STRUCTURAL_ERROR: role-index gaps, missing formats, edge arity/labels, attributes
//   - USERDATA_ERROR: multiple, malformed or duplicate global-parameter declarations
//   - FORMAT_ERROR: pixel-format inference failures (fatal for the inference pass)
//   - CONSISTENCY_ERROR: internal invariant violations (always a defect)
//
// Input and lookup errors (INVALID_*, NOT_FOUND, ...) cover everything outside
// the analysis itself: bad flags, unreadable files, unknown report ids.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeFormat, "input image format not valid")
//	if errors.Is(err, errors.ErrCodeFormat) {
//	    // inference aborted
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Analysis errors
	ErrCodeStructural  Code = "STRUCTURAL_ERROR"
	ErrCodeUserData    Code = "USERDATA_ERROR"
	ErrCodeFormat      Code = "FORMAT_ERROR"
	ErrCodeConsistency Code = "CONSISTENCY_ERROR"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidVersion  Code = "INVALID_VERSION"
	ErrCodeInvalidLibrary  Code = "INVALID_LIBRARY"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeReportNotFound Code = "REPORT_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsAnalysis reports whether code belongs to the analysis taxonomy
// (structural, userdata, format or consistency).
func IsAnalysis(code Code) bool {
	switch code {
	case ErrCodeStructural, ErrCodeUserData, ErrCodeFormat, ErrCodeConsistency:
		return true
	}
	return false
}

// Consistency panics with a CONSISTENCY_ERROR. It marks states that
// correct catalogs can never reach.
func Consistency(format string, args ...any) {
	panic(New(ErrCodeConsistency, format, args...))
}
