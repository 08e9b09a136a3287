// Package errors provides structured error types for wafconan.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the generator, loader and activator
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (graph, profile, artifact)
//   - *_NOT_FOUND: Missing files or programs
//   - FILESYSTEM: Unreadable input or unwritable output
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedNode, "node %q has no cpp_info", name)
//	if errors.Is(err, errors.ErrCodeMalformedNode) {
//	    // Abort generation
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFilesystem, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidGraph     Code = "INVALID_GRAPH"
	ErrCodeMalformedNode    Code = "MALFORMED_NODE"
	ErrCodeCyclicDependency Code = "CYCLIC_DEPENDENCY"
	ErrCodeInvalidOperation Code = "INVALID_OPERATION"
	ErrCodeInvalidSlot      Code = "INVALID_SLOT"
	ErrCodeInvalidConfigSet Code = "INVALID_CONFIGSET"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeProgramNotFound Code = "PROGRAM_NOT_FOUND"

	// I/O errors
	ErrCodeFilesystem Code = "FILESYSTEM"

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

// PartialError reports an operation that stopped midway and left earlier
// effects in place. Applied counts the steps that completed before Err.
type PartialError struct {
	Applied int
	Err     error
}

// Error implements the error interface.
func (e *PartialError) Error() string {
	return fmt.Sprintf("stopped after %d applied operations: %v", e.Applied, e.Err)
}

// Unwrap returns the error that stopped the operation.
func (e *PartialError) Unwrap() error { return e.Err }
