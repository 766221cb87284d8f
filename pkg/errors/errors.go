// Package errors provides structured error types for spriteslicer.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes name the failing condition rather than the failing component:
//   - DECODE_FAILED / UNSUPPORTED_FORMAT: the source image could not be read
//   - MARGIN_TOO_LARGE / GRID_MISMATCH: grid parameters do not fit the image
//   - EMPTY_SELECTION / INVALID_SELECTION: nothing (or nonsense) chosen for export
//   - INVALID_SLICE / INVALID_MANIFEST: a rectangle or manifest violates its invariants
//   - IO_FAILED: directory creation, crop or write failed during export
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptySelection, "no slices selected")
//	if errors.Is(err, errors.ErrCodeEmptySelection) {
//	    // Handle empty selection
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "write %s", path)
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
	ErrCodeInvalidSlice     Code = "INVALID_SLICE"
	ErrCodeInvalidSelection Code = "INVALID_SELECTION"
	ErrCodeInvalidManifest  Code = "INVALID_MANIFEST"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Source image errors
	ErrCodeDecode            Code = "DECODE_FAILED"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// Grid errors
	ErrCodeMarginTooLarge Code = "MARGIN_TOO_LARGE"
	ErrCodeGridMismatch   Code = "GRID_MISMATCH"

	// Export errors
	ErrCodeEmptySelection Code = "EMPTY_SELECTION"
	ErrCodeIO             Code = "IO_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
