// Package errors provides structured error types for layernet.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes name the graph condition that was detected:
//   - DUPLICATE_LAYER: a layer name collided on add
//   - UNKNOWN_LAYER: an operation referenced a name that was never added
//   - UNCONNECTED_LAYER: a layer without the edges compilation requires
//   - EMPTY_NETWORK: compile attempted with zero layers
//   - CYCLE: a connect call would have made the graph cyclic
//   - MERGE_INCOMPATIBLE: multi-parent shapes cannot be concatenated
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownLayer, "no such layer %q", name)
//	if errors.Is(err, errors.ErrCodeUnknownLayer) {
//	    // Handle the missing layer
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "compile %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph construction errors
	ErrCodeDuplicateLayer   Code = "DUPLICATE_LAYER"
	ErrCodeUnknownLayer     Code = "UNKNOWN_LAYER"
	ErrCodeCycle            Code = "CYCLE"
	ErrCodeUnconnectedLayer Code = "UNCONNECTED_LAYER"
	ErrCodeEmptyNetwork     Code = "EMPTY_NETWORK"

	// Compilation errors
	ErrCodeMergeIncompatible Code = "MERGE_INCOMPATIBLE"
	ErrCodeNotCompiled       Code = "NOT_COMPILED"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidShape    Code = "INVALID_SHAPE"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeNetworkNotFound Code = "NETWORK_NOT_FOUND"

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
