// Package errors provides structured error types for the layerdeck application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, TUI and HTTP hosts
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// Codes carry an HTTP status ([Status]) so the HTTP panel and the CLI agree
// on what counts as bad input.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNodeNotFound, "no node at %s", path)
//	if errors.Is(err, errors.ErrCodeNodeNotFound) {
//	    // Handle lookup failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidScene, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidScene  Code = "INVALID_SCENE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidAction Code = "INVALID_ACTION"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeNodeNotFound Code = "NODE_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether any *Error in the chain of err carries code, so a
// NODE_NOT_FOUND wrapped as INVALID_INPUT matches both.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode returns the code of the outermost *Error in the chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns err without code prefixes: the messages of every
// *Error in the chain joined with ": ", ending in the first plain cause.
func UserMessage(err error) string {
	var parts []string
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			parts = append(parts, err.Error())
			break
		}
		if e.Message != "" {
			parts = append(parts, e.Message)
		}
		err = e.Cause
	}
	return strings.Join(parts, ": ")
}

// Status maps the code of err to an HTTP status. Errors without a code are
// internal.
func Status(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidScene, ErrCodeInvalidFormat,
		ErrCodeInvalidAction, ErrCodeInvalidPath, ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeNodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
