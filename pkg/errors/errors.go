// Package errors gives boxlayout's failures a machine-readable [Code] that
// survives fmt.Errorf wrapping, so the CLI can print a clean message and the
// HTTP API can pick a status without string matching.
//
// # Error Codes
//
// The layout engine reports four kinds of failure:
//   - NOT_FOUND: an edit names a node or connector that was never added
//   - ALREADY_EXISTS: an edit adds a node or connector ID that is in use
//   - INVALID_INPUT: malformed arguments (empty IDs, negative sizes, self connectors)
//   - INVARIANT_VIOLATION: a structural invariant broke; this is a bug in the
//     engine, and the engine refuses further edits
//
// The remaining codes serve the tooling around the engine (scripts, cache,
// sessions, server).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "node %q", id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle unknown node
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvariant, origErr, "connect %s", id)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidScript Code = "INVALID_SCRIPT"

	// Precondition errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeAlreadyExists   Code = "ALREADY_EXISTS"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Engine errors
	ErrCodeInvariant Code = "INVARIANT_VIOLATION"

	// Infrastructure errors
	ErrCodeStorage     Code = "STORAGE_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error carries a code, a message for people and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

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

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its code
// or cause, falling back to err.Error().
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the status the HTTP API responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath, ErrCodeInvalidScript:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
