// Package errors provides structured error types for the qtranspile compiler.
//
// Compilation failures fall into a small taxonomy, each with a machine-readable
// code so the CLI, the HTTP service and tests can react to the category rather
// than to message text:
//
//   - STRUCTURAL: unknown wire or register, arity mismatch, malformed splice
//   - BASIS: an operation outside the target basis has no decomposition rule
//   - CONNECTIVITY: the coupling map has no path between required qubits
//   - INVALID_CONFIG: bad pass configuration, including runaway recursion
//   - INVALID_INPUT: unparsable circuits, targets or requests
//   - CONVERGENCE: a fixed-point loop hit its iteration cap (non-fatal)
//
// Structural, basis, connectivity and config errors are fatal to the pass that
// raised them; the input DAG must be treated as possibly corrupted afterwards.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeStructural, "unknown register %q", name)
//	if errors.Is(err, errors.ErrCodeStructural) {
//	    // Handle structural error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "parse %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Compilation errors
	ErrCodeStructural   Code = "STRUCTURAL"
	ErrCodeBasis        Code = "BASIS"
	ErrCodeConnectivity Code = "CONNECTIVITY"
	ErrCodeConvergence  Code = "CONVERGENCE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeTargetNotFound Code = "TARGET_NOT_FOUND"

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

// Structural is shorthand for New(ErrCodeStructural, ...).
func Structural(format string, args ...any) *Error {
	return New(ErrCodeStructural, format, args...)
}

// Basis is shorthand for New(ErrCodeBasis, ...).
func Basis(format string, args ...any) *Error {
	return New(ErrCodeBasis, format, args...)
}

// Connectivity is shorthand for New(ErrCodeConnectivity, ...).
func Connectivity(format string, args ...any) *Error {
	return New(ErrCodeConnectivity, format, args...)
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

// IsFatal reports whether err aborts a compilation. Every coded error except
// CONVERGENCE is fatal, as is any error without a code.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return GetCode(err) != ErrCodeConvergence
}

// Warning is a non-fatal diagnostic raised during compilation.
// Fixed-point loops that exhaust their iteration budget report one instead of
// failing the pipeline.
type Warning struct {
	Code    Code   `json:"code"`
	Pass    string `json:"pass,omitempty"`
	Message string `json:"message"`
}

// String renders the warning in the same form as Error.Error.
func (w Warning) String() string {
	if w.Pass != "" {
		return fmt.Sprintf("%s: %s: %s", w.Code, w.Pass, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// ConvergenceWarning reports that a loop over pass stopped after iterations
// rounds without reaching its fixed point.
func ConvergenceWarning(pass string, iterations int) Warning {
	return Warning{
		Code:    ErrCodeConvergence,
		Pass:    pass,
		Message: fmt.Sprintf("no fixed point after %d iterations", iterations),
	}
}
