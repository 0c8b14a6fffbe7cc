package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for evaluator errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	PATTERN_INVALID          ErrorCode = "PATTERN_INVALID"
	REGISTRY_INVALID         ErrorCode = "REGISTRY_INVALID"
	GROUND_TRUTH_INVALID     ErrorCode = "GROUND_TRUTH_INVALID"
)

// Input error codes
const (
	INPUT_OPEN_FAILED  ErrorCode = "INPUT_OPEN_FAILED"
	INPUT_PARSE_FAILED ErrorCode = "INPUT_PARSE_FAILED"
)

// Output error codes
const (
	REPORT_WRITE_FAILED ErrorCode = "REPORT_WRITE_FAILED"
)

// Scoring error codes
const (
	SCORER_FINALIZED ErrorCode = "SCORER_FINALIZED"
)

// History error codes
const (
	HISTORY_OPEN_FAILED  ErrorCode = "HISTORY_OPEN_FAILED"
	HISTORY_WRITE_FAILED ErrorCode = "HISTORY_WRITE_FAILED"
)

// EvalError represents a structured error with error code, message, and optional cause.
// It supports error wrapping for inspection with errors.Is and errors.As.
type EvalError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *EvalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *EvalError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is an EvalError with the same Code.
func (e *EvalError) Is(target error) bool {
	var evalErr *EvalError
	if errors.As(target, &evalErr) {
		return e.Code == evalErr.Code
	}
	return false
}

// NewError creates a new EvalError with the given code and message.
func NewError(code ErrorCode, message string) *EvalError {
	return &EvalError{
		Code:    code,
		Message: message,
	}
}

// NewErrorf creates a new EvalError with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...any) *EvalError {
	return &EvalError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError creates a new EvalError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *EvalError {
	return &EvalError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf extracts the ErrorCode from an error chain.
// Returns the empty code and false when err carries no EvalError.
func CodeOf(err error) (ErrorCode, bool) {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Code, true
	}
	return "", false
}

// IsConfigError reports whether err is any configuration-class error.
func IsConfigError(err error) bool {
	code, ok := CodeOf(err)
	if !ok {
		return false
	}
	switch code {
	case CONFIG_LOAD_FAILED, CONFIG_PARSE_FAILED, CONFIG_VALIDATION_FAILED,
		PATTERN_INVALID, REGISTRY_INVALID, GROUND_TRUTH_INVALID:
		return true
	}
	return false
}

// IsInputError reports whether err is an input-malformation error.
func IsInputError(err error) bool {
	code, ok := CodeOf(err)
	if !ok {
		return false
	}
	return code == INPUT_OPEN_FAILED || code == INPUT_PARSE_FAILED
}
