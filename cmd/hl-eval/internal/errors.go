package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

// Exit code constants for the CLI
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitCancelled indicates the operation was cancelled
	ExitCancelled = 4
	// ExitConfigError indicates a configuration or ground-truth error
	ExitConfigError = 10
	// ExitInputError indicates an unreadable or malformed input artifact
	ExitInputError = 11
	// ExitDatabaseError indicates a run-history database error
	ExitDatabaseError = 12
)

// CLIError represents a CLI-specific error with an exit code
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// WrapError creates a new CLIError wrapping an existing error
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewCLIError creates a new CLIError with the given code and message
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
	}
}

// HandleError handles an error and returns the appropriate exit code.
// It also prints the error message to the command's error output.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Operation cancelled")
		return ExitCancelled
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil && IsVerbose() {
			cmd.PrintErrln("Cause:", cliErr.Cause)
		}
		return cliErr.Code
	}

	var evalErr *types.EvalError
	if errors.As(err, &evalErr) {
		cmd.PrintErrln("Error:", evalErr.Error())
		return mapEvalErrorToExitCode(evalErr)
	}

	cmd.PrintErrln("Error:", err.Error())
	return ExitError
}

func mapEvalErrorToExitCode(err *types.EvalError) int {
	switch {
	case types.IsConfigError(err):
		return ExitConfigError
	case types.IsInputError(err):
		return ExitInputError
	case err.Code == types.HISTORY_OPEN_FAILED || err.Code == types.HISTORY_WRITE_FAILED:
		return ExitDatabaseError
	default:
		return ExitError
	}
}
