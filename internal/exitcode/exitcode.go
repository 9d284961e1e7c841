package exitcode

import (
	"errors"
	"os"

	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
)

// Exit codes for consistent error handling across the CLI.
// GateFailed must stay 1; no other failure may share it.
const (
	// Success indicates the gate passed or the command completed
	Success = 0

	// GateFailed indicates at least one scanner exceeded its threshold
	GateFailed = 1

	// ConfigError indicates a missing or malformed policy, or invalid usage
	ConfigError = 2

	// WriteError indicates the report or another artifact could not be written
	WriteError = 3

	// PublishError indicates the comment API call failed
	PublishError = 4

	// AuthError indicates the comment API rejected the token
	AuthError = 5

	// Interrupted indicates the command was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code.
// Unknown errors map to ConfigError so that a crash is never reported as a
// policy FAIL.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var gerr *gerrors.GateError
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case gerrors.ErrCodeGateFailed:
			return GateFailed
		case gerrors.ErrCodeFileWriteFailed:
			return WriteError
		case gerrors.ErrCodePublishUnauthorized:
			return AuthError
		case gerrors.ErrCodePublishRequest, gerrors.ErrCodePublishStatus:
			return PublishError
		}
		return ConfigError
	}

	// cobra flag errors and anything unexpected
	return ConfigError
}
