package ux

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
)

// EnhanceError turns errors that carry no code into coded ones with a
// recovery hint. Coded errors are returned unchanged.
func EnhanceError(err error, command string) error {
	if err == nil {
		return nil
	}
	var gerr *gerrors.GateError
	if errors.As(err, &gerr) {
		return err
	}

	errMsg := err.Error()
	help := "Run 'secgate --help' for usage"
	if command != "" {
		help = fmt.Sprintf("Run '%s --help' for usage", command)
	}

	switch {
	case strings.Contains(errMsg, "required flag"),
		strings.Contains(errMsg, "unknown flag"),
		strings.Contains(errMsg, "unknown shorthand flag"),
		strings.Contains(errMsg, "invalid argument"),
		strings.Contains(errMsg, "flag needs an argument"),
		strings.Contains(errMsg, "unknown command"):
		return gerrors.NewUsageError(errMsg).WithSuggestion(help)
	case errors.Is(err, fs.ErrPermission):
		return gerrors.Wrap(gerrors.ErrCodeFileReadFailed, "permission denied", err).
			WithSuggestion("Check file permissions on the paths passed to secgate")
	}
	return err
}

// FormatError renders err for the terminal, prefixed with "Error: ".
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return "Error: " + err.Error()
}
