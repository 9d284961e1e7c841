package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Policy errors (POLICY-001 to POLICY-099)
	ErrCodePolicyNotFound  ErrorCode = "POLICY-001"
	ErrCodePolicyInvalid   ErrorCode = "POLICY-002"
	ErrCodePolicyUnmarshal ErrorCode = "POLICY-003"
	ErrCodePolicyExists    ErrorCode = "POLICY-004"

	// Gate errors (GATE-001 to GATE-099)
	ErrCodeGateFailed ErrorCode = "GATE-001"

	// Publish errors (PUBLISH-001 to PUBLISH-099)
	ErrCodePublishRequest      ErrorCode = "PUBLISH-001"
	ErrCodePublishStatus       ErrorCode = "PUBLISH-002"
	ErrCodePublishUnauthorized ErrorCode = "PUBLISH-003"

	// Usage errors (USAGE-001 to USAGE-099)
	ErrCodeUsageInvalid ErrorCode = "USAGE-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
)

// GateError represents an error with code, suggestions, and documentation
type GateError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *GateError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *GateError) Unwrap() error {
	return e.Cause
}

// New creates a new GateError
func New(code ErrorCode, message string) *GateError {
	return &GateError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new GateError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *GateError {
	return &GateError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *GateError) WithSuggestion(suggestion string) *GateError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *GateError) WithDocs(url string) *GateError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewPolicyNotFoundError creates a policy file not found error
func NewPolicyNotFoundError(path string, cause error) *GateError {
	return Wrap(ErrCodePolicyNotFound, fmt.Sprintf("policy file not found: %s", path), cause).
		WithSuggestion("Run 'secgate policy init' to create a starter policy").
		WithSuggestion("Check the --policy path")
}

// NewPolicyUnmarshalError creates a policy parse error
func NewPolicyUnmarshalError(path string, cause error) *GateError {
	return Wrap(ErrCodePolicyUnmarshal, fmt.Sprintf("failed to parse policy file: %s", path), cause).
		WithSuggestion("Check the file is valid YAML")
}

// NewPolicyInvalidError creates a policy validation error
func NewPolicyInvalidError(details string) *GateError {
	return New(ErrCodePolicyInvalid, fmt.Sprintf("invalid policy: %s", details)).
		WithSuggestion("Run 'secgate policy validate --policy <file>' to check the policy").
		WithSuggestion("Every scanner under fail_on needs max_allowed; bandit and pip_audit also need severities")
}

// NewGateFailedError reports a FAIL decision
func NewGateFailedError(failing []string) *GateError {
	return New(ErrCodeGateFailed, fmt.Sprintf("security gate failed: %s over threshold", strings.Join(failing, ", "))).
		WithSuggestion("See the gate report for blocking counts")
}

// NewFileWriteError creates a write failure error
func NewFileWriteError(path string, cause error) *GateError {
	return Wrap(ErrCodeFileWriteFailed, fmt.Sprintf("failed to write file: %s", path), cause).
		WithSuggestion("Verify the output directory exists and is writable")
}

// NewUsageError creates an invalid argument error
func NewUsageError(message string) *GateError {
	return New(ErrCodeUsageInvalid, message)
}

// NewPublishStatusError creates an error for a non-success comment API status
func NewPublishStatusError(status int, detail string) *GateError {
	code := ErrCodePublishStatus
	if status == 401 || status == 403 {
		code = ErrCodePublishUnauthorized
	}
	msg := fmt.Sprintf("comment API returned status %d", status)
	if detail != "" {
		msg += ": " + detail
	}
	err := New(code, msg)
	if code == ErrCodePublishUnauthorized {
		err.WithSuggestion("Check that GITHUB_TOKEN has pull-requests: write permission")
	}
	return err
}

// NewPublishRequestError creates an error for a failed comment request
func NewPublishRequestError(cause error) *GateError {
	return Wrap(ErrCodePublishRequest, "failed to post comment", cause).
		WithSuggestion("Check network connectivity to the API host").
		WithSuggestion("Re-run the publish step; the gate decision is unaffected")
}
