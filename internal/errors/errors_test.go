package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodePolicyInvalid, "test error message")

	if err.Code != ErrCodePolicyInvalid {
		t.Errorf("expected code %s, got %s", ErrCodePolicyInvalid, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeFileReadFailed, "failed to read file", cause)

	if err.Code != ErrCodeFileReadFailed {
		t.Errorf("expected code %s, got %s", ErrCodeFileReadFailed, err.Code)
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name    string
		err     *GateError
		want    []string
		notWant []string
	}{
		{
			name:    "simple error",
			err:     New(ErrCodePolicyInvalid, "invalid policy"),
			want:    []string{"[POLICY-002] invalid policy"},
			notWant: []string{"Suggestions:", "Documentation:"},
		},
		{
			name: "error with cause",
			err:  Wrap(ErrCodeFileReadFailed, "read failed", fmt.Errorf("permission denied")),
			want: []string{"[IO-002] read failed: permission denied"},
		},
		{
			name: "suggestions and docs",
			err:  New(ErrCodeGateFailed, "gate failed").WithSuggestion("one").WithSuggestion("two").WithDocs("https://example.com"),
			want: []string{"Suggestions:", "• one", "• two", "Documentation: https://example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, w := range tt.want {
				if !strings.Contains(msg, w) {
					t.Errorf("expected %q in %q", w, msg)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(msg, nw) {
					t.Errorf("did not expect %q in %q", nw, msg)
				}
			}
		})
	}
}

func TestNewPublishStatusError(t *testing.T) {
	tests := []struct {
		status   int
		wantCode ErrorCode
	}{
		{401, ErrCodePublishUnauthorized},
		{403, ErrCodePublishUnauthorized},
		{404, ErrCodePublishStatus},
		{500, ErrCodePublishStatus},
	}
	for _, tt := range tests {
		err := NewPublishStatusError(tt.status, "Not Found")
		if err.Code != tt.wantCode {
			t.Errorf("status %d: code = %s, want %s", tt.status, err.Code, tt.wantCode)
		}
		if !strings.Contains(err.Message, "Not Found") {
			t.Errorf("status %d: message %q missing detail", tt.status, err.Message)
		}
	}
}

func TestNewGateFailedError(t *testing.T) {
	err := NewGateFailedError([]string{"bandit", "gitleaks"})
	if err.Code != ErrCodeGateFailed {
		t.Fatalf("expected %s, got %s", ErrCodeGateFailed, err.Code)
	}
	if !strings.Contains(err.Message, "bandit, gitleaks") {
		t.Errorf("expected failing scanners in message, got %q", err.Message)
	}
}

func TestPolicyErrorsHaveNoDocsURL(t *testing.T) {
	for _, err := range []*GateError{
		NewPolicyNotFoundError("policy.yaml", fmt.Errorf("missing")),
		NewPolicyUnmarshalError("policy.yaml", fmt.Errorf("bad yaml")),
		NewPolicyInvalidError("missing fail_on"),
	} {
		if err.DocsURL != "" {
			t.Errorf("%s: unexpected docs URL %q", err.Code, err.DocsURL)
		}
		if len(err.Suggestions) == 0 {
			t.Errorf("%s: expected suggestions", err.Code)
		}
	}
}

func TestErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("evaluate: %w", NewPolicyInvalidError("missing fail_on"))
	var gerr *GateError
	if !errors.As(wrapped, &gerr) {
		t.Fatal("errors.As should find GateError")
	}
	if gerr.Code != ErrCodePolicyInvalid {
		t.Errorf("expected %s, got %s", ErrCodePolicyInvalid, gerr.Code)
	}
}
