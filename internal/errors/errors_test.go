package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeProtocol, "test error message")

	if err.Code != ErrCodeProtocol {
		t.Errorf("expected code %s, got %s", ErrCodeProtocol, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Wrap(ErrCodeTransport, "could not complete request", cause)

	if err.Code != ErrCodeTransport {
		t.Errorf("expected code %s, got %s", ErrCodeTransport, err.Code)
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *FreeMentorsError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodePasswordMismatch, "Passwords do not match"),
			wantCode: "VALID-001",
			wantMsg:  "Passwords do not match",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeStorageRead, "read failed", fmt.Errorf("permission denied")),
			wantCode: "IO-001",
			wantMsg:  "permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()

			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}

			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message '%s', got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestWithSuggestions(t *testing.T) {
	err := New(ErrCodeUnauthorized, "denied").
		WithSuggestion("first").
		WithSuggestions("second", "third")

	if len(err.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(err.Suggestions))
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "Suggestions:") {
		t.Error("error string should contain suggestions section")
	}
	for _, s := range err.Suggestions {
		if !strings.Contains(errStr, s) {
			t.Errorf("error string should contain suggestion: %s", s)
		}
	}
	if strings.Contains(errStr, "Documentation:") {
		t.Error("error string should not contain a docs section")
	}
}

func TestCodeOf(t *testing.T) {
	base := NewLoginRequiredError("/admin")
	wrapped := fmt.Errorf("running command: %w", base)

	if got := CodeOf(wrapped); got != ErrCodeLoginRequired {
		t.Errorf("CodeOf(wrapped) = %s, want %s", got, ErrCodeLoginRequired)
	}
	if !HasCode(wrapped, ErrCodeLoginRequired) {
		t.Error("HasCode should find wrapped code")
	}
	if HasCode(nil, ErrCodeLoginRequired) {
		t.Error("HasCode(nil) must be false")
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestErrorCodeCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeTransport:        "API",
		ErrCodeUnauthorized:     "AUTH",
		ErrCodePasswordMismatch: "VALID",
		ErrCodeStorageWrite:     "IO",
	}
	for code, want := range tests {
		if got := code.Category(); got != want {
			t.Errorf("%s.Category() = %s, want %s", code, got, want)
		}
	}
}

func TestNewProtocolError(t *testing.T) {
	err := NewProtocolError([]string{"Not authenticated", "Token expired"})
	if err.Message != "Not authenticated, Token expired" {
		t.Errorf("unexpected joined message: %q", err.Message)
	}

	empty := NewProtocolError(nil)
	if empty.Message == "" {
		t.Error("protocol error must never have an empty message")
	}
}

func TestNewRejectedError(t *testing.T) {
	if got := NewRejectedError("Mentor unavailable").Message; got != "Mentor unavailable" {
		t.Errorf("message = %q", got)
	}
	if got := NewRejectedError("").Message; got == "" {
		t.Error("rejected error must have a fallback message")
	}
}
