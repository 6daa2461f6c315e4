package ux

import (
	"errors"
	"strings"
	"testing"

	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
)

func TestNewErrorWithSuggestion(t *testing.T) {
	if got := NewErrorWithSuggestion(nil, "ignored"); got != nil {
		t.Errorf("NewErrorWithSuggestion(nil) = %v, want nil", got)
	}

	err := NewErrorWithSuggestion(errors.New("boom"), "try again")
	var withSuggestion *ErrorWithSuggestion
	if !errors.As(err, &withSuggestion) {
		t.Fatalf("expected *ErrorWithSuggestion, got %T", err)
	}
	if withSuggestion.Suggestion != "try again" {
		t.Errorf("Suggestion = %q", withSuggestion.Suggestion)
	}
}

func TestErrorWithSuggestion_Error(t *testing.T) {
	tests := []struct {
		name       string
		suggestion string
		wantMsg    string
	}{
		{"with suggestion", "do this", "test error\n\nSuggestion: do this"},
		{"without suggestion", "", "test error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &ErrorWithSuggestion{Err: errors.New("test error"), Suggestion: tt.suggestion}
			if e.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", e.Error(), tt.wantMsg)
			}
		})
	}
}

func TestErrorWithSuggestion_Unwrap(t *testing.T) {
	orig := fmerrors.NewRejectedError("Mentor unavailable")
	e := NewErrorWithSuggestion(orig, "pick another mentor")

	if !errors.Is(e, orig) {
		t.Error("errors.Is should find the wrapped error")
	}
	if !fmerrors.HasCode(e, fmerrors.ErrCodeRejected) {
		t.Error("code should survive wrapping")
	}
}

func TestEnhanceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantSuggestion string
		wantSame       bool
	}{
		{
			name:     "coded error with suggestions is unchanged",
			err:      fmerrors.NewLoginRequiredError("/mentors"),
			wantSame: true,
		},
		{
			name:     "rejection is unchanged",
			err:      fmerrors.NewRejectedError("Mentor unavailable"),
			wantSame: true,
		},
		{
			name:           "protocol error suggests signing in again",
			err:            fmerrors.NewProtocolError([]string{"Authentication required"}),
			wantSuggestion: "freementors auth login",
		},
		{
			name:           "invalid credentials",
			err:            fmerrors.New(fmerrors.ErrCodeInvalidCredentials, "Invalid email or password"),
			wantSuggestion: "freementors auth register",
		},
		{
			name:           "connection refused",
			err:            errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"),
			wantSuggestion: "--api-url",
		},
		{
			name:           "unknown host",
			err:            errors.New("dial tcp: lookup api.invalid: no such host"),
			wantSuggestion: "--api-url",
		},
		{
			name:           "timeout",
			err:            errors.New("context deadline exceeded"),
			wantSuggestion: "api.timeout",
		},
		{
			name:           "tls",
			err:            errors.New("x509: certificate signed by unknown authority"),
			wantSuggestion: "TLS certificate",
		},
		{
			name:           "permission denied",
			err:            errors.New("open /home/u/.freementors/credentials.json: permission denied"),
			wantSuggestion: "storage.dir",
		},
		{
			name:           "wrong passphrase",
			err:            errors.New("cipher: message authentication failed"),
			wantSuggestion: "freementors auth logout",
		},
		{
			name:           "redis",
			err:            errors.New("redis: connection pool timeout"),
			wantSuggestion: "storage.redis.addr",
		},
		{
			name:     "unknown error is unchanged",
			err:      errors.New("something odd"),
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnhanceError(tt.err)
			if tt.wantSame {
				if got != tt.err {
					t.Errorf("EnhanceError() = %v, want original error", got)
				}
				return
			}

			var withSuggestion *ErrorWithSuggestion
			if !errors.As(got, &withSuggestion) {
				t.Fatalf("EnhanceError() returned %T, want *ErrorWithSuggestion", got)
			}
			if !strings.Contains(withSuggestion.Suggestion, tt.wantSuggestion) {
				t.Errorf("Suggestion = %q, want it to contain %q", withSuggestion.Suggestion, tt.wantSuggestion)
			}
		})
	}

	if EnhanceError(nil) != nil {
		t.Error("EnhanceError(nil) should be nil")
	}
}

func TestFormatError(t *testing.T) {
	if FormatError(nil, "ctx") != nil {
		t.Error("FormatError(nil) should be nil")
	}

	err := FormatError(errors.New("connection refused"), "load mentors")
	if !strings.HasPrefix(err.Error(), "load mentors: connection refused") {
		t.Errorf("FormatError() = %q", err.Error())
	}
	var withSuggestion *ErrorWithSuggestion
	if !errors.As(err, &withSuggestion) {
		t.Error("context wrapping should keep the suggestion reachable")
	}

	plain := errors.New("plain")
	if got := FormatError(plain, ""); got != plain {
		t.Errorf("FormatError() without context = %v", got)
	}
}
