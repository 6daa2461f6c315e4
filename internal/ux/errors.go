package ux

import (
	"fmt"
	"strings"

	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a recovery suggestion to errors that do not carry one.
// Coded errors already list their suggestions and are returned unchanged.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	if fmErr, ok := fmerrors.As(err); ok && len(fmErr.Suggestions) > 0 {
		return err
	}

	switch fmerrors.CodeOf(err) {
	case fmerrors.ErrCodeProtocol:
		return NewErrorWithSuggestion(err,
			"The server refused the request; if your session expired run 'freementors auth login'")
	case fmerrors.ErrCodeInvalidCredentials:
		return NewErrorWithSuggestion(err,
			"Check your email and password, or create an account with 'freementors auth register'")
	case fmerrors.ErrCodeRejected:
		return err
	}

	errMsg := err.Error()

	// Network errors
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no route to host") ||
		strings.Contains(errMsg, "no such host") {
		return NewErrorWithSuggestion(err,
			"Check that the API is running and --api-url (or api.url) points at it")
	}

	if strings.Contains(errMsg, "deadline exceeded") || strings.Contains(errMsg, "Client.Timeout") {
		return NewErrorWithSuggestion(err,
			"The API did not answer in time; raise api.timeout with 'freementors config set api.timeout 60s'")
	}

	if strings.Contains(errMsg, "certificate") || strings.Contains(errMsg, "x509") {
		return NewErrorWithSuggestion(err,
			"The API's TLS certificate is not trusted; check the api.url scheme and host")
	}

	// Permission errors
	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check permissions of the freementors home directory (--home or storage.dir)")
	}

	// Encrypted credential store
	if strings.Contains(errMsg, "message authentication failed") || strings.Contains(errMsg, "decrypt") {
		return NewErrorWithSuggestion(err,
			"Stored credentials cannot be read with this passphrase; run 'freementors auth logout' to reset them")
	}

	// Redis backend
	if strings.Contains(errMsg, "redis") {
		return NewErrorWithSuggestion(err,
			"Check storage.redis.addr or switch back with 'freementors config set storage.backend file'")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
