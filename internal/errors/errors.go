package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// API errors (API-001 to API-099)
	ErrCodeTransport ErrorCode = "API-001"
	ErrCodeProtocol  ErrorCode = "API-002"
	ErrCodeMalformed ErrorCode = "API-003"
	ErrCodeRejected  ErrorCode = "API-004"

	// Authentication and authorization errors (AUTH-001 to AUTH-099)
	ErrCodeLoginRequired      ErrorCode = "AUTH-001"
	ErrCodeUnauthorized       ErrorCode = "AUTH-002"
	ErrCodeInvalidCredentials ErrorCode = "AUTH-003"
	ErrCodeSessionInvalid     ErrorCode = "AUTH-004"

	// Validation errors (VALID-001 to VALID-099)
	ErrCodePasswordMismatch ErrorCode = "VALID-001"
	ErrCodeFieldRequired    ErrorCode = "VALID-002"
	ErrCodeInvalidValue     ErrorCode = "VALID-003"

	// Local storage and config errors (IO-001 to IO-099)
	ErrCodeStorageRead   ErrorCode = "IO-001"
	ErrCodeStorageWrite  ErrorCode = "IO-002"
	ErrCodeConfigInvalid ErrorCode = "IO-003"
)

// Category returns the prefix of the code (API, AUTH, VALID, IO)
func (c ErrorCode) Category() string {
	if i := strings.IndexByte(string(c), '-'); i > 0 {
		return string(c)[:i]
	}
	return string(c)
}

// FreeMentorsError is an error with a code and suggestions for the user
type FreeMentorsError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *FreeMentorsError) Error() string {
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

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FreeMentorsError) Unwrap() error {
	return e.Cause
}

// New creates a new FreeMentorsError
func New(code ErrorCode, message string) *FreeMentorsError {
	return &FreeMentorsError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new FreeMentorsError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *FreeMentorsError {
	return &FreeMentorsError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *FreeMentorsError) WithSuggestion(suggestion string) *FreeMentorsError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *FreeMentorsError) WithSuggestions(suggestions ...string) *FreeMentorsError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// As finds the first FreeMentorsError in err's chain
func As(err error) (*FreeMentorsError, bool) {
	var fmErr *FreeMentorsError
	if stderrors.As(err, &fmErr) {
		return fmErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first FreeMentorsError in err's chain,
// or the empty code.
func CodeOf(err error) ErrorCode {
	if fmErr, ok := As(err); ok {
		return fmErr.Code
	}
	return ""
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// Common error constructors for frequently used errors

// NewTransportError creates an error for unreachable endpoints and non-2xx responses
func NewTransportError(endpoint string, cause error) *FreeMentorsError {
	return Wrap(ErrCodeTransport, fmt.Sprintf("could not complete request to %s", endpoint), cause).
		WithSuggestion("Check your network connection").
		WithSuggestion("Verify the API URL with 'freementors config view' or --api-url")
}

// NewProtocolError creates an error carrying the messages of a GraphQL error list
func NewProtocolError(messages []string) *FreeMentorsError {
	msg := strings.Join(messages, ", ")
	if msg == "" {
		msg = "request failed"
	}
	return New(ErrCodeProtocol, msg)
}

// NewMalformedResponseError creates an error for bodies that are not valid GraphQL JSON
func NewMalformedResponseError(detail string, cause error) *FreeMentorsError {
	return Wrap(ErrCodeMalformed, fmt.Sprintf("unexpected server response: %s", detail), cause).
		WithSuggestion("Check that --api-url points at the GraphQL endpoint")
}

// NewRejectedError creates an error for a {success: false} mutation result
func NewRejectedError(message string) *FreeMentorsError {
	if message == "" {
		message = "request was rejected"
	}
	return New(ErrCodeRejected, message)
}

// NewLoginRequiredError creates an error for destinations that need a session
func NewLoginRequiredError(destination string) *FreeMentorsError {
	return New(ErrCodeLoginRequired, fmt.Sprintf("login required to access %s", destination)).
		WithSuggestion("Run 'freementors auth login' to authenticate")
}

// NewUnauthorizedError creates an error for destinations the role may not view
func NewUnauthorizedError(destination string, role string) *FreeMentorsError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("role %s is not allowed to access %s", role, destination)).
		WithSuggestion("Ask an administrator to change your role if you need access")
}

// NewSessionInvalidError creates an error for a stored session the server rejected
func NewSessionInvalidError(cause error) *FreeMentorsError {
	return Wrap(ErrCodeSessionInvalid, "stored session is no longer valid", cause).
		WithSuggestion("Run 'freementors auth login' to sign in again")
}

// NewPasswordMismatchError creates the registration confirmation error
func NewPasswordMismatchError() *FreeMentorsError {
	return New(ErrCodePasswordMismatch, "Passwords do not match")
}

// NewFieldRequiredError creates a required field error
func NewFieldRequiredError(field string) *FreeMentorsError {
	return New(ErrCodeFieldRequired, fmt.Sprintf("%s is required", field))
}

// NewInvalidValueError wraps a parse failure of user input
func NewInvalidValueError(field string, cause error) *FreeMentorsError {
	return Wrap(ErrCodeInvalidValue, fmt.Sprintf("invalid %s", field), cause)
}

// NewStorageError creates a local credential storage error
func NewStorageError(write bool, cause error) *FreeMentorsError {
	if write {
		return Wrap(ErrCodeStorageWrite, "failed to write stored credentials", cause).
			WithSuggestion("Check permissions of the storage directory (storage.dir)")
	}
	return Wrap(ErrCodeStorageRead, "failed to read stored credentials", cause).
		WithSuggestion("Run 'freementors auth logout' to reset local credentials")
}
