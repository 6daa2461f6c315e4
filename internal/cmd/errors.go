package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/freementors/internal/app"
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
	"github.com/felixgeelhaar/freementors/internal/ux"
)

// ErrorWithSuggestion wraps an error with actionable recovery suggestions
type ErrorWithSuggestion struct {
	Message     string
	Suggestions []string
	err         error
}

func (e *ErrorWithSuggestion) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • ")
			b.WriteString(s)
		}
	}

	if e.err != nil {
		b.WriteString("\n\nDetails: ")
		b.WriteString(e.err.Error())
	}

	return b.String()
}

func (e *ErrorWithSuggestion) Unwrap() error {
	return e.err
}

// NewErrorWithSuggestions creates an error with recovery suggestions
func NewErrorWithSuggestions(msg string, err error, suggestions ...string) error {
	return &ErrorWithSuggestion{
		Message:     msg,
		Suggestions: suggestions,
		err:         err,
	}
}

// CredentialsRequiredError is returned when no terminal is available to
// ask for missing login fields
func CredentialsRequiredError(missing string) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("Missing %s", missing),
		nil,
		"Pass --email and --password",
		"Or run the command in an interactive terminal to be prompted",
	)
}

// noticeError turns a failed notice into the error a command returns.
// The underlying error stays reachable so the exit code matches; the
// text is the one the interactive client would show.
func noticeError(notice app.Notice) error {
	if !notice.IsError() {
		return nil
	}
	if notice.Err == nil {
		return errors.New(notice.Message)
	}
	if fmErr, ok := fmerrors.As(notice.Err); ok && len(fmErr.Suggestions) > 0 {
		return notice.Err
	}

	var wrapped error = &noticeErr{message: notice.Message, err: notice.Err}
	var hint *ux.ErrorWithSuggestion
	if errors.As(ux.EnhanceError(notice.Err), &hint) {
		return ux.NewErrorWithSuggestion(wrapped, hint.Suggestion)
	}
	return wrapped
}

type noticeErr struct {
	message string
	err     error
}

func (e *noticeErr) Error() string { return e.message }

func (e *noticeErr) Unwrap() error { return e.err }
