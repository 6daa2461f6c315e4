package app

import (
	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
)

// NoticeKind classifies a message shown to the user
type NoticeKind string

const (
	NoticeNone    NoticeKind = ""
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// GenericFailure is shown for transport and malformed-response failures
const GenericFailure = "could not complete request"

// Notice is the user-facing outcome of an action. Err keeps the
// underlying error for exit codes and logs; Message is what to show.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// Success builds a success notice
func Success(message string) Notice {
	return Notice{Kind: NoticeSuccess, Message: message}
}

// Info builds an informational notice
func Info(message string) Notice {
	return Notice{Kind: NoticeInfo, Message: message}
}

// Failure converts err into an error notice.
//
// Server messages (GraphQL error lists, unsuccessful mutation results)
// and validation messages are shown verbatim; transport and decoding
// failures collapse to GenericFailure.
func Failure(err error) Notice {
	if err == nil {
		return Notice{}
	}

	message := err.Error()
	if fmErr, ok := fmerrors.As(err); ok {
		switch fmErr.Code {
		case fmerrors.ErrCodeTransport, fmerrors.ErrCodeMalformed:
			message = GenericFailure
		default:
			message = fmErr.Message
		}
	}

	return Notice{Kind: NoticeError, Message: message, Err: err}
}

// IsError reports whether the notice describes a failure
func (n Notice) IsError() bool {
	return n.Kind == NoticeError
}

// IsZero reports whether there is nothing to show
func (n Notice) IsZero() bool {
	return n.Kind == NoticeNone && n.Message == ""
}

// String returns the message
func (n Notice) String() string {
	return n.Message
}
