package transfer

import (
	"errors"
	"fmt"
)

// Kind classifies why a session ended in the error state.
type Kind string

const (
	KindSubmissionRejected  Kind = "SubmissionRejected"  // the upload endpoint answered with an error field
	KindTransportError      Kind = "TransportError"      // network or decode failure on submit or on a poll
	KindServerReportedError Kind = "ServerReportedError" // a poll answered status "error"
	KindTimeout             Kind = "Timeout"             // poll attempts or duration exhausted
	KindCancelled           Kind = "Cancelled"           // caller context ended
)

// SessionError is the terminal failure of a Session.
type SessionError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the kind and the message shown to the user. Message already
// carries the text of Err where there is one.
func (e *SessionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *SessionError of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *SessionError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

func newSessionError(kind Kind, msg string, err error) *SessionError {
	return &SessionError{Kind: kind, Message: msg, Err: err}
}
