package gateway

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("invalid input")
	ErrNetwork        = errors.New("network unavailable")
	ErrInvalidCode    = errors.New("invalid or expired code")
	ErrRateLimited    = errors.New("too many requests")
	ErrSessionExpired = errors.New("session expired")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrProtocol       = errors.New("unexpected backend response")
)

// Error is the uniform failure of a gateway call.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Op names the operation, e.g. "verify otp".
	Op string
	// Status is the HTTP status, 0 when no response was received.
	Status int
	// Message is the human-readable reason, from the backend when it sent one.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// UserMessage returns the text to show for err: the backend's message when
// there is one, otherwise a description of the error kind.
func UserMessage(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		if ge.Message != "" {
			return ge.Message
		}
		return ge.Kind.Error()
	}
	return err.Error()
}

func newError(kind error, op string, status int, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Status: status, Message: message, Err: cause}
}
