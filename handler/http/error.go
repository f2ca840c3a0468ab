package http

import (
	"errors"
	"fmt"
)

// Errors used for protocol control flow.
var (
	ErrLimitExceeded = errors.New("limit")
	ErrUnavailable   = errors.New("unavailable")
)

// Error is used to carry additional error information reported back to clients.
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func wrapError(err error, msg string) *Error {
	return &Error{
		Err:     err,
		Message: fmt.Sprintf("%s: %s", err.Error(), msg),
	}
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.Err
	}

	return err
}
