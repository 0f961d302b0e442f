package sessionwire

import (
	"errors"
	"fmt"
)

var (
	ErrDisconnected = errors.New("connection closed")
	ErrBadRoomCode  = errors.New("invalid room code")
)

// WireError wraps a connection-level failure with the operation that caused
// it.
type WireError struct {
	Op      string
	Err     error
	Details string
}

func (e *WireError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WireError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *WireError {
	return &WireError{Op: op, Err: err}
}

func WrapError(op string, err error, details string) *WireError {
	return &WireError{Op: op, Err: err, Details: details}
}
