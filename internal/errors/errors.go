// Package errors defines the coded error type and the sentinel errors that
// classify startup failures.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAssetMissing    = errors.New("required asset is missing")
	ErrLockUnavailable = errors.New("single-instance lock unavailable")
	ErrConfigInvalid   = errors.New("configuration is invalid")
	ErrAudioDevice     = errors.New("audio output failed")
)

// Error carries a short machine-readable code next to the message.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap attaches a code and message to err.
func Wrap(err error, code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsStartupFatal reports whether err must abort the process before the tray starts.
func IsStartupFatal(err error) bool {
	return errors.Is(err, ErrAssetMissing) ||
		errors.Is(err, ErrConfigInvalid) ||
		errors.Is(err, ErrLockUnavailable)
}

// CodeOf returns the code of the outermost coded error in the chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
