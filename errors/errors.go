package errors

import (
	"errors"
	"fmt"
)

var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrInvalidPayload = fmt.Errorf("invalid event payload")

	// Credential store
	ErrUserAlreadyExists  = fmt.Errorf("username already taken")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrPasswordMismatch   = fmt.Errorf("password mismatch")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidUsername    = fmt.Errorf("invalid username")
	ErrInvalidPassword    = fmt.Errorf("invalid password")
	ErrInvalidHash        = fmt.Errorf("invalid hash format")

	// Sessions
	ErrAlreadyOnline        = fmt.Errorf("already logged in")
	ErrAlreadyAuthenticated = fmt.Errorf("session already authenticated")
	ErrUnauthenticated      = fmt.Errorf("authentication required")

	// Protocol
	ErrMalformedCommand = fmt.Errorf("malformed command")
	ErrUnknownCommand   = fmt.Errorf("unknown command")
	ErrLineTooLong      = fmt.Errorf("line too long")

	// Messaging
	ErrUnknownRecipient = fmt.Errorf("unknown user")
	ErrInvalidContent   = fmt.Errorf("invalid message content")
	ErrSinkFull         = fmt.Errorf("sink buffer full")
	ErrSinkClosed       = fmt.Errorf("sink closed")

	// Transport
	ErrTransport = fmt.Errorf("transport failure")
)

// RecipientError names the user a SEND or GET_HISTORY could not resolve.
type RecipientError struct {
	Username string
}

func (e RecipientError) Error() string {
	return ErrUnknownRecipient.Error() + ": " + e.Username
}

func (e RecipientError) Unwrap() error { return ErrUnknownRecipient }

// Is and As re-export the standard helpers so callers importing this
// package do not need a second, aliased errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

// Join re-exports errors.Join.
func Join(errs ...error) error { return errors.Join(errs...) }
