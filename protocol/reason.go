package protocol

import (
	"direct-chat/errors"
)

const ReasonInternal = "Internal server error"

// Reason maps an error to the text sent after "ERROR:". Unknown-user and
// wrong-password failures are folded into one message on purpose.
func Reason(err error) string {
	var malformed MalformedError
	var unknown UnknownCommandError
	var recipient errors.RecipientError

	switch {
	case errors.As(err, &malformed):
		return "Malformed command: " + Usage(malformed.Command)
	case errors.As(err, &unknown):
		return "Unknown command: " + unknown.Keyword
	case errors.As(err, &recipient):
		return "Unknown user: " + recipient.Username
	case errors.Is(err, errors.ErrInvalidCredentials),
		errors.Is(err, errors.ErrUserNotFound),
		errors.Is(err, errors.ErrPasswordMismatch):
		return "Invalid credentials"
	case errors.Is(err, errors.ErrUserAlreadyExists):
		return "Username already taken"
	case errors.Is(err, errors.ErrAlreadyOnline):
		return "Already logged in"
	case errors.Is(err, errors.ErrAlreadyAuthenticated):
		return "Session already authenticated"
	case errors.Is(err, errors.ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, errors.ErrUnknownRecipient):
		return "Unknown user"
	case errors.Is(err, errors.ErrInvalidUsername):
		return "Invalid username"
	case errors.Is(err, errors.ErrInvalidPassword):
		return "Invalid password"
	case errors.Is(err, errors.ErrInvalidContent):
		return "Invalid message content"
	case errors.Is(err, errors.ErrMalformedCommand):
		return "Malformed command"
	case errors.Is(err, errors.ErrLineTooLong):
		return "Line too long"
	default:
		return ReasonInternal
	}
}
