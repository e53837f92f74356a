// Package protocol implements the newline framed text grammar spoken
// between clients and the relay.
package protocol

import (
	"direct-chat/domain"
	"direct-chat/errors"
	"fmt"
	"strings"
	"unicode"
)

var usages = map[domain.CommandName]string{
	domain.Login:       "LOGIN <username> <password>",
	domain.Register:    "REGISTER <username> <password>",
	domain.Send:        "SEND <recipient> <message text>",
	domain.GetHistory:  "GET_HISTORY <other_username>",
	domain.GetAllUsers: "GET_ALL_USERS",
	domain.Logout:      "LOGOUT",
}

// MalformedError is returned when a known command has the wrong arity.
type MalformedError struct {
	Command domain.CommandName
}

func (e MalformedError) Error() string {
	return fmt.Sprintf("%s: %s", errors.ErrMalformedCommand, Usage(e.Command))
}

func (e MalformedError) Unwrap() error { return errors.ErrMalformedCommand }

// UnknownCommandError is returned for an unrecognised keyword.
type UnknownCommandError struct {
	Keyword string
}

func (e UnknownCommandError) Error() string {
	return fmt.Sprintf("%s: %s", errors.ErrUnknownCommand, e.Keyword)
}

func (e UnknownCommandError) Unwrap() error { return errors.ErrUnknownCommand }

// Usage returns the grammar of a command.
func Usage(name domain.CommandName) string {
	return usages[name]
}

// Parse turns one line (without its terminator) into a command.
// A blank line yields (nil, nil).
func Parse(line string) (domain.Command, error) {
	line = strings.TrimRight(line, "\r\n")
	keyword, rest := cut(line)
	if keyword == "" {
		return nil, nil
	}

	switch name := domain.CommandName(keyword); name {
	case domain.Login, domain.Register:
		args := strings.Fields(rest)
		if len(args) != 2 {
			return nil, MalformedError{Command: name}
		}
		if name == domain.Login {
			return domain.LoginCommand{Username: args[0], Password: args[1]}, nil
		}
		return domain.RegisterCommand{Username: args[0], Password: args[1]}, nil

	case domain.Send:
		recipient, text := cut(rest)
		if recipient == "" || text == "" {
			return nil, MalformedError{Command: name}
		}
		return domain.SendCommand{Recipient: recipient, Content: text}, nil

	case domain.GetHistory:
		args := strings.Fields(rest)
		if len(args) != 1 {
			return nil, MalformedError{Command: name}
		}
		return domain.GetHistoryCommand{Other: args[0]}, nil

	case domain.GetAllUsers, domain.Logout:
		if strings.TrimSpace(rest) != "" {
			return nil, MalformedError{Command: name}
		}
		if name == domain.Logout {
			return domain.LogoutCommand{}, nil
		}
		return domain.GetAllUsersCommand{}, nil

	default:
		return nil, UnknownCommandError{Keyword: keyword}
	}
}

// cut splits off the first whitespace delimited token. The remainder keeps
// its inner spacing but loses the separating whitespace and trailing blanks.
func cut(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	rest := strings.TrimLeftFunc(s[i:], unicode.IsSpace)
	return s[:i], strings.TrimRightFunc(rest, unicode.IsSpace)
}
