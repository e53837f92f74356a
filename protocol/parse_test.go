package protocol

import (
	"direct-chat/domain"
	"direct-chat/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_Valid_Commands(t *testing.T) {
	tests := []struct {
		name string
		line string
		want domain.Command
	}{
		{"login", "LOGIN alice secret", domain.LoginCommand{Username: "alice", Password: "secret"}},
		{"register", "REGISTER bob p4ss", domain.RegisterCommand{Username: "bob", Password: "p4ss"}},
		{"send keeps inner spaces", "SEND bob hello   there bob", domain.SendCommand{Recipient: "bob", Content: "hello   there bob"}},
		{"send with colon", "SEND bob time: 12:30", domain.SendCommand{Recipient: "bob", Content: "time: 12:30"}},
		{"history", "GET_HISTORY bob", domain.GetHistoryCommand{Other: "bob"}},
		{"all users", "GET_ALL_USERS", domain.GetAllUsersCommand{}},
		{"logout", "LOGOUT", domain.LogoutCommand{}},
		{"crlf terminator", "GET_ALL_USERS\r\n", domain.GetAllUsersCommand{}},
		{"leading blanks", "   LOGIN alice secret", domain.LoginCommand{Username: "alice", Password: "secret"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			cmd, err := Parse(tt.line)
			req.NoError(err)
			req.Equal(tt.want, cmd)
		})
	}
}

func TestParse_Blank_Line(t *testing.T) {
	req := require.New(t)
	cmd, err := Parse("   ")
	req.NoError(err)
	req.Nil(cmd)
}

func TestParse_Wrong_Arity(t *testing.T) {
	tests := []struct {
		line    string
		command domain.CommandName
	}{
		{"LOGIN alice", domain.Login},
		{"LOGIN alice secret extra", domain.Login},
		{"REGISTER", domain.Register},
		{"SEND bob", domain.Send},
		{"SEND", domain.Send},
		{"GET_HISTORY", domain.GetHistory},
		{"GET_HISTORY bob carol", domain.GetHistory},
		{"GET_ALL_USERS now", domain.GetAllUsers},
		{"LOGOUT please", domain.Logout},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			req := require.New(t)
			_, err := Parse(tt.line)
			req.ErrorIs(err, errors.ErrMalformedCommand)

			var malformed MalformedError
			req.True(errors.As(err, &malformed))
			req.Equal(tt.command, malformed.Command)
		})
	}
}

func TestParse_Unknown_Command(t *testing.T) {
	req := require.New(t)
	_, err := Parse("login alice secret")
	req.ErrorIs(err, errors.ErrUnknownCommand)
	req.Equal("Unknown command: login", Reason(err))
}

func TestParse_Requires_Auth(t *testing.T) {
	req := require.New(t)
	req.False(domain.LoginCommand{}.RequiresAuth())
	req.False(domain.RegisterCommand{}.RequiresAuth())
	req.True(domain.SendCommand{}.RequiresAuth())
	req.True(domain.GetHistoryCommand{}.RequiresAuth())
	req.True(domain.GetAllUsersCommand{}.RequiresAuth())
	req.True(domain.LogoutCommand{}.RequiresAuth())
}
