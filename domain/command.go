package domain

type CommandName string

const (
	Login       CommandName = "LOGIN"
	Register    CommandName = "REGISTER"
	Send        CommandName = "SEND"
	GetHistory  CommandName = "GET_HISTORY"
	GetAllUsers CommandName = "GET_ALL_USERS"
	Logout      CommandName = "LOGOUT"
)

// Command is one parsed protocol line.
type Command interface {
	Name() CommandName
	// RequiresAuth reports whether the command is rejected on an
	// unauthenticated connection.
	RequiresAuth() bool
}

type LoginCommand struct {
	Username string
	Password string
}

func (LoginCommand) Name() CommandName  { return Login }
func (LoginCommand) RequiresAuth() bool { return false }

type RegisterCommand struct {
	Username string
	Password string
}

func (RegisterCommand) Name() CommandName  { return Register }
func (RegisterCommand) RequiresAuth() bool { return false }

type SendCommand struct {
	Recipient string
	Content   string
}

func (SendCommand) Name() CommandName  { return Send }
func (SendCommand) RequiresAuth() bool { return true }

type GetHistoryCommand struct {
	Other string
}

func (GetHistoryCommand) Name() CommandName  { return GetHistory }
func (GetHistoryCommand) RequiresAuth() bool { return true }

type GetAllUsersCommand struct{}

func (GetAllUsersCommand) Name() CommandName  { return GetAllUsers }
func (GetAllUsersCommand) RequiresAuth() bool { return true }

type LogoutCommand struct{}

func (LogoutCommand) Name() CommandName  { return Logout }
func (LogoutCommand) RequiresAuth() bool { return true }
