package session

import (
	"context"
	"direct-chat/domain"
	"direct-chat/errors"
	"direct-chat/protocol"
	"direct-chat/services"
	"fmt"
	"log/slog"
	"time"
)

type Options struct {
	BufferSize      int
	DeliveryTimeout time.Duration
}

// Handler runs the protocol state machine of every accepted connection.
type Handler struct {
	log  *slog.Logger
	auth services.IAuthService
	chat services.IChatService
	opts Options
}

func NewHandler(log *slog.Logger, auth services.IAuthService, chat services.IChatService, opts Options) *Handler {
	return &Handler{log: log, auth: auth, chat: chat, opts: opts}
}

// connection is the per-client state owned by one Serve call.
type connection struct {
	conn     Conn
	outbox   *Outbox
	state    domain.State
	username string
	log      *slog.Logger
}

// Serve blocks until the connection ends. Whatever the reason (logout,
// peer close, I/O failure, ctx cancellation, panic), the session is removed
// from the registry before Serve returns.
func (h *Handler) Serve(ctx context.Context, conn Conn) {
	log := h.log.With("remote", conn.RemoteAddr())
	c := &connection{
		conn:   conn,
		outbox: NewOutbox(log, conn, h.opts.BufferSize, h.opts.DeliveryTimeout),
		state:  domain.Unauthenticated,
		log:    log,
	}
	go c.outbox.Run()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			log.Error("Connection handler panic", "username", c.username, "panic", r)
		}
		h.cleanup(context.WithoutCancel(ctx), c)
	}()

	log.Debug("Connection opened")
	for {
		line, err := conn.ReadLine()
		if errors.Is(err, errors.ErrLineTooLong) {
			if c.outbox.Reply(protocol.Error(err)) != nil {
				return
			}
			continue
		}
		if err != nil {
			log.Debug("Connection read ended", "username", c.username, "error", err)
			return
		}

		cmd, err := protocol.Parse(line)
		if err != nil {
			if c.outbox.Reply(protocol.Error(err)) != nil {
				return
			}
			continue
		}
		if cmd == nil {
			continue
		}

		if done := h.handle(ctx, c, cmd); done {
			return
		}
	}
}

// handle executes one command and queues exactly one response line.
// It reports whether the connection must be closed afterwards.
func (h *Handler) handle(ctx context.Context, c *connection, cmd domain.Command) bool {
	if cmd.RequiresAuth() && c.state != domain.Authenticated {
		return h.reply(c, protocol.Error(errors.ErrUnauthenticated))
	}

	switch cmd := cmd.(type) {
	case domain.LoginCommand:
		return h.login(ctx, c, cmd)

	case domain.RegisterCommand:
		if _, err := h.auth.Register(cmd.Username, cmd.Password); err != nil {
			return h.fail(c, cmd, err)
		}
		return h.reply(c, protocol.RegisterOK())

	case domain.SendCommand:
		if err := h.chat.Send(ctx, c.username, cmd.Recipient, cmd.Content); err != nil {
			return h.fail(c, cmd, err)
		}
		return h.reply(c, protocol.SendOK())

	case domain.GetHistoryCommand:
		entries, err := h.chat.History(c.username, cmd.Other)
		if err != nil {
			return h.fail(c, cmd, err)
		}
		return h.reply(c, protocol.History(entries))

	case domain.GetAllUsersCommand:
		dir, err := h.chat.Directory()
		if err != nil {
			return h.fail(c, cmd, err)
		}
		return h.reply(c, protocol.AllUsers(dir))

	case domain.LogoutCommand:
		h.reply(c, protocol.LogoutOK())
		return true

	default:
		return h.fail(c, cmd, fmt.Errorf("%w: %s", errors.ErrUnknownCommand, cmd.Name()))
	}
}

func (h *Handler) login(ctx context.Context, c *connection, cmd domain.LoginCommand) bool {
	if c.state == domain.Authenticated {
		return h.fail(c, cmd, errors.ErrAlreadyAuthenticated)
	}

	user, err := h.auth.Verify(cmd.Username, cmd.Password)
	if err != nil {
		return h.fail(c, cmd, err)
	}
	if err := h.chat.Connect(user.Username, c.outbox); err != nil {
		return h.fail(c, cmd, err)
	}

	c.state = domain.Authenticated
	c.username = user.Username
	c.log = c.log.With("username", user.Username)

	// Pushes routed here since Connect wait for the response to be queued.
	closed := h.reply(c, protocol.LoginOK(user.Username))
	c.outbox.Release()
	if closed {
		return true
	}
	h.chat.AnnouncePresence(ctx)
	return false
}

// reply reports true when the outbox is gone and the connection must end.
func (h *Handler) reply(c *connection, line string) bool {
	if err := c.outbox.Reply(line); err != nil {
		c.log.Debug("Response not queued", "error", err)
		return true
	}
	return false
}

// fail answers a recoverable error. Errors outside the protocol taxonomy
// are logged since the client only sees a generic reason.
func (h *Handler) fail(c *connection, cmd domain.Command, err error) bool {
	reason := protocol.Reason(err)
	if reason == protocol.ReasonInternal {
		c.log.Error("Command failed", "command", cmd.Name(), "error", err)
	} else {
		c.log.Debug("Command rejected", "command", cmd.Name(), "reason", reason)
	}
	return h.reply(c, protocol.TagError+":"+reason)
}

func (h *Handler) cleanup(ctx context.Context, c *connection) {
	if c.state == domain.Authenticated {
		h.chat.Disconnect(ctx, c.username)
	}
	c.state = domain.Closed
	c.outbox.Close()
	_ = c.conn.Close()
	c.log.Debug("Connection closed")
}
