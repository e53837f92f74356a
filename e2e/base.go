package e2e

import (
	"context"
	"direct-chat/auth"
	"direct-chat/client"
	"direct-chat/infrastructure/transport"
	"direct-chat/repositories"
	"direct-chat/runtime"
	"direct-chat/services"
	"direct-chat/session"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

const stepTimeout = 5 * time.Second

type BaseRelaySuite struct {
	suite.Suite
	Config Config
	log    *slog.Logger
	stop   func()
}

// SetupSuite loads the configuration and, unless RELAY_ADDR is set, boots
// a relay backed by an in-memory Badger.
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.log = logs.GetLoggerFromString(s.Config.LogLevel)
	color.Enable = s.Config.Colours

	if s.Config.RelayAddr != "" {
		return
	}
	s.Config.RelayAddr, s.stop = s.startRelay()
}

func (s *BaseRelaySuite) TearDownSuite() {
	if s.stop != nil {
		s.stop()
	}
}

func (s *BaseRelaySuite) startRelay() (string, func()) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	users := repositories.NewUserRepository(db)
	messages, err := repositories.NewMessageRepository(db, s.log, nil)
	s.Require().NoError(err)

	params := auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	registry := runtime.NewRegistry()
	fanout := runtime.NewFanout(s.log, registry, time.Second)
	chat := services.NewChatService(s.log, users, messages, registry, fanout, nil, 2000)
	handler := session.NewHandler(s.log, services.NewAuthService(s.log, users, params), chat,
		session.Options{BufferSize: 64, DeliveryTimeout: time.Second})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	server := transport.NewTCPServer(s.log, listener, handler,
		session.LineOptions{MaxLineLength: 4096, IdleTimeout: time.Minute, WriteTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Run(ctx)
	}()

	return listener.Addr().String(), func() {
		cancel()
		<-done
		_ = messages.Close()
		_ = db.Close()
	}
}

// Peer is one scripted user connection.
type Peer struct {
	s      *BaseRelaySuite
	name   string
	client *client.Client
}

// Connect opens a connection and prints a header for the step.
func (s *BaseRelaySuite) Connect(name string) *Peer {
	header := fmt.Sprintf("  ====== %s connects ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	c, err := client.Dial(ctx, s.log, s.Config.RelayAddr)
	s.Require().NoError(err, "Failed to connect to relay at "+s.Config.RelayAddr)
	s.T().Cleanup(func() { _ = c.Close() })
	return &Peer{s: s, name: name, client: c}
}

// Do sends a command and returns the next non-push line.
func (p *Peer) Do(command string) string {
	p.s.Require().NoError(p.client.Send(command))
	line := p.next(func(l client.Line) bool {
		return l.Kind == client.KindResponse || l.Kind == client.KindError
	})
	p.s.T().Logf("%s > %s < %s", p.name, command, line.Text)
	return line.Text
}

// LoginEventually retries while the relay still holds a previous session
// for username.
func (p *Peer) LoginEventually(username, password string) string {
	var line string
	for i := 0; i < 50; i++ {
		line = p.Do("LOGIN " + username + " " + password)
		if line != "ERROR:Already logged in" {
			return line
		}
		time.Sleep(20 * time.Millisecond)
	}
	return line
}

// Expect waits for a push with the exact text.
func (p *Peer) Expect(text string) {
	p.next(func(l client.Line) bool { return l.Text == text })
}

func (p *Peer) next(match func(client.Line) bool) client.Line {
	deadline := time.After(stepTimeout)
	for {
		select {
		case line, ok := <-p.client.Lines():
			p.s.Require().True(ok, "%s: connection closed", p.name)
			if match(line) {
				return line
			}
		case <-deadline:
			p.s.FailNow(p.name + ": timed out")
		}
	}
}

// Closed waits for the relay to close the connection.
func (p *Peer) Closed() {
	deadline := time.After(stepTimeout)
	for {
		select {
		case _, ok := <-p.client.Lines():
			if !ok {
				return
			}
		case <-deadline:
			p.s.FailNow(p.name + ": connection still open")
		}
	}
}

// Drop closes the socket without LOGOUT.
func (p *Peer) Drop() {
	_ = p.client.Close()
}
