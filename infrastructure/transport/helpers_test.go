package transport

import (
	"bufio"
	"direct-chat/auth"
	"direct-chat/repositories"
	"direct-chat/runtime"
	"direct-chat/services"
	"direct-chat/session"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 3 * time.Second

var lineOptions = session.LineOptions{MaxLineLength: 256, IdleTimeout: time.Minute, WriteTimeout: time.Second}

type stack struct {
	handler  *session.Handler
	registry *runtime.Registry
	log      *slog.Logger
}

func newStack(t *testing.T) stack {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	users := repositories.NewUserRepository(db)
	messages, err := repositories.NewMessageRepository(db, log, nil)
	req.NoError(err)
	t.Cleanup(func() {
		_ = messages.Close()
		_ = db.Close()
	})

	params := auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	registry := runtime.NewRegistry()
	fanout := runtime.NewFanout(log, registry, time.Second)
	authService := services.NewAuthService(log, users, params)
	chatService := services.NewChatService(log, users, messages, registry, fanout, nil, 512)

	return stack{
		handler:  session.NewHandler(log, authService, chatService, session.Options{BufferSize: 16, DeliveryTimeout: time.Second}),
		registry: registry,
		log:      log,
	}
}

// tcpClient reads responses synchronously, skipping pushes it was not
// asked about.
type tcpClient struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func dial(t *testing.T, addr string) *tcpClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, waitTimeout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &tcpClient{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

func (c *tcpClient) send(line string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(waitTimeout))
	_, err := c.conn.Write([]byte(line + "\n"))
	require.NoError(c.t, err)
}

func (c *tcpClient) readLine() (string, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(waitTimeout))
	line, err := c.reader.ReadString('\n')
	return strings.TrimRight(line, "\n"), err
}

// response returns the next line that is not an ACTIVE_USERS push.
func (c *tcpClient) response() string {
	c.t.Helper()
	for {
		line, err := c.readLine()
		require.NoError(c.t, err)
		if !strings.HasPrefix(line, "ACTIVE_USERS:") {
			return line
		}
	}
}

func (c *tcpClient) do(line string) string {
	c.t.Helper()
	c.send(line)
	return c.response()
}
