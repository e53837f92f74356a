package session

import (
	"bufio"
	"context"
	"direct-chat/auth"
	"direct-chat/protocol"
	"direct-chat/repositories"
	"direct-chat/runtime"
	"direct-chat/services"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 3 * time.Second

var testParams = auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

// harness wires a real relay over an in-memory Badger.
type harness struct {
	handler  *Handler
	registry *runtime.Registry
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	users := repositories.NewUserRepository(db)
	messages, err := repositories.NewMessageRepository(db, log, nil)
	req.NoError(err)

	registry := runtime.NewRegistry()
	fanout := runtime.NewFanout(log, registry, time.Second)
	authService := services.NewAuthService(log, users, testParams)
	chatService := services.NewChatService(log, users, messages, registry, fanout, nil, 512)

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		handler:  NewHandler(log, authService, chatService, Options{BufferSize: 16, DeliveryTimeout: time.Second}),
		registry: registry,
		ctx:      ctx,
		cancel:   cancel,
	}
	t.Cleanup(func() {
		cancel()
		h.wg.Wait()
		_ = messages.Close()
		_ = db.Close()
	})
	return h
}

func (h *harness) connect(t *testing.T) *testClient {
	server, client := net.Pipe()
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.handler.Serve(h.ctx, NewLineConn(server, LineOptions{MaxLineLength: 256}))
	}()
	return newTestClient(t, client)
}

// testClient splits what the relay writes into command responses and
// asynchronous pushes, so tests do not depend on push timing.
type testClient struct {
	t         *testing.T
	conn      net.Conn
	responses chan string
	pushes    chan string
}

func newTestClient(t *testing.T, conn net.Conn) *testClient {
	c := &testClient{
		t:         t,
		conn:      conn,
		responses: make(chan string, 64),
		pushes:    make(chan string, 64),
	}
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		defer close(c.responses)
		defer close(c.pushes)
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, protocol.TagMessage+":") || strings.HasPrefix(line, protocol.TagActiveUsers+":") {
				c.pushes <- line
				continue
			}
			c.responses <- line
		}
	}()
	return c
}

func (c *testClient) send(line string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(waitTimeout))
	_, err := fmt.Fprintf(c.conn, "%s\n", line)
	require.NoError(c.t, err)
}

func (c *testClient) response() string {
	c.t.Helper()
	select {
	case line, ok := <-c.responses:
		require.True(c.t, ok, "connection closed while waiting for a response")
		return line
	case <-time.After(waitTimeout):
		require.FailNow(c.t, "no response")
		return ""
	}
}

func (c *testClient) do(line string) string {
	c.t.Helper()
	c.send(line)
	return c.response()
}

// waitPush skips pushes until want arrives.
func (c *testClient) waitPush(want string) {
	c.t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case line, ok := <-c.pushes:
			require.True(c.t, ok, "connection closed while waiting for %q", want)
			if line == want {
				return
			}
		case <-deadline:
			require.FailNow(c.t, "push not received", want)
		}
	}
}

func (c *testClient) waitClosed() {
	c.t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case _, ok := <-c.responses:
			if !ok {
				return
			}
		case <-deadline:
			require.FailNow(c.t, "connection still open")
		}
	}
}

func (c *testClient) register(username, password string) {
	c.t.Helper()
	require.Equal(c.t, "REGISTER_OK", c.do(fmt.Sprintf("REGISTER %s %s", username, password)))
}

func (c *testClient) login(username, password string) {
	c.t.Helper()
	require.Equal(c.t, "LOGIN_OK:"+username, c.do(fmt.Sprintf("LOGIN %s %s", username, password)))
}
