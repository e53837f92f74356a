package transport

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// startTCP returns the running server, its stop function and a wait
// function that can be called any number of times.
func startTCP(t *testing.T, s stack) (*TCPServer, context.CancelFunc, func() error) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewTCPServer(s.log, listener, s.handler, lineOptions)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()
	wait := sync.OnceValue(func() error { return <-done })
	t.Cleanup(func() {
		cancel()
		_ = wait()
	})
	return server, cancel, wait
}

func TestTCPServer_Conversation(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	server, _, _ := startTCP(t, s)
	addr := server.Addr().String()

	alice := dial(t, addr)
	bob := dial(t, addr)

	req.Equal("REGISTER_OK", alice.do("REGISTER alice secret"))
	req.Equal("REGISTER_OK", bob.do("REGISTER bob secret"))
	req.Equal("LOGIN_OK:alice", alice.do("LOGIN alice secret"))
	req.Equal("LOGIN_OK:bob", bob.do("LOGIN bob secret"))

	req.Equal("SEND_OK", alice.do("SEND bob hello bob"))
	req.Equal("MESSAGE:alice:hello bob", bob.response())

	req.Equal("HISTORY:alice:hello bob", bob.do("GET_HISTORY alice"))
	req.Equal("ALL_USERS:alice,bob:alice,bob", bob.do("GET_ALL_USERS"))
}

func TestTCPServer_Concurrent_Login_Same_User(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	server, _, _ := startTCP(t, s)
	addr := server.Addr().String()

	setup := dial(t, addr)
	req.Equal("REGISTER_OK", setup.do("REGISTER alice secret"))

	const attempts = 10
	results := make(chan string, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		c := dial(t, addr)
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.send("LOGIN alice secret")
			line, err := c.readLine()
			if err != nil {
				results <- err.Error()
				return
			}
			results <- line
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for line := range results {
		if line == "LOGIN_OK:alice" {
			ok++
			continue
		}
		req.Equal("ERROR:Already logged in", line)
	}
	req.Equal(1, ok)
	req.Equal([]string{"alice"}, s.registry.Snapshot())
}

func TestTCPServer_Abrupt_Disconnect_Cleans_Registry(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	server, _, _ := startTCP(t, s)
	addr := server.Addr().String()

	c := dial(t, addr)
	req.Equal("REGISTER_OK", c.do("REGISTER alice secret"))
	req.Equal("LOGIN_OK:alice", c.do("LOGIN alice secret"))
	req.Equal([]string{"alice"}, s.registry.Snapshot())

	_ = c.conn.Close()

	req.Eventually(func() bool { return len(s.registry.Snapshot()) == 0 }, waitTimeout, 10*time.Millisecond)

	again := dial(t, addr)
	req.Equal("LOGIN_OK:alice", again.do("LOGIN alice secret"))
}

func TestTCPServer_Shutdown_Closes_Clients(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	server, cancel, wait := startTCP(t, s)

	c := dial(t, server.Addr().String())
	req.Equal("REGISTER_OK", c.do("REGISTER alice secret"))
	req.Equal("LOGIN_OK:alice", c.do("LOGIN alice secret"))

	cancel()

	stopped := make(chan error, 1)
	go func() { stopped <- wait() }()
	select {
	case err := <-stopped:
		req.NoError(err)
	case <-time.After(waitTimeout):
		req.FailNow("server did not stop")
	}
	req.Empty(s.registry.Snapshot())

	for {
		_, err := c.readLine()
		if err != nil {
			break
		}
	}
}
