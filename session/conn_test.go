package session

import (
	"bufio"
	"direct-chat/errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLineConn_ReadLine(t *testing.T) {
	req := require.New(t)
	server, client := net.Pipe()
	conn := NewLineConn(server, LineOptions{MaxLineLength: 32})
	defer conn.Close()

	go func() {
		_, _ = io.WriteString(client, "LOGIN alice secret\r\n")
		_, _ = io.WriteString(client, strings.Repeat("x", 100)+"\n")
		_, _ = io.WriteString(client, "GET_ALL_USERS\n")
		_, _ = io.WriteString(client, "LOGOUT")
		_ = client.Close()
	}()

	line, err := conn.ReadLine()
	req.NoError(err)
	req.Equal("LOGIN alice secret", line)

	_, err = conn.ReadLine()
	req.ErrorIs(err, errors.ErrLineTooLong)

	line, err = conn.ReadLine()
	req.NoError(err)
	req.Equal("GET_ALL_USERS", line)

	// A last line without terminator is still delivered
	line, err = conn.ReadLine()
	req.NoError(err)
	req.Equal("LOGOUT", line)

	_, err = conn.ReadLine()
	req.ErrorIs(err, io.EOF)
}

func TestLineConn_Idle_Timeout(t *testing.T) {
	req := require.New(t)
	server, client := net.Pipe()
	defer client.Close()
	conn := NewLineConn(server, LineOptions{MaxLineLength: 32, IdleTimeout: 20 * time.Millisecond})
	defer conn.Close()

	_, err := conn.ReadLine()

	var netErr net.Error
	req.ErrorAs(err, &netErr)
	req.True(netErr.Timeout())
}

func TestLineConn_WriteLine(t *testing.T) {
	req := require.New(t)
	server, client := net.Pipe()
	conn := NewLineConn(server, LineOptions{WriteTimeout: time.Second})
	defer conn.Close()

	go func() { _ = conn.WriteLine("SEND_OK") }()

	line, err := bufio.NewReader(client).ReadString('\n')
	req.NoError(err)
	req.Equal("SEND_OK\n", line)
}
