// Package client is a thin line-oriented connection to the relay, used by
// the terminal client and the end-to-end suite.
package client

import (
	"bufio"
	"context"
	"direct-chat/protocol"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
)

type Kind int

const (
	KindResponse Kind = iota
	KindError
	KindMessage
	KindPresence
)

// Line is one line received from the relay.
type Line struct {
	Kind Kind
	Text string
}

// Classify tells pushes apart from command responses.
func Classify(text string) Line {
	tag, _, _ := strings.Cut(text, ":")
	switch tag {
	case protocol.TagError:
		return Line{Kind: KindError, Text: text}
	case protocol.TagMessage:
		return Line{Kind: KindMessage, Text: text}
	case protocol.TagActiveUsers:
		return Line{Kind: KindPresence, Text: text}
	default:
		return Line{Kind: KindResponse, Text: text}
	}
}

type Client struct {
	log   *slog.Logger
	conn  net.Conn
	lines chan Line

	writeMu sync.Mutex
}

// Dial connects to addr and starts reading. Lines is closed once the
// connection ends.
func Dial(ctx context.Context, log *slog.Logger, addr string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	c := &Client{log: log, conn: conn, lines: make(chan Line, 64)}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.lines)
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		c.lines <- Classify(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		c.log.Debug("Read loop ended", "error", err)
	}
}

func (c *Client) Lines() <-chan Line {
	return c.lines
}

// Send writes one command line. Embedded newlines are rejected since they
// would split the command in two.
func (c *Client) Send(line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("command must fit on one line")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (c *Client) Close() error {
	return c.conn.Close()
}
