package session

import (
	"bufio"
	"direct-chat/errors"
	"io"
	"net"
	"strings"
	"time"
)

// Conn is one client transport carrying newline framed protocol lines.
// ReadLine is called by a single reader, WriteLine by a single writer.
type Conn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}

type LineOptions struct {
	MaxLineLength int
	IdleTimeout   time.Duration
	WriteTimeout  time.Duration
}

// lineConn frames a byte stream. Zero timeouts disable the deadline.
type lineConn struct {
	conn   net.Conn
	reader *bufio.Reader
	opts   LineOptions
}

func NewLineConn(conn net.Conn, opts LineOptions) Conn {
	size := opts.MaxLineLength + 2 // room for "\r\n"
	if opts.MaxLineLength <= 0 {
		size = 4096
	}
	return &lineConn{conn: conn, reader: bufio.NewReaderSize(conn, size), opts: opts}
}

// ReadLine returns ErrLineTooLong for an oversized line after discarding it,
// so the caller can report it and keep reading.
func (c *lineConn) ReadLine() (string, error) {
	if c.opts.IdleTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.opts.IdleTimeout)); err != nil {
			return "", errors.Join(errors.ErrTransport, err)
		}
	}

	line, err := c.reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = c.reader.ReadSlice('\n')
		}
		if err != nil {
			return "", err
		}
		return "", errors.ErrLineTooLong
	}
	if errors.Is(err, io.EOF) && len(line) > 0 {
		return strings.TrimRight(string(line), "\r\n"), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}

func (c *lineConn) WriteLine(line string) error {
	if c.opts.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
			return errors.Join(errors.ErrTransport, err)
		}
	}
	_, err := io.WriteString(c.conn, line+"\n")
	return err
}

func (c *lineConn) Close() error {
	return c.conn.Close()
}

func (c *lineConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
