package transport

import (
	"context"
	"direct-chat/errors"
	"direct-chat/session"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	websocketPath     = "/ws"
	maxFrameSize      = 64 << 10
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// WebsocketGateway speaks the same line protocol over WebSocket: every
// text frame carries exactly one line, without its terminator.
//
// http.Server.Serve closes its listener when it fails, so a restarted Run
// binds a fresh one on the same address.
type WebsocketGateway struct {
	log      *slog.Logger
	listener net.Listener
	address  string
	handler  ConnectionHandler
	opts     session.LineOptions
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

func NewWebsocketGateway(log *slog.Logger, listener net.Listener, handler ConnectionHandler, opts session.LineOptions) *WebsocketGateway {
	var address string
	if listener != nil {
		address = listener.Addr().String()
	}
	return &WebsocketGateway{
		log:      log,
		address:  address,
		listener: listener,
		handler:  handler,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Any origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (g *WebsocketGateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(websocketPath, g.serveWebsocket)
	return mux
}

func (g *WebsocketGateway) Run(ctx context.Context) error {
	server := &http.Server{
		Handler:           g.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})
	defer stop()

	listener, err := g.listen()
	if err != nil {
		return err
	}

	g.log.Info("Listening for WebSocket clients", "address", listener.Addr().String(), "path", websocketPath)
	err = server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) || ctx.Err() != nil {
		g.wg.Wait()
		return nil
	}
	// Serve has closed the listener.
	g.listener = nil
	return fmt.Errorf("%w: websocket serve: %w", errors.ErrTransport, err)
}

func (g *WebsocketGateway) listen() (net.Listener, error) {
	if g.listener != nil {
		return g.listener, nil
	}
	listener, err := net.Listen("tcp", g.address)
	if err != nil {
		return nil, fmt.Errorf("%w: rebind %s: %w", errors.ErrTransport, g.address, err)
	}
	g.listener = listener
	return listener, nil
}

func (g *WebsocketGateway) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	conn.SetReadLimit(maxFrameSize)

	g.wg.Add(1)
	defer g.wg.Done()
	// Hijacked connections are not tracked by http.Server.Shutdown, the
	// request context (derived from Run's ctx) closes them instead.
	g.handler.Serve(r.Context(), &wsConn{conn: conn, opts: g.opts, remote: r.RemoteAddr})
}

// wsConn adapts a WebSocket to session.Conn.
type wsConn struct {
	conn   *websocket.Conn
	opts   session.LineOptions
	remote string
}

func (c *wsConn) ReadLine() (string, error) {
	if c.opts.IdleTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.opts.IdleTimeout)); err != nil {
			return "", errors.Join(errors.ErrTransport, err)
		}
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	if c.opts.MaxLineLength > 0 && len(data) > c.opts.MaxLineLength {
		return "", errors.ErrLineTooLong
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (c *wsConn) WriteLine(line string) error {
	if c.opts.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
			return errors.Join(errors.ErrTransport, err)
		}
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() string {
	return c.remote
}
