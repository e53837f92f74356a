package transport

import (
	"context"
	"direct-chat/errors"
	"direct-chat/session"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// TCPServer is the primary listener: one handler goroutine per accepted
// socket. The listener is bound by the caller so that a bind failure is
// reported before anything is supervised.
type TCPServer struct {
	log      *slog.Logger
	listener net.Listener
	handler  ConnectionHandler
	opts     session.LineOptions
	wg       sync.WaitGroup
}

func NewTCPServer(log *slog.Logger, listener net.Listener, handler ConnectionHandler, opts session.LineOptions) *TCPServer {
	return &TCPServer{log: log, listener: listener, handler: handler, opts: opts}
}

// Run accepts until ctx is cancelled, then waits for every open
// connection to be cleaned up.
func (s *TCPServer) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = s.listener.Close() })
	defer stop()

	s.log.Info("Listening for TCP clients", "address", s.listener.Addr().String())
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.log.Warn("Accept timeout", "error", err)
				continue
			}
			return fmt.Errorf("%w: accept: %w", errors.ErrTransport, err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handler.Serve(ctx, session.NewLineConn(conn, s.opts))
		}()
	}
}

func (s *TCPServer) Addr() net.Addr {
	return s.listener.Addr()
}
