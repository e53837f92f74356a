// Package transport accepts client connections and hands each one, framed
// as protocol lines, to the connection handler.
package transport

import (
	"context"
	"direct-chat/session"
)

// ConnectionHandler owns a connection until Serve returns.
type ConnectionHandler interface {
	Serve(ctx context.Context, conn session.Conn)
}
