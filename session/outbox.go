package session

import (
	"context"
	"direct-chat/domain/event"
	"direct-chat/errors"
	"direct-chat/protocol"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Outbox is the only writer of a connection. Command responses and pushed
// events are queued as whole lines and written in order by Run, so two
// producers can never interleave inside a line.
//
// It is the EventSink registered for an authenticated user. Pushes wait
// for Release, which the handler calls once the login response is queued,
// so a client always reads LOGIN_OK before its first push.
type Outbox struct {
	log             *slog.Logger
	conn            Conn
	lines           chan string
	deliveryTimeout time.Duration

	released    chan struct{}
	releaseOnce sync.Once

	// presenceMu makes the version check and the enqueue of a presence
	// push one step. lastPresence is the newest version queued.
	presenceMu   sync.Mutex
	lastPresence uint64

	closing   chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

func NewOutbox(log *slog.Logger, conn Conn, bufferSize int, deliveryTimeout time.Duration) *Outbox {
	return &Outbox{
		log:             log,
		conn:            conn,
		lines:           make(chan string, bufferSize),
		deliveryTimeout: deliveryTimeout,
		released:        make(chan struct{}),
		closing:         make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// Run writes queued lines until Close or a write failure. On failure the
// connection is closed so the reader side observes it too.
func (o *Outbox) Run() {
	defer close(o.done)
	for {
		select {
		case line := <-o.lines:
			if err := o.conn.WriteLine(line); err != nil {
				o.log.Debug("Write failed", "remote", o.conn.RemoteAddr(), "error", err)
				o.shutdown()
				_ = o.conn.Close()
				return
			}
		case <-o.closing:
			o.drain()
			return
		}
	}
}

// drain flushes what was queued before Close, stopping at the first error.
func (o *Outbox) drain() {
	for {
		select {
		case line := <-o.lines:
			if err := o.conn.WriteLine(line); err != nil {
				return
			}
		default:
			return
		}
	}
}

// Reply queues a command response. It waits for room rather than drop,
// and only fails once the outbox is closed.
func (o *Outbox) Reply(line string) error {
	return o.enqueue(context.Background(), line)
}

// Release lets pushes through. It is idempotent.
func (o *Outbox) Release() {
	o.releaseOnce.Do(func() { close(o.released) })
}

// Consume queues a pushed event. A full or not yet released outbox is given
// deliveryTimeout (or less if ctx expires first) before the event is
// dropped. A presence snapshot older than one already queued is skipped.
func (o *Outbox) Consume(ctx context.Context, e event.DomainEvent) error {
	line, ok := protocol.Event(e)
	if !ok {
		return fmt.Errorf("no wire form for %T", e)
	}
	if o.deliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.deliveryTimeout)
		defer cancel()
	}

	select {
	case <-o.released:
	case <-o.closing:
		return errors.ErrSinkClosed
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", errors.ErrSinkFull, ctx.Err())
	}

	presence, ok := e.(event.PresenceChanged)
	if !ok {
		return o.enqueue(ctx, line)
	}

	o.presenceMu.Lock()
	defer o.presenceMu.Unlock()
	if presence.Version != 0 && presence.Version <= o.lastPresence {
		o.log.Debug("Stale presence skipped", "version", presence.Version, "last", o.lastPresence)
		return nil
	}
	if err := o.enqueue(ctx, line); err != nil {
		return err
	}
	o.lastPresence = presence.Version
	return nil
}

func (o *Outbox) enqueue(ctx context.Context, line string) error {
	select {
	case <-o.closing:
		return errors.ErrSinkClosed
	default:
	}

	select {
	case o.lines <- line:
		return nil
	case <-o.closing:
		return errors.ErrSinkClosed
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", errors.ErrSinkFull, ctx.Err())
	}
}

// Close stops accepting lines and waits for Run to flush the queue.
// Run must have been started.
func (o *Outbox) Close() {
	o.shutdown()
	<-o.done
}

func (o *Outbox) shutdown() {
	o.closeOnce.Do(func() { close(o.closing) })
}

// Done is closed when Run has returned.
func (o *Outbox) Done() <-chan struct{} {
	return o.done
}
