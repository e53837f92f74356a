package runtime

import (
	"context"
	"direct-chat/contract"
	"direct-chat/domain/event"
	"fmt"
	"log/slog"
	"time"
)

// Fanout pushes events to connected users.
//
// It provides best-effort delivery with no guarantees regarding
// durability or retries: an offline user or a sink that does not accept
// the event within sinkTimeout simply misses it.
//
// Sinks are resolved from a registry snapshot, so no registry lock is held
// while a sink is consumed.
type Fanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	sinkTimeout time.Duration
	telemetry   *Telemetry
}

func NewFanout(log *slog.Logger, registry contract.IRegistry, sinkTimeout time.Duration) *Fanout {
	return &Fanout{log: log, registry: registry, sinkTimeout: sinkTimeout}
}

// WithTelemetry reports every dropped push to t.
func (f *Fanout) WithTelemetry(t *Telemetry) *Fanout {
	f.telemetry = t
	return f
}

// Deliver pushes evt to username if online. It reports whether the sink
// accepted the event.
func (f *Fanout) Deliver(ctx context.Context, username string, evt event.DomainEvent) bool {
	sink, ok := f.registry.Lookup(username)
	if !ok {
		return false
	}
	return f.consume(ctx, username, sink, evt) == nil
}

// Broadcast pushes evt to every online user.
func (f *Fanout) Broadcast(ctx context.Context, evt event.DomainEvent) {
	for username, sink := range f.registry.Sinks() {
		_ = f.consume(ctx, username, sink, evt)
	}
}

func (f *Fanout) consume(ctx context.Context, username string, sink contract.EventSink, evt event.DomainEvent) error {
	sinkCtx, cancel := context.WithTimeout(ctx, f.sinkTimeout)
	defer cancel()

	if err := sink.Consume(sinkCtx, evt); err != nil {
		name := fmt.Sprintf("%T", evt)
		f.log.Warn("Event not delivered", "username", username, "event", name, "error", err)
		f.telemetry.Emit(event.PushDroppedType, event.PushDropped{Username: username, Event: name})
		return err
	}
	return nil
}
