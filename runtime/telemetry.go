package runtime

import (
	"direct-chat/domain/event"
	"time"
)

// Telemetry is a bounded, lossy queue of technical events. Emit never
// blocks: when the queue is full the event is discarded, so a slow
// consumer cannot stall message delivery. A nil *Telemetry discards
// everything.
type Telemetry struct {
	events chan event.Event
}

func NewTelemetry(size int) *Telemetry {
	return &Telemetry{events: make(chan event.Event, size)}
}

func (t *Telemetry) Emit(typ event.Type, payload any) {
	if t == nil {
		return
	}
	select {
	case t.events <- event.Event{Type: typ, CreatedAt: time.Now().UTC(), Payload: payload}:
	default:
	}
}

// Events is drained by the telemetry worker.
func (t *Telemetry) Events() <-chan event.Event {
	return t.events
}
