package workers

import (
	"context"
	"direct-chat/domain/event"
	"direct-chat/runtime"
	"log/slog"
)

// TelemetryWorker hands every technical event to each handler in turn.
type TelemetryWorker struct {
	log       *slog.Logger
	telemetry *runtime.Telemetry
	handlers  []event.Handler
}

func NewTelemetryWorker(log *slog.Logger, telemetry *runtime.Telemetry, handlers ...event.Handler) *TelemetryWorker {
	return &TelemetryWorker{
		log:       log,
		telemetry: telemetry,
		handlers:  handlers,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-w.telemetry.Events():
			w.handle(evt)
		}
	}
}

func (w *TelemetryWorker) handle(evt event.Event) {
	for _, h := range w.handlers {
		h.Handle(evt)
	}
}
