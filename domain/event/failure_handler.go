package event

import (
	"direct-chat/errors"
	"log/slog"
)

// FailureHandler counts dropped pushes and worker restarts.
type FailureHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewFailureHandler(log *slog.Logger, counter *Counter) *FailureHandler {
	return &FailureHandler{log: log, counter: counter}
}

func (h *FailureHandler) Handle(event Event) {
	switch event.Type {
	case PushDroppedType:
		payload, ok := event.Payload.(PushDropped)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
			return
		}
		h.counter.Increment(PushDroppedType)
		h.log.Debug("Push dropped", "username", payload.Username, "event", payload.Event,
			"total", h.counter.Get(PushDroppedType))
	case WorkerRestartedType:
		payload, ok := event.Payload.(WorkerRestarted)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
			return
		}
		h.counter.Increment(WorkerRestartedType)
		h.log.Debug("Worker restarted", "name", payload.WorkerName, "panicked", payload.Panicked,
			"total", h.counter.Get(WorkerRestartedType))
	}
}
