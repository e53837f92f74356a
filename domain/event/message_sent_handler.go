package event

import (
	"direct-chat/errors"
	"log/slog"
)

// MessageSentHandler counts persisted messages and, separately, those that
// were also pushed to an online recipient.
type MessageSentHandler struct {
	log     *slog.Logger
	counter *Counter
}

// DeliveredKey counts messages pushed live on top of MessageSentType.
const DeliveredKey Type = "MESSAGE_DELIVERED"

func NewMessageSentHandler(log *slog.Logger, counter *Counter) *MessageSentHandler {
	return &MessageSentHandler{log: log, counter: counter}
}

func (h *MessageSentHandler) Handle(event Event) {
	if event.Type != MessageSentType {
		return
	}
	payload, ok := event.Payload.(MessageSent)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
		return
	}
	h.counter.Increment(MessageSentType)
	if payload.Delivered {
		h.counter.Increment(DeliveredKey)
	}
}
