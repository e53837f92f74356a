package event

import (
	"direct-chat/errors"
	"log/slog"
	"maps"
	"sync"
)

// CensoredHandler keeps a per-word tally of censorship hits.
type CensoredHandler struct {
	mu      sync.Mutex
	log     *slog.Logger
	counter *Counter
	hit     map[string]uint64
}

func NewCensoredHandler(log *slog.Logger, counter *Counter) *CensoredHandler {
	return &CensoredHandler{
		log:     log,
		counter: counter,
		hit:     make(map[string]uint64),
	}
}

func (h *CensoredHandler) Handle(event Event) {
	if event.Type != CensorshipHitType {
		return
	}
	payload, ok := event.Payload.(Censored)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.counter.Add(CensorshipHitType, uint64(len(payload.Words)))
	for _, word := range payload.Words {
		h.hit[word]++
	}
}

// Hits returns a copy of the per-word tally.
func (h *CensoredHandler) Hits() map[string]uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return maps.Clone(h.hit)
}
