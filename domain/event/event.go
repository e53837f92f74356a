package event

import (
	"time"
)

// DomainEvent is anything pushed to a connected user outside of a
// request/response exchange.
type DomainEvent interface {
	isDomainEvent()
}

// MessageDelivered is forwarded to the recipient of a SEND.
type MessageDelivered struct {
	Sender  string
	Content string
	At      time.Time
}

// PresenceChanged carries the full online set after a login or a logout.
// Version orders snapshots: a receiver keeps the highest one it has seen.
type PresenceChanged struct {
	Version uint64
	Online  []string
}

func (MessageDelivered) isDomainEvent() {}
func (PresenceChanged) isDomainEvent()  {}
