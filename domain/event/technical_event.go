package event

import "time"

// Type names a technical event. Technical events never reach users; they
// feed the relay's own counters.
type Type string

const (
	MessageSentType     Type = "MESSAGE_SENT"
	CensorshipHitType   Type = "CENSORSHIP_HIT"
	PushDroppedType     Type = "PUSH_DROPPED"
	WorkerRestartedType Type = "WORKER_RESTARTED"
)

type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

type MessageSent struct {
	Sender    string
	Recipient string
	Delivered bool
}

type Censored struct {
	Words []string
}

type PushDropped struct {
	Username string
	Event    string
}

type WorkerRestarted struct {
	WorkerName string
	Panicked   bool
}
