// Package domain contains core concepts of the chat relay.
// This file defines Message records and related rules.
// Messages are immutable once stored.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one direct message between two registered users.
type Message struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Sender     string
	Receiver   string
	Content    string
	CreatedAt  time.Time
}

// HistoryEntry is a message as seen in a conversation transcript.
type HistoryEntry struct {
	Sender  string
	Content string
	At      time.Time
}
