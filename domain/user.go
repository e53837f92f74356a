// Package domain contains core concepts of the chat relay.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. The username is its public identity,
// the ID is the stable key used by the message log.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Directory is the answer to "who exists and who is online".
type Directory struct {
	All    []string
	Online []string
}
