package main

import (
	"bytes"
	"direct-chat/domain"
	"direct-chat/repositories"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *badger.DB {
	t.Helper()
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	users := repositories.NewUserRepository(db)
	messages, err := repositories.NewMessageRepository(db, logs.GetLoggerFromLevel(slog.LevelError), nil)
	req.NoError(err)
	t.Cleanup(func() { _ = messages.Close() })

	alice, err := users.CreateUser("alice", "h1")
	req.NoError(err)
	bob, err := users.CreateUser("bob", "h2")
	req.NoError(err)
	req.NoError(messages.StoreMessage(domain.Message{
		ID: uuid.New(), SenderID: alice.ID, ReceiverID: bob.ID,
		Content: "hello bob", CreatedAt: time.Now().UTC(),
	}))
	return db
}

func TestInspect_All(t *testing.T) {
	req := require.New(t)
	db := seed(t)
	var out bytes.Buffer

	// When
	req.NoError(inspect(&out, db, "all"))

	// Then
	text := out.String()
	req.Contains(text, "USERNAME")
	req.Contains(text, "alice")
	req.Contains(text, "hello bob")
}

func TestInspect_Users_Only(t *testing.T) {
	req := require.New(t)
	db := seed(t)
	var out bytes.Buffer

	req.NoError(inspect(&out, db, "users"))
	req.Contains(out.String(), "bob")
	req.NotContains(out.String(), "hello bob")
}

func TestInspect_Rejects_Unknown_Section(t *testing.T) {
	req := require.New(t)
	db := seed(t)

	req.Error(inspect(&bytes.Buffer{}, db, "rooms"))
}
