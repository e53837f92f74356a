package repositories

import (
	"direct-chat/domain"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestScan_Users_And_Messages(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	users := NewUserRepository(db)
	messages, err := NewMessageRepository(db, log, nil)
	req.NoError(err)
	defer messages.Close()

	bob, err := users.CreateUser("bob", "hash-b")
	req.NoError(err)
	alice, err := users.CreateUser("alice", "hash-a")
	req.NoError(err)
	now := time.Now().UTC()
	req.NoError(messages.StoreMessage(newMessage(alice.ID, bob.ID, "one", now)))
	req.NoError(messages.StoreMessage(newMessage(bob.ID, alice.ID, "two", now.Add(time.Millisecond))))

	var names []string
	req.NoError(ScanUsers(db, func(u domain.User) error {
		names = append(names, u.Username)
		return nil
	}))
	req.Equal([]string{"alice", "bob"}, names)

	var seen []string
	req.NoError(ScanMessages(db, func(key string, m domain.Message) error {
		req.Contains(key, messagePrefix)
		seen = append(seen, m.Content)
		return nil
	}))
	req.Equal([]string{"one", "two"}, seen)
}
