//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"direct-chat/domain"
	"direct-chat/errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const userPrefix = "user:"

type IUserRepository interface {
	CreateUser(username, hashedPassword string) (domain.User, error)
	GetUserByUsername(username string) (domain.User, error)
	ListUsernames() ([]string, error)
}

// UserRepository is the persistent part of the credential store.
// Account writes go through a single mutex so that two concurrent
// registrations of the same name cannot both pass the existence check.
type UserRepository struct {
	db *badger.DB
	mu sync.Mutex
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

func userKey(username string) []byte {
	return []byte(userPrefix + username)
}

// CreateUser persists a new account and returns it with its generated ID.
// The username match is exact and case-sensitive.
func (u *UserRepository) CreateUser(username, hashedPassword string) (domain.User, error) {
	user := domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	err := u.db.Update(func(txn *badger.Txn) error {
		key := userKey(username)
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return errors.ErrUserAlreadyExists
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, marshalUser(user))
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// GetUserByUsername returns ErrUserNotFound when no account matches.
func (u *UserRepository) GetUserByUsername(username string) (domain.User, error) {
	var user domain.User

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			user, err = unmarshalUser(val)
			return err
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %q: %w", username, err)
	}
	return user, nil
}

// ListUsernames returns every registered username in byte order.
// Only keys are read, values stay on disk.
func (u *UserRepository) ListUsernames() ([]string, error) {
	var usernames []string
	err := u.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = []byte(userPrefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			usernames = append(usernames, string(it.Item().Key()[len(userPrefix):]))
		}
		return nil
	})
	return usernames, err
}
