//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"bytes"
	"direct-chat/domain"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	messagePrefix = "msg:"
	messageSeqKey = "seq:msg"
	seqBandwidth  = 1000
	lastKeySuffix = "~"
)

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	GetConversation(a, b uuid.UUID) ([]domain.Message, error)
}

// MessageRepository is the append-only message log.
type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
	seq           *badger.Sequence
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(messageSeqKey), seqBandwidth)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &MessageRepository{db: db, log: log, limitMessages: limitMessages, seq: seq}, nil
}

// Close returns the unused part of the leased sequence range.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

// conversationPrefix is identical for both directions of a pair.
func conversationPrefix(a, b uuid.UUID) []byte {
	first, second := a.String(), b.String()
	if second < first {
		first, second = second, first
	}
	return []byte(fmt.Sprintf("%s%s:%s:", messagePrefix, first, second))
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{low_id}:{high_id}:{timestamp_padded}:{seq_padded}" to:
//  1. Keep both directions of a conversation under one prefix.
//  2. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  3. Break ties between messages stored in the same nanosecond with a
//     monotonic sequence, in arrival order.
func (m *MessageRepository) StoreMessage(message domain.Message) error {
	n, err := m.seq.Next()
	if err != nil {
		return fmt.Errorf("next message sequence: %w", err)
	}
	key := fmt.Sprintf("%s%019d:%020d",
		conversationPrefix(message.SenderID, message.ReceiverID),
		message.CreatedAt.UnixNano(),
		n,
	)
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), marshalMessage(message))
	})
}

// GetConversation returns the messages exchanged between a and b, oldest
// first. When a limit is configured only the most recent ones are kept.
func (m *MessageRepository) GetConversation(a, b uuid.UUID) ([]domain.Message, error) {
	prefix := conversationPrefix(a, b)
	var messages []domain.Message

	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		options.Reverse = m.limitMessages != nil
		it := txn.NewIterator(options)
		defer it.Close()

		if options.Reverse {
			// Start after the newest possible key of the conversation
			it.Seek(append(bytes.Clone(prefix), lastKeySuffix...))
		} else {
			it.Rewind()
		}

		for ; it.Valid(); it.Next() {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				break
			}
			err := it.Item().Value(func(val []byte) error {
				message, err := unmarshalMessage(val)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if m.limitMessages != nil {
		slices.Reverse(messages)
	}
	return messages, nil
}
