package repositories

import (
	"direct-chat/domain"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// ScanUsers visits every account in username order. It only reads, so it
// works on a database opened read-only.
func ScanUsers(db *badger.DB, visit func(domain.User) error) error {
	return scan(db, []byte(userPrefix), func(key, val []byte) error {
		user, err := unmarshalUser(val)
		if err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}
		return visit(user)
	})
}

// ScanMessages visits every stored message, grouped by conversation and in
// send order within each.
func ScanMessages(db *badger.DB, visit func(key string, m domain.Message) error) error {
	return scan(db, []byte(messagePrefix), func(key, val []byte) error {
		message, err := unmarshalMessage(val)
		if err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}
		return visit(string(key), message)
	})
}

func scan(db *badger.DB, prefix []byte, visit func(key, val []byte) error) error {
	return db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			if err := item.Value(func(val []byte) error { return visit(key, val) }); err != nil {
				return err
			}
		}
		return nil
	})
}
