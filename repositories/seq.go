package repositories

import (
	"encoding/binary"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

const (
	channelSeqKey = "seq:channels"
	messageSeqKey = "seq:messages"
)

// nextSeq bumps the named insertion counter inside txn. Because the
// counter lives in the same transaction as the insert it guards,
// committed inserts carry strictly monotonically increasing sequence
// numbers, and two concurrent inserts cannot share one.
func nextSeq(txn *badger.Txn, key string) (uint64, error) {
	var current uint64
	item, err := txn.Get([]byte(key))
	switch {
	case err == nil:
		err = item.Value(func(val []byte) error {
			current = binary.BigEndian.Uint64(val)
			return nil
		})
		if err != nil {
			return 0, err
		}
	case errors.Is(err, badger.ErrKeyNotFound):
		// First insert for this collection.
	default:
		return 0, err
	}

	next := current + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	return next, txn.Set([]byte(key), buf)
}
