//go:generate go run go.uber.org/mock/mockgen -source=channel.go -destination=../mocks/mock_channel_repository.go -package=mocks
package repositories

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	cherrors "chat-hub/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

const channelPrefix = "channel:"

type IChannelRepository interface {
	StoreChannel(channel DiskChannel) (DiskChannel, error)
	GetChannel(id uuid.UUID) (*DiskChannel, error)
	ListChannels() ([]DiskChannel, error)
	DeleteChannel(id uuid.UUID) (int, error)
}

type ChannelRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewChannelRepository(db *badger.DB, log *slog.Logger) ChannelRepository {
	return ChannelRepository{db: db, log: log}
}

// DiskChannel is the repository-level representation of a channel.
type DiskChannel struct {
	ID          uuid.UUID
	Name        string
	Description *string
	CreatedBy   string
	Seq         uint64
	At          time.Time
}

type channelRecord struct {
	ID          string  `msgpack:"id"`
	Name        string  `msgpack:"name"`
	Description *string `msgpack:"description,omitempty"`
	CreatedBy   string  `msgpack:"created_by"`
	Seq         uint64  `msgpack:"seq"`
	At          int64   `msgpack:"at"`
}

// StoreChannel persists a channel under "channel:{uuid}" and returns it
// with its assigned insertion sequence. Names are not unique; two
// channels may share one.
func (c ChannelRepository) StoreChannel(channel DiskChannel) (DiskChannel, error) {
	err := c.db.Update(func(txn *badger.Txn) error {
		seq, err := nextSeq(txn, channelSeqKey)
		if err != nil {
			return err
		}
		channel.Seq = seq

		bytes, err := msgpack.Marshal(fromDiskChannel(channel))
		if err != nil {
			return err
		}
		return txn.Set(channelKey(channel.ID), bytes)
	})
	return channel, err
}

// GetChannel returns nil without an error when the id does not resolve.
func (c ChannelRepository) GetChannel(id uuid.UUID) (*DiskChannel, error) {
	var record channelRecord
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(channelKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &record)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	channel, err := toDiskChannel(record)
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

// ListChannels returns every channel in insertion order. Channel keys
// are uuid-suffixed, so the prefix scan yields them unordered and the
// stored sequence restores creation order afterwards.
func (c ChannelRepository) ListChannels() ([]DiskChannel, error) {
	var byteChannels [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := []byte(channelPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				byteChannels = append(byteChannels, append([]byte{}, value...))
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

	var diskChannels []DiskChannel
	for _, b := range byteChannels {
		var record channelRecord
		if err = msgpack.Unmarshal(b, &record); err != nil {
			return nil, err
		}
		channel, err := toDiskChannel(record)
		if err != nil {
			return nil, err
		}
		diskChannels = append(diskChannels, channel)
	}
	sort.Slice(diskChannels, func(i, j int) bool {
		return diskChannels[i].Seq < diskChannels[j].Seq
	})
	return diskChannels, nil
}

// DeleteChannel removes the channel and sweeps every message stored
// under its prefix, ref entries included, in a single transaction.
// Readers therefore never observe "channel gone, messages still there",
// and two concurrent cascades on the same channel conflict at commit:
// the loser surfaces ErrNotFound instead of re-running the sweep.
// Returns the number of messages swept.
func (c ChannelRepository) DeleteChannel(id uuid.UUID) (int, error) {
	var swept int
	err := c.db.Update(func(txn *badger.Txn) error {
		swept = 0
		if _, err := txn.Get(channelKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return cherrors.ErrNotFound
			}
			return err
		}
		if err := txn.Delete(channelKey(id)); err != nil {
			return err
		}

		// Bulk sweep of the whole channel prefix, whatever the count.
		prefix := []byte(messagePrefix + id.String() + ":")
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}

		for _, key := range keys {
			messageID, err := messageIDFromKey(key)
			if err != nil {
				return err
			}
			if err = txn.Delete(key); err != nil {
				return err
			}
			if err = txn.Delete(messageRefKey(messageID)); err != nil {
				return err
			}
			swept++
		}
		return nil
	})
	return swept, err
}

func channelKey(id uuid.UUID) []byte {
	return []byte(channelPrefix + id.String())
}

func fromDiskChannel(channel DiskChannel) channelRecord {
	return channelRecord{
		ID:          channel.ID.String(),
		Name:        channel.Name,
		Description: channel.Description,
		CreatedBy:   channel.CreatedBy,
		Seq:         channel.Seq,
		At:          channel.At.UnixNano(),
	}
}

func toDiskChannel(record channelRecord) (DiskChannel, error) {
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return DiskChannel{}, err
	}
	return DiskChannel{
		ID:          parsedID,
		Name:        record.Name,
		Description: record.Description,
		CreatedBy:   record.CreatedBy,
		Seq:         record.Seq,
		At:          time.Unix(0, record.At).UTC(),
	}, nil
}
