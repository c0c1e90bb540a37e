//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	cherrors "chat-hub/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	messagePrefix    = "msg:"
	messageRefPrefix = "msgref:"

	// 19 digits cover the full uint64 range of the sequence counter.
	seqPadding = "%019d"
	seqCeiling = "9999999999999999999"
)

type IMessageRepository interface {
	StoreMessage(message DiskMessage) (DiskMessage, error)
	GetMessages(channelID uuid.UUID) ([]DiskMessage, error)
	GetMessage(id uuid.UUID) (DiskMessage, error)
	DeleteMessage(id uuid.UUID) error
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// DiskMessage is the repository-level representation of a message.
type DiskMessage struct {
	ID        uuid.UUID
	ChannelID uuid.UUID
	UserID    string
	Content   string
	UserName  string
	UserImage *string
	Seq       uint64
	At        time.Time
}

type messageRecord struct {
	ID        string  `msgpack:"id"`
	ChannelID string  `msgpack:"channel_id"`
	UserID    string  `msgpack:"user_id"`
	Content   string  `msgpack:"content"`
	UserName  string  `msgpack:"user_name"`
	UserImage *string `msgpack:"user_image,omitempty"`
	Seq       uint64  `msgpack:"seq"`
	At        int64   `msgpack:"at"`
}

// StoreMessage persists a message in BadgerDB and returns it with its
// assigned sequence number.
// The primary key is formatted as "msg:{channel_id}:{seq_padded}:{uuid}" to:
//  1. Group all messages of a channel under one scannable prefix.
//  2. Ensure insertion-order sorting using 19-digit zero padding
//     (lexicographical order follows the counter).
//
// A secondary "msgref:{uuid}" entry maps the message id back to the
// primary key for individual lookup and deletion.
func (m MessageRepository) StoreMessage(message DiskMessage) (DiskMessage, error) {
	err := m.db.Update(func(txn *badger.Txn) error {
		seq, err := nextSeq(txn, messageSeqKey)
		if err != nil {
			return err
		}
		message.Seq = seq

		key := messageKey(message.ChannelID, seq, message.ID)
		bytes, err := msgpack.Marshal(fromDiskMessage(message))
		if err != nil {
			return err
		}
		if err = txn.Set(key, bytes); err != nil {
			return err
		}
		return txn.Set(messageRefKey(message.ID), key)
	})
	return message, err
}

// GetMessages retrieves the most recent messages of a channel using a
// reverse prefix scan. Thanks to the padded sequence in the key, the
// iterator yields newest-first without any sorting step. Collection
// stops once the configured limitMessages is reached; there is no
// cursor beyond that cap.
func (m MessageRepository) GetMessages(channelID uuid.UUID) ([]DiskMessage, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix + channelID.String() + ":")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the highest possible sequence, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte(seqCeiling)...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(byteMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte{}, value...))
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

	var diskMessages []DiskMessage
	for _, b := range byteMessages {
		var record messageRecord
		if err = msgpack.Unmarshal(b, &record); err != nil {
			return nil, err
		}
		message, err := toDiskMessage(record)
		if err != nil {
			return nil, err
		}
		diskMessages = append(diskMessages, message)
	}
	return diskMessages, nil
}

// GetMessage resolves a message by id through its "msgref:" entry.
func (m MessageRepository) GetMessage(id uuid.UUID) (DiskMessage, error) {
	var record messageRecord
	err := m.db.View(func(txn *badger.Txn) error {
		key, err := resolveMessageKey(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &record)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return DiskMessage{}, cherrors.ErrNotFound
		}
		return DiskMessage{}, err
	}
	return toDiskMessage(record)
}

// DeleteMessage removes a single message and its ref entry. The caller
// is responsible for authorization; the repository only enforces
// existence.
func (m MessageRepository) DeleteMessage(id uuid.UUID) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		key, err := resolveMessageKey(txn, id)
		if err != nil {
			return err
		}
		if err = txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageRefKey(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return cherrors.ErrNotFound
	}
	return err
}

func resolveMessageKey(txn *badger.Txn, id uuid.UUID) ([]byte, error) {
	item, err := txn.Get(messageRefKey(id))
	if err != nil {
		return nil, err
	}
	var key []byte
	err = item.Value(func(val []byte) error {
		key = append([]byte{}, val...)
		return nil
	})
	return key, err
}

func messageKey(channelID uuid.UUID, seq uint64, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf(messagePrefix+"%s:"+seqPadding+":%s", channelID, seq, id))
}

func messageRefKey(id uuid.UUID) []byte {
	return []byte(messageRefPrefix + id.String())
}

// messageIDFromKey extracts the trailing uuid segment of a primary key.
func messageIDFromKey(key []byte) (uuid.UUID, error) {
	parts := strings.Split(string(key), ":")
	return uuid.Parse(parts[len(parts)-1])
}

func fromDiskMessage(message DiskMessage) messageRecord {
	return messageRecord{
		ID:        message.ID.String(),
		ChannelID: message.ChannelID.String(),
		UserID:    message.UserID,
		Content:   message.Content,
		UserName:  message.UserName,
		UserImage: message.UserImage,
		Seq:       message.Seq,
		At:        message.At.UnixNano(),
	}
}

func toDiskMessage(record messageRecord) (DiskMessage, error) {
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return DiskMessage{}, err
	}
	parsedChannelID, err := uuid.Parse(record.ChannelID)
	if err != nil {
		return DiskMessage{}, err
	}
	return DiskMessage{
		ID:        parsedID,
		ChannelID: parsedChannelID,
		UserID:    record.UserID,
		Content:   record.Content,
		UserName:  record.UserName,
		UserImage: record.UserImage,
		Seq:       record.Seq,
		At:        time.Unix(0, record.At).UTC(),
	}, nil
}
