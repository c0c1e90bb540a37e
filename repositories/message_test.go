package repositories

import (
	"log/slog"
	"testing"
	"time"

	cherrors "chat-hub/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Record_Multiple_Messages(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	channelID := uuid.New()
	content := "this message will self destruct in 5 seconds"
	at := time.Now().UTC()
	diskMessages := []DiskMessage{
		{ID: uuid.New(), ChannelID: channelID, UserID: "alice", Content: content, UserName: "Alice", At: at},
		{ID: uuid.New(), ChannelID: channelID, UserID: "bob", Content: content, UserName: "Bob", At: at.Add(1 * time.Minute)},
		{ID: uuid.New(), ChannelID: channelID, UserID: "clara", Content: content, UserName: "Clara", At: at.Add(2 * time.Minute)},
	}
	for _, dm := range diskMessages {
		_, err = repository.StoreMessage(dm)
		req.NoError(err)
	}

	// When fetching messages
	fetchedMessages, err := repository.GetMessages(channelID)
	req.NoError(err)

	// Then they come back newest-first
	req.Len(fetchedMessages, len(diskMessages))
	req.Equal(diskMessages[2].ID, fetchedMessages[0].ID)
	req.Equal(diskMessages[1].ID, fetchedMessages[1].ID)
	req.Equal(diskMessages[0].ID, fetchedMessages[2].ID)
}

func Test_Record_Multiple_Messages_And_Limit(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	limit := 2
	repository := NewMessageRepository(db, slog.Default(), &limit)
	channelID := uuid.New()
	at := time.Now().UTC()
	for i := 0; i < 3; i++ {
		_, err = repository.StoreMessage(DiskMessage{
			ID: uuid.New(), ChannelID: channelID, UserID: "alice",
			Content: "hello", UserName: "Alice", At: at,
		})
		req.NoError(err)
	}

	fetchedMessages, err := repository.GetMessages(channelID)
	req.NoError(err)
	req.Len(fetchedMessages, limit)
}

func Test_Sequence_Is_Strictly_Monotonic(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	channelID := uuid.New()

	var lastSeq uint64
	for i := 0; i < 10; i++ {
		stored, err := repository.StoreMessage(DiskMessage{
			ID: uuid.New(), ChannelID: channelID, UserID: "alice",
			Content: "tick", UserName: "Alice", At: time.Now().UTC(),
		})
		req.NoError(err)
		req.Greater(stored.Seq, lastSeq)
		lastSeq = stored.Seq
	}
}

func Test_Messages_Are_Isolated_Per_Channel(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	channelA := uuid.New()
	channelB := uuid.New()
	at := time.Now().UTC()

	_, err = repository.StoreMessage(DiskMessage{ID: uuid.New(), ChannelID: channelA, UserID: "alice", Content: "a", UserName: "Alice", At: at})
	req.NoError(err)
	_, err = repository.StoreMessage(DiskMessage{ID: uuid.New(), ChannelID: channelB, UserID: "bob", Content: "b", UserName: "Bob", At: at})
	req.NoError(err)

	fetchedA, err := repository.GetMessages(channelA)
	req.NoError(err)
	req.Len(fetchedA, 1)
	req.Equal("a", fetchedA[0].Content)
}

func Test_Get_And_Delete_Message_By_ID(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	channelID := uuid.New()
	messageID := uuid.New()
	image := "https://example.com/alice.png"

	_, err = repository.StoreMessage(DiskMessage{
		ID: messageID, ChannelID: channelID, UserID: "alice",
		Content: "keep me", UserName: "Alice", UserImage: &image,
		At: time.Now().UTC(),
	})
	req.NoError(err)

	// Given the message resolves by id
	fetched, err := repository.GetMessage(messageID)
	req.NoError(err)
	req.Equal("keep me", fetched.Content)
	req.Equal(&image, fetched.UserImage)

	// When deleting it
	req.NoError(repository.DeleteMessage(messageID))

	// Then it is gone from both the id lookup and the channel scan
	_, err = repository.GetMessage(messageID)
	req.ErrorIs(err, cherrors.ErrNotFound)
	fetchedMessages, err := repository.GetMessages(channelID)
	req.NoError(err)
	req.Empty(fetchedMessages)
}

func Test_Delete_Unknown_Message(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default(), nil)
	req.ErrorIs(repository.DeleteMessage(uuid.New()), cherrors.ErrNotFound)
}
