package services

import (
	"context"
	"log/slog"
	"testing"

	"chat-hub/auth"
	"chat-hub/repositories"
	"chat-hub/subscription"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// testStack wires real repositories over an isolated badger instance,
// the way the full binary does.
type testStack struct {
	channels *ChannelService
	messages *MessageService
	users    repositories.IUserRepository
	broker   *subscription.Broker
}

func newTestStack(t *testing.T, limitMessages *int) testStack {
	t.Helper()
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelError)
	broker := subscription.NewBroker(log)
	channelRepository := repositories.NewChannelRepository(db, log)
	messageRepository := repositories.NewMessageRepository(db, log, limitMessages)
	userRepository := repositories.NewUserRepository(db)

	return testStack{
		channels: NewChannelService(log, channelRepository, broker),
		messages: NewMessageService(log, messageRepository, userRepository, broker),
		users:    userRepository,
		broker:   broker,
	}
}

// registerUser creates an account and returns an authenticated context
// for it along with the user id.
func (s testStack) registerUser(t *testing.T, email string, name *string) (context.Context, string) {
	t.Helper()
	id, err := s.users.CreateUser(email, "hash", name)
	require.NoError(t, err)
	return auth.WithCaller(context.Background(), id), id
}

var anonymous = context.Background()

func namePtr(name string) *string { return lo.ToPtr(name) }
