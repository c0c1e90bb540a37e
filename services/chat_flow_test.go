package services

import (
	"context"
	"testing"

	"chat-hub/domain"
	"chat-hub/subscription"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// collectingSink records every pushed result for assertions.
type collectingSink struct {
	results []subscription.Result
}

func (s *collectingSink) Consume(_ context.Context, result subscription.Result) error {
	s.results = append(s.results, result)
	return nil
}

func Test_Channel_Lifecycle_End_To_End(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t, lo.ToPtr(100))
	aliceCtx, _ := stack.registerUser(t, "alice@example.com", namePtr("Alice"))
	bobCtx, bobID := stack.registerUser(t, "bob@example.com", namePtr("Bob"))

	// Alice creates "ops"
	channelID, err := stack.channels.Create(aliceCtx, domain.CreateChannelCommand{Name: "ops"})
	req.NoError(err)

	// Bob sends "hello" into it
	_, err = stack.messages.Send(bobCtx, domain.SendMessageCommand{
		ChannelID: channelID, Content: "hello",
	})
	req.NoError(err)

	messages, err := stack.messages.List(anonymous, channelID)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("hello", messages[0].Content)
	req.Equal(bobID, messages[0].UserID)

	// Alice deletes the channel; listing by the stale id comes back empty
	req.NoError(stack.channels.Delete(aliceCtx, channelID))
	messages, err = stack.messages.List(anonymous, channelID)
	req.NoError(err)
	req.Empty(messages)
}

func Test_ChannelList_Subscription_Observes_Create(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t, nil)
	ctx, _ := stack.registerUser(t, "alice@example.com", nil)

	// Given an open channel-list subscription
	sink := &collectingSink{}
	query := func(ctx context.Context) (subscription.Result, error) {
		return stack.channels.List(ctx)
	}
	handle, err := stack.broker.Subscribe(anonymous,
		[]subscription.Dependency{subscription.Channels()}, query, sink)
	req.NoError(err)
	defer handle.Cancel()
	req.Len(sink.results, 1)
	req.Empty(sink.results[0].([]domain.Channel))

	// When a create commits
	channelID, err := stack.channels.Create(ctx, domain.CreateChannelCommand{Name: "ops"})
	req.NoError(err)

	// Then the new entry is pushed within the same write cycle, with no
	// stale read after the write was acknowledged
	req.Len(sink.results, 2)
	latest := sink.results[1].([]domain.Channel)
	req.Len(latest, 1)
	req.Equal(channelID, latest[0].ID)
}

func Test_Message_Subscription_Observes_Send_And_Cascade(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t, nil)
	ctx, _ := stack.registerUser(t, "alice@example.com", namePtr("Alice"))
	channelID, err := stack.channels.Create(ctx, domain.CreateChannelCommand{Name: "ops"})
	req.NoError(err)

	sink := &collectingSink{}
	query := func(ctx context.Context) (subscription.Result, error) {
		return stack.messages.List(ctx, channelID)
	}
	handle, err := stack.broker.Subscribe(anonymous,
		[]subscription.Dependency{subscription.Messages(channelID.String())}, query, sink)
	req.NoError(err)
	defer handle.Cancel()

	// A send pushes the updated list
	_, err = stack.messages.Send(ctx, domain.SendMessageCommand{
		ChannelID: channelID, Content: "hello",
	})
	req.NoError(err)
	req.Len(sink.results, 2)
	req.Len(sink.results[1].([]domain.Message), 1)

	// The channel cascade pushes the emptied list too
	req.NoError(stack.channels.Delete(ctx, channelID))
	req.Len(sink.results, 3)
	req.Empty(sink.results[2].([]domain.Message))
}

func Test_Cancelled_Subscription_Receives_Nothing(t *testing.T) {
	req := require.New(t)
	stack := newTestStack(t, nil)
	ctx, _ := stack.registerUser(t, "alice@example.com", nil)

	sink := &collectingSink{}
	query := func(ctx context.Context) (subscription.Result, error) {
		return stack.channels.List(ctx)
	}
	handle, err := stack.broker.Subscribe(anonymous,
		[]subscription.Dependency{subscription.Channels()}, query, sink)
	req.NoError(err)

	handle.Cancel()
	req.Zero(stack.broker.ActiveCount())

	_, err = stack.channels.Create(ctx, domain.CreateChannelCommand{Name: "ops"})
	req.NoError(err)

	// Only the initial push ever arrived.
	req.Len(sink.results, 1)
}
