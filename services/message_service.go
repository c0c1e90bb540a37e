//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_message_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"time"

	"chat-hub/auth"
	"chat-hub/domain"
	cherrors "chat-hub/errors"
	"chat-hub/repositories"
	"chat-hub/subscription"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// FallbackUserName is denormalized onto messages whose sender has no
// profile name.
const FallbackUserName = "Anonymous"

type IMessageService interface {
	Send(ctx context.Context, cmd domain.SendMessageCommand) (uuid.UUID, error)
	List(ctx context.Context, channelID uuid.UUID) ([]domain.Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MessageService struct {
	log      *slog.Logger
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
	broker   *subscription.Broker
}

func NewMessageService(log *slog.Logger, messages repositories.IMessageRepository,
	users repositories.IUserRepository, broker *subscription.Broker) *MessageService {
	return &MessageService{log: log, messages: messages, users: users, broker: broker}
}

// Send stores a message in the target channel with the sender's
// profile snapshot. The channel id is not checked against the store: a
// send into a deleted or nonexistent channel succeeds and leaves an
// orphaned message.
func (s *MessageService) Send(ctx context.Context, cmd domain.SendMessageCommand) (uuid.UUID, error) {
	userID, ok := auth.CallerID(ctx)
	if !ok {
		return uuid.Nil, cherrors.ErrUnauthorized
	}
	if err := validate.Struct(cmd); err != nil {
		return uuid.Nil, err
	}

	// Sessions can outlive their account; a stale id is rejected here.
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return uuid.Nil, err
	}

	userName := FallbackUserName
	if user.Name != nil && *user.Name != "" {
		userName = *user.Name
	}

	stored, err := s.messages.StoreMessage(repositories.DiskMessage{
		ID:        uuid.New(),
		ChannelID: cmd.ChannelID,
		UserID:    userID,
		Content:   cmd.Content,
		UserName:  userName,
		UserImage: user.Image,
		At:        time.Now().UTC(),
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.broker.Invalidate(ctx, subscription.Messages(cmd.ChannelID.String()))
	return stored.ID, nil
}

// List returns at most the 100 most recent messages of the channel,
// newest-first. The presentation layer reverses to chronological order
// before rendering. No authentication required.
func (s *MessageService) List(_ context.Context, channelID uuid.UUID) ([]domain.Message, error) {
	messages, err := s.messages.GetMessages(channelID)
	if err != nil {
		return nil, err
	}
	return lo.Map(messages, func(item repositories.DiskMessage, _ int) domain.Message {
		return toMessage(item)
	}), nil
}

// Delete removes a single message. Only the original sender may delete
// it; no channel-creator or admin override exists.
func (s *MessageService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, ok := auth.CallerID(ctx)
	if !ok {
		return cherrors.ErrUnauthorized
	}

	message, err := s.messages.GetMessage(id)
	if err != nil {
		return err
	}
	if message.UserID != userID {
		return cherrors.ErrForbidden
	}

	if err = s.messages.DeleteMessage(id); err != nil {
		return err
	}

	s.broker.Invalidate(ctx, subscription.Messages(message.ChannelID.String()))
	return nil
}

func toMessage(item repositories.DiskMessage) domain.Message {
	return domain.Message{
		ID:        item.ID,
		ChannelID: item.ChannelID,
		UserID:    item.UserID,
		Content:   item.Content,
		UserName:  item.UserName,
		UserImage: item.UserImage,
		Seq:       item.Seq,
		At:        item.At,
	}
}
