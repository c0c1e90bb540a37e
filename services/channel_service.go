//go:generate go run go.uber.org/mock/mockgen -source=channel_service.go -destination=../mocks/mock_channel_service.go -package=mocks
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

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var validate = validator.New()

type IChannelService interface {
	Create(ctx context.Context, cmd domain.CreateChannelCommand) (uuid.UUID, error)
	List(ctx context.Context) ([]domain.Channel, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Channel, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ChannelService struct {
	log      *slog.Logger
	channels repositories.IChannelRepository
	broker   *subscription.Broker
}

func NewChannelService(log *slog.Logger, channels repositories.IChannelRepository,
	broker *subscription.Broker) *ChannelService {
	return &ChannelService{log: log, channels: channels, broker: broker}
}

// Create opens a new channel owned by the caller. Duplicate names are
// permitted.
func (s *ChannelService) Create(ctx context.Context, cmd domain.CreateChannelCommand) (uuid.UUID, error) {
	userID, ok := auth.CallerID(ctx)
	if !ok {
		return uuid.Nil, cherrors.ErrUnauthorized
	}
	if err := validate.Struct(cmd); err != nil {
		return uuid.Nil, err
	}

	stored, err := s.channels.StoreChannel(repositories.DiskChannel{
		ID:          uuid.New(),
		Name:        cmd.Name,
		Description: cmd.Description,
		CreatedBy:   userID,
		At:          time.Now().UTC(),
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.broker.Invalidate(ctx, subscription.Channel(stored.ID.String()))
	return stored.ID, nil
}

// List returns every channel in insertion order. No authentication
// required.
func (s *ChannelService) List(_ context.Context) ([]domain.Channel, error) {
	channels, err := s.channels.ListChannels()
	if err != nil {
		return nil, err
	}
	return lo.Map(channels, func(item repositories.DiskChannel, _ int) domain.Channel {
		return toChannel(item)
	}), nil
}

// Get returns nil, not an error, when the id does not resolve.
func (s *ChannelService) Get(_ context.Context, id uuid.UUID) (*domain.Channel, error) {
	stored, err := s.channels.GetChannel(id)
	if err != nil || stored == nil {
		return nil, err
	}
	channel := toChannel(*stored)
	return &channel, nil
}

// Delete removes the channel and every message it contains as one
// atomic operation. Any authenticated user may delete any channel;
// there is deliberately no creator check here.
func (s *ChannelService) Delete(ctx context.Context, id uuid.UUID) error {
	_, ok := auth.CallerID(ctx)
	if !ok {
		return cherrors.ErrUnauthorized
	}

	swept, err := s.channels.DeleteChannel(id)
	if err != nil {
		return err
	}

	s.log.Info("channel deleted", "channel_id", id, "messages_swept", swept)
	s.broker.Invalidate(ctx,
		subscription.Channel(id.String()),
		subscription.Messages(id.String()))
	return nil
}

func toChannel(item repositories.DiskChannel) domain.Channel {
	return domain.Channel{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		CreatedBy:   item.CreatedBy,
		Seq:         item.Seq,
		CreatedAt:   item.At,
	}
}
