package api

import (
	"time"

	"chat-hub/domain"

	"github.com/samber/lo"
)

// Response shapes are separate from domain types: clients never see
// internal sequence numbers and should not depend on field layout.

type channelResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	UserName  string    `json:"user_name"`
	UserImage *string   `json:"user_image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toChannelResponse(channel domain.Channel) channelResponse {
	return channelResponse{
		ID:          channel.ID.String(),
		Name:        channel.Name,
		Description: channel.Description,
		CreatedBy:   channel.CreatedBy,
		CreatedAt:   channel.CreatedAt,
	}
}

func toChannelResponses(channels []domain.Channel) []channelResponse {
	return lo.Map(channels, func(item domain.Channel, _ int) channelResponse {
		return toChannelResponse(item)
	})
}

func toMessageResponse(message domain.Message) messageResponse {
	return messageResponse{
		ID:        message.ID.String(),
		ChannelID: message.ChannelID.String(),
		UserID:    message.UserID,
		Content:   message.Content,
		UserName:  message.UserName,
		UserImage: message.UserImage,
		CreatedAt: message.At,
	}
}

func toMessageResponses(messages []domain.Message) []messageResponse {
	return lo.Map(messages, func(item domain.Message, _ int) messageResponse {
		return toMessageResponse(item)
	})
}
