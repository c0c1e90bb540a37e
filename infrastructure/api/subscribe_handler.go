package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"chat-hub/services"
	"chat-hub/subscription"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// SubscribeHandler serves long-lived WebSocket read subscriptions.
// Every push is the full recomputed result of the subscribed query as
// JSON; the first frame arrives right after the upgrade.
type SubscribeHandler struct {
	log                  *slog.Logger
	broker               *subscription.Broker
	channelService       services.IChannelService
	messageService       services.IMessageService
	connectionBufferSize int
}

func NewSubscribeHandler(log *slog.Logger, broker *subscription.Broker,
	channelService services.IChannelService, messageService services.IMessageService,
	connectionBufferSize int) *SubscribeHandler {
	return &SubscribeHandler{
		log:                  log,
		broker:               broker,
		channelService:       channelService,
		messageService:       messageService,
		connectionBufferSize: connectionBufferSize,
	}
}

// Subscribe handles GET /v1/subscribe?query=channels|channel|messages&id=...
// It blocks until the client disconnects or a network error occurs.
// Cleanup runs via the deferred cancel, so no tracking state outlives
// the connection.
func (h *SubscribeHandler) Subscribe(c *gin.Context) {
	deps, query, err := h.resolve(c.Query("query"), c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	sink := subscription.NewBufferedSink(h.connectionBufferSize)
	handle, err := h.broker.Subscribe(ctx, deps, query, sink)
	if err != nil {
		h.log.Error("subscription failed", "error", err)
		return
	}
	defer handle.Cancel()

	// Reader goroutine: its only job is to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case result := <-sink.Results:
			if err := conn.WriteJSON(result); err != nil {
				h.log.Warn("failed to push result", "subscription_id", handle.ID, "error", err)
				return
			}
		}
	}
}

// resolve maps the query parameter to a dependency set and a recompute
// function over the read services.
func (h *SubscribeHandler) resolve(kind, rawID string) ([]subscription.Dependency, subscription.Query, error) {
	switch kind {
	case "channels":
		deps := []subscription.Dependency{subscription.Channels()}
		query := func(ctx context.Context) (subscription.Result, error) {
			channels, err := h.channelService.List(ctx)
			if err != nil {
				return nil, err
			}
			return toChannelResponses(channels), nil
		}
		return deps, query, nil

	case "channel":
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid channel id")
		}
		deps := []subscription.Dependency{subscription.Channel(id.String())}
		query := func(ctx context.Context) (subscription.Result, error) {
			channel, err := h.channelService.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			if channel == nil {
				// Absent resolves to an explicit null frame.
				return (*channelResponse)(nil), nil
			}
			response := toChannelResponse(*channel)
			return &response, nil
		}
		return deps, query, nil

	case "messages":
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid channel id")
		}
		deps := []subscription.Dependency{subscription.Messages(id.String())}
		query := func(ctx context.Context) (subscription.Result, error) {
			messages, err := h.messageService.List(ctx, id)
			if err != nil {
				return nil, err
			}
			return toMessageResponses(messages), nil
		}
		return deps, query, nil

	default:
		return nil, nil, fmt.Errorf("unknown query %q", kind)
	}
}
