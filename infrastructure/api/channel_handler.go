package api

import (
	"log/slog"
	"net/http"

	"chat-hub/domain"
	cherrors "chat-hub/errors"
	"chat-hub/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChannelHandler struct {
	log            *slog.Logger
	channelService services.IChannelService
}

func NewChannelHandler(log *slog.Logger, channelService services.IChannelService) *ChannelHandler {
	return &ChannelHandler{log: log, channelService: channelService}
}

// createChannelRequest is deliberately not the domain type: clients
// control the name and description, nothing else.
type createChannelRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// Create handles POST /v1/channels.
func (h *ChannelHandler) Create(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.channelService.Create(c.Request.Context(), domain.CreateChannelCommand{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		c.JSON(cherrors.MapToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id.String()})
}

// List handles GET /v1/channels. Open to anonymous callers.
func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.channelService.List(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list channels", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list channels"})
		return
	}
	c.JSON(http.StatusOK, toChannelResponses(channels))
}

// Get handles GET /v1/channels/:id. An unknown id is a 404, not a
// service error.
func (h *ChannelHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	channel, err := h.channelService.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Error("failed to get channel", "channel_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get channel"})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}
	c.JSON(http.StatusOK, toChannelResponse(*channel))
}

// Delete handles DELETE /v1/channels/:id.
func (h *ChannelHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	if err = h.channelService.Delete(c.Request.Context(), id); err != nil {
		c.JSON(cherrors.MapToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
