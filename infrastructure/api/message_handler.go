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

type MessageHandler struct {
	log            *slog.Logger
	messageService services.IMessageService
}

func NewMessageHandler(log *slog.Logger, messageService services.IMessageService) *MessageHandler {
	return &MessageHandler{log: log, messageService: messageService}
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// Send handles POST /v1/channels/:id/messages.
func (h *MessageHandler) Send(c *gin.Context) {
	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	var req sendMessageRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.messageService.Send(c.Request.Context(), domain.SendMessageCommand{
		ChannelID: channelID,
		Content:   req.Content,
	})
	if err != nil {
		c.JSON(cherrors.MapToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id.String()})
}

// List handles GET /v1/channels/:id/messages. Returns the most recent
// messages newest-first; clients reverse to chronological order before
// rendering. Open to anonymous callers.
func (h *MessageHandler) List(c *gin.Context) {
	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	messages, err := h.messageService.List(c.Request.Context(), channelID)
	if err != nil {
		h.log.Error("failed to list messages", "channel_id", channelID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, toMessageResponses(messages))
}

// Delete handles DELETE /v1/messages/:id.
func (h *MessageHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err = h.messageService.Delete(c.Request.Context(), id); err != nil {
		c.JSON(cherrors.MapToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
