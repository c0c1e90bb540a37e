// Package api exposes the chat core over HTTP and WebSocket. Handlers
// stay thin: parse, call the service, map the error. All authorization
// decisions live in the services.
package api

import (
	"log/slog"

	"chat-hub/auth"
	"chat-hub/services"
	"chat-hub/subscription"

	"github.com/gin-gonic/gin"
)

func NewRouter(log *slog.Logger, secret []byte,
	authService services.IAuthService,
	channelService services.IChannelService,
	messageService services.IMessageService,
	broker *subscription.Broker,
	connectionBufferSize int) *gin.Engine {

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(auth.Middleware(secret))

	v1 := router.Group("/v1")

	authHandler := NewAuthHandler(log, authService)
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	channelHandler := NewChannelHandler(log, channelService)
	v1.POST("/channels", channelHandler.Create)
	v1.GET("/channels", channelHandler.List)
	v1.GET("/channels/:id", channelHandler.Get)
	v1.DELETE("/channels/:id", channelHandler.Delete)

	messageHandler := NewMessageHandler(log, messageService)
	v1.GET("/channels/:id/messages", messageHandler.List)
	v1.POST("/channels/:id/messages", messageHandler.Send)
	v1.DELETE("/messages/:id", messageHandler.Delete)

	subscribeHandler := NewSubscribeHandler(log, broker, channelService, messageService, connectionBufferSize)
	v1.GET("/subscribe", subscribeHandler.Subscribe)

	return router
}
