package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-hub/infrastructure/api"
	"chat-hub/internal"
	"chat-hub/repositories"
	"chat-hub/services"
	"chat-hub/subscription"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database close in
// particular) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load() // a missing .env is fine outside development
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories, reactive broker, services
	channelRepository := repositories.NewChannelRepository(db, log)
	messageRepository := repositories.NewMessageRepository(db, log, messageLimit(config.LimitMessages))
	userRepository := repositories.NewUserRepository(db)

	broker := subscription.NewBroker(log)
	secret := []byte(config.JWTSecret)
	authService := services.NewAuthService(userRepository, secret, config.AuthTokenDuration)
	channelService := services.NewChannelService(log, channelRepository, broker)
	messageService := services.NewMessageService(log, messageRepository, userRepository, broker)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. HTTP server
	router := api.NewRouter(log, secret, authService, channelService, messageService,
		broker, config.ConnectionBufferSize)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router}

	if config.InspectPort != 0 {
		internal.StartInspectServer(db, config.InspectPort)
		log.Info("Inspect server started", "port", config.InspectPort)
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}
