package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"conversa/auth"
	"conversa/internal"
	"conversa/moderation"
	"conversa/repositories"
	"conversa/runtime"
	"conversa/runtime/workers"
	"conversa/services"
	"conversa/ws"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (like the database close)
// executes before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	options := badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Ensures the database lock is released and buffers are
		// flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Moderation (pass-through when no word list is configured)
	moderator, err := moderation.NewModerator(config.CensoredWordList(), config.CensoredRune())
	if err != nil {
		return exitRuntime, fmt.Errorf("building moderator: %w", err)
	}

	// 4. Coordination engine and services
	hub := runtime.NewHub(logger)
	messages := repositories.NewMessageRepository(db, logger)
	conversations := repositories.NewConversationRepository(db)
	users := repositories.NewUserRepository(db)
	tokens := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)

	chatService := services.NewChatService(hub, messages, conversations, moderator)
	authService := services.NewAuthService(users, tokens)

	// 5. Supervised background workers
	supervisor := workers.NewSupervisor(logger)
	supervisor.Add(workers.NewTelemetryWorker(logger, config.MetricInterval))
	go supervisor.Run(ctx)
	defer supervisor.Stop()

	// 6. HTTP/websocket front
	server := ws.NewServer(logger, ctx, ws.ServerConfig{
		Addr:       config.Addr,
		SendBuffer: config.ConnectionBufferSize,
	}, chatService, authService, tokens)

	if err := server.Run(); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}
