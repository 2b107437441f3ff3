package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskline/auth"
	"taskline/gateway"
	"taskline/internal"
	"taskline/observability"
	"taskline/repositories"
	"taskline/runtime"
	"taskline/runtime/workers"
	"taskline/services"

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
// centralizes error reporting. This pattern is preferred over calling
// os.Exit or panic directly because it ensures all 'defer' statements
// (like database cleanup) are executed before the program exits, and it
// provides a structured way to handle graceful shutdowns for the gateway
// and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
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

	// 3. Directory store & registry
	directory := repositories.NewDirectory(
		repositories.NewConversationRepository(db),
		repositories.NewMessageRepository(db, log),
		repositories.NewProjectRepository(db),
		repositories.NewTaskRepository(db),
		repositories.NewUserRepository(db),
	)
	sessions := repositories.NewSessionRepository(db)
	registry := runtime.NewRegistry()
	monitoring := observability.NewMonitoringManager(log)

	// 4. Fan-out pipeline under supervision
	requests := make(chan runtime.NotificationRequest, config.NotificationQueue)
	engine := runtime.NewFanoutEngine(log, registry, directory, monitoring)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewNotifierWorker(log, engine, requests))
	sup.Add(workers.NewHeartbeatWorker(log, monitoring))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go monitoring.Listen(ctx)
	sup.Run(ctx)

	// 6. Gateway server
	authenticator := auth.NewSessionAuthenticator(sessions, directory,
		[]byte(config.JWTSecret), config.SessionCookieName, log)
	service := services.NewRealtimeService(log, registry, directory, requests, monitoring)
	server := gateway.NewServer(log, config.Host, config.Port, config.Origins(),
		config.ConnectionBufferSize, config.MaxPayloadBytes,
		authenticator, service, registry, monitoring)

	// 7. Debug inspect page
	internal.StartDebugServer(db, config.DebugPort, "/inspect", nil, func() map[string]any {
		stats := monitoring.GetLatest()
		return map[string]any{
			"connections":   stats.ConnectionsOpen,
			"auth_failures": stats.AuthFailures,
			"room_joins":    stats.RoomJoins,
			"fanned":        stats.NotificationsFanned,
			"deliveries":    stats.Deliveries,
			"dropped":       stats.DeliveriesDropped,
			"rss_mb":        stats.RssMb,
		}
	})

	// 8. Serve until signal, then drain workers
	err = server.Run(ctx)
	sup.Wait()
	log.Info("Program stopped cleanly")
	return err
}
