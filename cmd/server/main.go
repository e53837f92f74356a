package main

import (
	"context"
	"direct-chat/auth"
	"direct-chat/contract"
	"direct-chat/domain/event"
	"direct-chat/infrastructure/health"
	"direct-chat/infrastructure/transport"
	"direct-chat/moderation"
	"direct-chat/repositories"
	"direct-chat/runtime"
	"direct-chat/runtime/workers"
	"direct-chat/services"
	"direct-chat/session"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run keeps every defer (listeners, Badger) inside a function that returns,
// so they execute before os.Exit.
func run() (int, error) {
	// 1. Configuration & Logger
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	replacement, _ := config.CharacterRune()

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	userRepository := repositories.NewUserRepository(db)
	messageRepository, err := repositories.NewMessageRepository(db, log, config.LimitMessages)
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = messageRepository.Close() }()

	// 3. Moderation, sessions and services
	moderator, err := moderation.NewModerator(moderation.ParseWords(config.CensoredWords), replacement, log)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
	}

	telemetry := runtime.NewTelemetry(config.TelemetryBufferSize)
	counter := event.NewCounter()
	registry := runtime.NewRegistry()
	fanout := runtime.NewFanout(log, registry, config.SinkTimeout).WithTelemetry(telemetry)
	authService := services.NewAuthService(log, userRepository, auth.DefaultParams)
	chatService := services.NewChatService(
		log, userRepository, messageRepository, registry, fanout,
		moderator, config.MaxContentLength,
	).WithTelemetry(telemetry)
	handler := session.NewHandler(log, authService, chatService, session.Options{
		BufferSize:      config.ConnectionBufferSize,
		DeliveryTimeout: config.DeliveryTimeout,
	})
	lineOptions := session.LineOptions{
		MaxLineLength: config.MaxLineLength,
		IdleTimeout:   config.IdleTimeout,
		WriteTimeout:  config.WriteTimeout,
	}

	// 4. Listeners are bound up front so a busy port fails fast
	var listeners []net.Listener
	defer func() {
		for _, l := range listeners {
			_ = l.Close()
		}
	}()
	listenConfig := net.ListenConfig{KeepAlive: config.KeepAlive}
	listen := func(port int) (net.Listener, error) {
		address := config.Address(port)
		l, err := listenConfig.Listen(context.Background(), "tcp", address)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
		}
		listeners = append(listeners, l)
		return l, nil
	}

	tcpListener, err := listen(config.Port)
	if err != nil {
		return exitRuntime, err
	}
	workerList := []contract.Worker{
		transport.NewTCPServer(log, tcpListener, handler, lineOptions),
		workers.NewHeartbeatWorker(log, registry, counter, config.HeartbeatInterval),
		workers.NewTelemetryWorker(log, telemetry,
			event.NewMessageSentHandler(log, counter),
			event.NewCensoredHandler(log, counter),
			event.NewFailureHandler(log, counter),
		),
	}

	if config.WebsocketPort > 0 {
		wsListener, err := listen(config.WebsocketPort)
		if err != nil {
			return exitRuntime, err
		}
		workerList = append(workerList, transport.NewWebsocketGateway(log, wsListener, handler, lineOptions))
	}
	if config.HealthPort > 0 {
		healthListener, err := listen(config.HealthPort)
		if err != nil {
			return exitRuntime, err
		}
		workerList = append(workerList, health.NewWorker(log, healthListener))
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Supervise until a signal arrives
	log.Info("Relay starting", "port", config.Port, "websocket_port", config.WebsocketPort, "health_port", config.HealthPort)
	workers.NewSupervisor(log, config.RestartInterval).
		WithTelemetry(telemetry).
		Add(workerList...).
		Run(ctx)

	log.Info("Program stopped cleanly")
	return exitOK, nil
}
