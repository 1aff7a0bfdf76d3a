package main

import (
	"chat-relay/infrastructure/http/server"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat service terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until SIGINT/SIGTERM.
// Deferred cleanups (storage) run before the exit code is returned.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig(".env")
	if err != nil {
		return exitConfig, err
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage
	repository, closeStorage, err := openRepository(ctx, config, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer closeStorage()

	// 3. Core services
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(promRegistry)
	registry := runtime.NewPresenceRegistry()
	dispatcher := runtime.NewDispatcher(logger, registry, metrics, config.SinkTimeout)
	store := services.NewMessageStore(repository, logger, metrics)
	chatService := services.NewChatService(logger, store, dispatcher, registry, metrics)

	if config.CensoredWordsPath != "" {
		data, err := moderation.LoadCensoredWords(config.CensoredWordsPath)
		if err != nil {
			return exitConfig, fmt.Errorf("loading censored words: %w", err)
		}
		moderator, err := moderation.NewModerator(data.Words, charReplacement, logger)
		if err != nil {
			return exitConfig, fmt.Errorf("building moderator: %w", err)
		}
		chatService.WithCensor(moderator)
		logger.Info("Moderation enabled", "words", len(data.Words), "languages", data.Languages)
	}

	// 4. Transport
	self, err := observability.SelfProcess()
	if err != nil {
		return exitRuntime, fmt.Errorf("reading self process: %w", err)
	}
	handler := server.NewRouter(server.Routes{
		Chat:     server.NewChatServer(logger, chatService),
		Socket:   server.NewSocketServer(logger, chatService, config.ConnectionBufferSize),
		Upload:   server.NewUploadServer(logger, config.ChatImagesDir, config.MaxUploadSize),
		Health:   server.NewHealthServer(logger, self, registry),
		Gatherer: promRegistry,
		Metrics:  metrics,
	})
	httpServer := &http.Server{
		Addr:              config.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. Supervision
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewHTTPServerWorker(logger, httpServer, config.ShutdownTimeout),
		workers.NewProcessStatsWorker(logger, self, metrics, config.MetricInterval, registry.Len),
	)

	logger.Info("Chat service starting", "address", config.Address(), "storage", config.StorageBackend)
	sup.Run(ctx)
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

// openRepository returns the configured message repository and its cleanup.
func openRepository(ctx context.Context, config internal.Config, logger *slog.Logger) (repositories.IMessageRepository, func(), error) {
	if config.StorageBackend == internal.StorageJSON {
		repository := repositories.NewJSONFileRepository(config.MessagesPath, logger)
		return repository, func() { _ = repository.Close() }, nil
	}

	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return nil, nil, fmt.Errorf("database opening failed: %w", err)
	}
	repository, err := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		url := fmt.Sprintf("http://localhost:%d%s?prefix=msg:", config.DebugPort, endpoint)
		logger.Info("Debug Badger inspector available", "url", url)
		database.StartDebugServer(db, config.DebugPort, endpoint, MessageMapper)
	}

	return repository, func() {
		// Releasing the sequence first hands back unused ids before the lock is dropped.
		_ = repository.Close()
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}

// MessageMapper renders a stored message as a row of the badger inspector.
func MessageMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	var message repositories.DiskMessage
	if err := json.Unmarshal(val, &message); err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}

	row.Type = "TEXT"
	if message.Image != "" {
		row.Type = "IMAGE"
	}
	row.Detail = fmt.Sprintf("%s -> %s: %s%s", message.From, message.To, message.Text, message.Image)
	return row
}
