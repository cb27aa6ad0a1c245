package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/gatepass/internal/config"
	"github.com/joshua-takyi/gatepass/internal/connect"
	"github.com/joshua-takyi/gatepass/internal/container"
	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/joshua-takyi/gatepass/internal/routes"
	"github.com/spf13/pflag"
)

const version = "1.0.0"

func main() {
	envFile := pflag.String("env-file", ".env.local", "environment file to load before reading configuration")
	port := pflag.String("port", "", "listen port (overrides PORT)")
	pflag.Parse()

	// Load environment variables
	_ = godotenv.Load(*envFile)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}

	// Setup logger
	logger := setupLogger(cfg)
	logger.Info("Starting Gatepass API server", "environment", cfg.Environment, "store", cfg.StoreDriver)

	ctx := context.Background()

	shutdownTelemetry, err := connect.InitTelemetry(ctx, cfg.OTLPEndpoint, cfg.ServiceName, version)
	if err != nil {
		logger.Error("Failed to initialise telemetry", "error", err)
		os.Exit(1)
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	// Initialize dependency container
	appContainer, err := container.NewContainer(cfg, logger, store)
	if err != nil {
		logger.Error("Failed to build application", "error", err)
		os.Exit(1)
	}

	// Setup routes
	router := routes.SetupRoutes(appContainer)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	closeStore()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error("Error flushing telemetry", "error", err)
	}

	logger.Info("Server exited")
}

// openStore connects the configured backend and prepares its indexes or
// tables.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (models.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := connect.MongoDBConnect(ctx, cfg.MongoDBURI, cfg.MongoDBPassword)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to MongoDB successfully", "database", cfg.MongoDBName)

		repo := models.MongodbNewRepo(client, cfg.MongoDBName)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := connect.MongoDBDisconnect(); err != nil {
				logger.Error("Error disconnecting from MongoDB", "error", err)
			}
		}, nil

	case config.StorePostgres:
		pool, err := connect.PostgresConnect(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to Postgres successfully")

		repo := models.PostgresNewRepo(pool)
		if err := repo.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		return repo, connect.PostgresDisconnect, nil

	case config.StoreMemory:
		logger.Warn("Using in-memory store, bookings are lost on restart")
		return models.NewMemoryRepo(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.LogLevel),
		AddSource: cfg.IsDevelopment(),
	}

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
