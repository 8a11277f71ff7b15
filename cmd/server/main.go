package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/snake-leaderboard/internal/config"
	"github.com/snake-leaderboard/internal/handler"
	"github.com/snake-leaderboard/internal/kafka"
	"github.com/snake-leaderboard/internal/metrics"
	"github.com/snake-leaderboard/internal/postgres"
	"github.com/snake-leaderboard/internal/redis"
	"github.com/snake-leaderboard/internal/service"
	"github.com/snake-leaderboard/internal/websocket"
	"github.com/snake-leaderboard/internal/worker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	envPath := flag.String("env", ".env", "Path to optional .env file")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		slog.Warn("failed to load .env file", "error", err)
	}

	// Load configuration
	cfg, loadErr := config.Load(*configPath)
	if loadErr != nil {
		cfg = config.DefaultConfig()
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if loadErr != nil {
		logger.Warn("failed to load config file, using defaults", "error", loadErr)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL
	logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	postgresRepo, err := postgres.NewRepository(ctx, &cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer postgresRepo.Close()

	if err := postgresRepo.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	snakeService := service.NewSnakeService(service.NewPostgresStore(postgresRepo), &cfg.Leaderboard, logger)

	if cfg.App.SeedOnStart {
		inserted, err := snakeService.SeedLevels(ctx)
		if err != nil {
			logger.Error("failed to seed levels", "error", err)
			os.Exit(1)
		}
		logger.Info("levels seeded", "inserted", inserted)
	}

	// Initialize metrics
	m := metrics.New(prometheus.NewRegistry())
	snakeService.SetRecorder(m)

	// Initialize Redis cache; the API keeps working against PostgreSQL without it
	if cfg.Redis.Enabled {
		logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
		cache, err := redis.NewLeaderboardCache(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("failed to connect to Redis, continuing without cache", "error", err)
		} else {
			defer cache.Close()
			snakeService.SetCache(cache)
		}
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	snakeService.SetHub(wsHub)

	// Initialize Kafka publisher and result consumer
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka",
			"brokers", cfg.Kafka.Brokers,
			"results_topic", cfg.Kafka.ResultsTopic,
			"events_topic", cfg.Kafka.EventsTopic,
		)

		publisher, err := kafka.NewPublisher(&cfg.Kafka, logger)
		if err != nil {
			logger.Warn("failed to create Kafka publisher, continuing without events", "error", err)
		} else {
			defer publisher.Close()
			snakeService.SetPublisher(publisher)
		}

		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, snakeService, logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else if err := kafkaConsumer.Start(ctx); err != nil {
			logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
			if err := kafkaConsumer.Stop(); err != nil {
				logger.Warn("failed to close Kafka consumer", "error", err)
			}
			kafkaConsumer = nil
		}
	}

	// Start leaderboard refresher
	refresher := worker.NewLeaderboardRefresher(snakeService, &cfg.Refresh, logger)
	if cfg.Refresh.Enabled {
		if err := refresher.Start(ctx); err != nil {
			logger.Error("failed to start leaderboard refresher", "error", err)
			os.Exit(1)
		}
	}

	httpHandler := handler.NewHandler(snakeService, wsHub, m, cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port, "version", cfg.App.Version)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	if refresher.IsRunning() {
		if err := refresher.Stop(); err != nil {
			logger.Error("failed to stop leaderboard refresher", "error", err)
		}
	}

	wsHub.Stop()

	logger.Info("server stopped")
}
