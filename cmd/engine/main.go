package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"watchtower/internal/alert"
	"watchtower/internal/config"
	"watchtower/internal/consumer"
	"watchtower/internal/corpus"
	"watchtower/internal/database"
	"watchtower/internal/debounce"
	"watchtower/internal/handlers"
	"watchtower/internal/metrics"
	"watchtower/internal/producer"
	"watchtower/internal/registry"
	"watchtower/internal/router"
	"watchtower/internal/scheduler"
	"watchtower/internal/scope"
)

func main() {
	// Set up structured logging
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting monitor engine",
		"http_port", cfg.HTTPPort,
		"postgres_dsn", maskDSN(cfg.PostgresDSN),
		"redis_addr", cfg.RedisAddr,
		"kafka_brokers", cfg.KafkaBrokers,
		"mutations_topic", cfg.MutationsTopic,
		"alerts_topic", cfg.AlertsTopic,
		"tick_interval", cfg.TickInterval,
		"workers", cfg.Workers,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Initialize database connection
	slog.Info("Connecting to database")
	db, err := database.NewDB(cfg.PostgresDSN)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		slog.Info("Tip: Start PostgreSQL with 'docker compose up -d postgres' and run migrations")
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Successfully connected to database")

	// Initialize Redis client
	slog.Info("Connecting to Redis", "addr", cfg.RedisAddr)
	redisClient, err := connectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		slog.Info("Tip: Start Redis with 'docker compose up -d redis' or ensure Redis is running")
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.Info("Successfully connected to Redis")

	// Initialize monitor registry with version polling
	reg := registry.NewRegistry(db, cfg.RegistryPollInterval)
	if err := reg.Start(ctx); err != nil {
		slog.Error("Failed to load monitor registry", "error", err)
		os.Exit(1)
	}
	slog.Info("Monitor registry loaded", "monitors", reg.Count())

	// Initialize Kafka consumer for corpus mutations
	slog.Info("Connecting to Kafka consumer", "topic", cfg.MutationsTopic)
	mutationConsumer, err := consumer.NewConsumer(cfg.KafkaBrokers, cfg.MutationsTopic, cfg.MutationsGroupID)
	if err != nil {
		slog.Error("Failed to create Kafka consumer", "error", err)
		slog.Info("Tip: Start Kafka with 'docker compose up -d kafka'")
		os.Exit(1)
	}
	defer mutationConsumer.Close()
	slog.Info("Successfully connected to Kafka consumer")

	// Initialize Kafka producer for the alert notification hook
	slog.Info("Connecting to Kafka producer", "topic", cfg.AlertsTopic)
	alertProducer, err := producer.NewProducer(cfg.KafkaBrokers, cfg.AlertsTopic)
	if err != nil {
		slog.Error("Failed to create Kafka producer", "error", err)
		os.Exit(1)
	}
	defer alertProducer.Close()
	slog.Info("Successfully connected to Kafka producer")

	// Initialize metrics collector
	collector := metrics.NewCollector(redisClient)
	collector.SetReportInterval(cfg.MetricsReportInterval)
	collector.Start(ctx)
	defer collector.Stop()

	// Initialize the evaluation pipeline
	provider := corpus.NewRedisProvider(redisClient)
	matcher := scope.NewMatcher(provider)
	ledger := debounce.NewRedisStore(redisClient)
	factory := alert.NewFactory(alert.DefaultSeverityPolicy)

	sched := scheduler.NewScheduler(cfg.SchedulerConfig(), reg, provider, matcher,
		ledger, factory, db, alertProducer, collector)
	sched.Start(ctx)

	go sched.ConsumeLoop(ctx, mutationConsumer)

	// Initialize HTTP API
	h := handlers.NewHandlers(db, reg, ledger)
	server := router.NewServer(cfg.HTTPPort, h)

	go func() {
		slog.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	// Drain: stop accepting HTTP traffic, then wait for in-flight evaluations.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}

	sched.Wait()
	slog.Info("Monitor engine stopped")
}

// maskDSN strips credentials from a connection string before it is logged.
// Anything that does not parse as a URL is masked entirely.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "***"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.String()
}

// connectRedis creates a Redis client and verifies the connection with a ping.
func connectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", addr, err)
	}
	return client, nil
}
