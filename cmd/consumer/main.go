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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/config"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/consumer"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/idempotency"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/logger"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/metrics"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/queue/sqs"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/repository/clickhouse"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment, "consumer")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting archive consumer",
		zap.String("environment", cfg.Service.Environment))

	if !cfg.SQS.Enabled() || !cfg.ClickHouse.Enabled() {
		log.Fatal("Archive consumer requires SQS_QUEUE_URL and CLICKHOUSE_HOST")
	}

	ctx := context.Background()

	// Initialize ClickHouse client
	chClient, err := clickhouse.NewClient(ctx, cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}

	// Initialize repository
	repo := clickhouse.NewRepository(chClient, log)
	defer func() {
		if err := repo.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	// Initialize schema (create tables if not exist)
	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}
	log.Info("Database schema initialized")

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	m := metrics.New()
	deps := consumer.Deps{
		Queue:      sqsClient,
		Repository: repo,
		Recorder:   m,
	}

	// Initialize idempotency store
	if cfg.Valkey.IdempotencyEnabled && cfg.Valkey.Host != "" {
		valkeyClient, err := idempotency.NewClient(ctx, cfg.Valkey)
		if err != nil {
			log.Fatal("Failed to connect to Valkey", zap.Error(err))
		}
		defer func() {
			if err := valkeyClient.Close(); err != nil {
				log.Error("Failed to close Valkey client", zap.Error(err))
			}
		}()
		deps.Dedup = idempotency.NewStore(valkeyClient, cfg.Valkey, log)
		log.Info("Idempotency enabled",
			zap.Bool("fail_open", cfg.Valkey.IdempotencyFailOpen),
			zap.Int("ttl_sec", cfg.Valkey.IdempotencyTTLSec))
	} else {
		log.Info("Idempotency disabled, relying on ReplacingMergeTree deduplication")
	}

	// Initialize consumer
	c := consumer.NewConsumer(cfg.Consumer, deps, log)

	// Start health check endpoint
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Ping(r.Context()); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))

	healthServer := &http.Server{
		Addr:              ":" + cfg.Consumer.HealthCheckPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health check server starting", zap.String("address", healthServer.Addr))
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health check server error", zap.Error(err))
		}
	}()

	// Start consumer
	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info("Consumer starting")

	done := make(chan error, 1)
	go func() {
		done <- c.Start(consumerCtx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("Shutting down consumer gracefully")
		cancel()
		if err := <-done; err != nil {
			log.Error("Consumer stopped with error", zap.Error(err))
		}
	case err := <-done:
		if err != nil {
			log.Error("Consumer error", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Health server shutdown failed", zap.Error(err))
	}
	log.Info("Consumer stopped")
}
