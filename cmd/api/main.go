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

	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/docs"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/config"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/handler"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/logger"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/metrics"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/queue/sqs"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/repository/clickhouse"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/service"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

// @title Error Monitor Dashboard API
// @version 1.0
// @description Polled views, live error stream and archived reports over an error-tracking service
// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment, "api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting dashboard API",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort),
		zap.String("tracker", cfg.Tracker.BaseURL))

	// Configure Swagger host dynamically
	docs.SwaggerInfo.Host = cfg.Service.Host

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	trackerClient, err := tracker.NewClient(cfg.Tracker, log.With(zap.String("client", "tracker")))
	if err != nil {
		log.Fatal("Failed to create tracker client", zap.Error(err))
	}

	m := metrics.New()
	deps := service.Deps{Recorder: m}

	// Stream observations are published only when a queue is configured
	if cfg.SQS.Enabled() {
		sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
		if err != nil {
			log.Fatal("Failed to create SQS client", zap.Error(err))
		}
		deps.Publisher = sqsClient
	} else {
		log.Info("SQS queue not configured, stream observations will not be archived")
	}

	// Reports read from the archive when ClickHouse is configured
	if cfg.ClickHouse.Enabled() {
		chClient, err := clickhouse.NewClient(ctx, cfg.ClickHouse, log)
		if err != nil {
			log.Fatal("Failed to create ClickHouse client", zap.Error(err))
		}
		repo := clickhouse.NewRepository(chClient, log)
		defer func() {
			if err := repo.Close(); err != nil {
				log.Error("Failed to close ClickHouse client", zap.Error(err))
			}
		}()
		deps.Reports = repo
	} else {
		log.Info("ClickHouse not configured, reports are disabled")
	}

	dashboard := service.NewDashboardService(trackerClient, service.OptionsFromConfig(cfg.Dashboard), deps, log)
	dashboard.Start(ctx)

	h := handler.NewHandler(dashboard, m, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Service.APIPort),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("API server starting", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down API gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stopping the dashboard closes websocket subscriptions first
	dashboard.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("API server shutdown failed", zap.Error(err))
	}
}
