package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doomlife/settlement-service/internal/config"
	"github.com/doomlife/settlement-service/internal/infrastructure/audit"
	publisher "github.com/doomlife/settlement-service/internal/infrastructure/kafka"
	"github.com/doomlife/settlement-service/internal/infrastructure/metrics"
	"github.com/doomlife/settlement-service/internal/infrastructure/migrate"
	"github.com/doomlife/settlement-service/internal/infrastructure/notifier"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/repository"
	"github.com/doomlife/settlement-service/internal/infrastructure/queue"
	"github.com/doomlife/settlement-service/internal/worker"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	logger := setupLogger(cfg.LogConfig)
	slog.SetDefault(logger)

	// Init database
	db := postgres.MustInitDB(cfg)
	if cfg.SettlementDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.SettlementDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}

	settlementPublisher := publisher.NewKafkaPublisher(brokers, cfg.KafkaService.SettlementTopic)
	defer settlementPublisher.Close()
	auditPublisher := publisher.NewKafkaPublisher(brokers, cfg.KafkaService.AuditTopic)
	defer auditPublisher.Close()

	jobQueue, err := queue.NewKafkaQueue(brokers, cfg.KafkaService.DeadLetterTopic)
	if err != nil {
		log.Fatalf("failed to init job queue: %v", err)
	}
	defer jobQueue.Close()

	auditSink := audit.NewKafkaAuditSink(auditPublisher, cfg.KafkaService.AuditTopic, logger)
	settlementMetrics := metrics.NewSettlementMetrics()
	payoutNotifier := notifier.NewHTTPNotifier(cfg.Notifications.DispatchURL)

	// Init repositories
	eventRepo := repository.NewDefaultEventRepository(db)
	betRepo := repository.NewDefaultBetRepository(db)
	disputeRepo := repository.NewDefaultDisputeRepository(db)
	ledgerRepo := repository.NewDefaultLedgerRepository(db)
	statsRepo := repository.NewDefaultStatsRepository(db)

	settler := worker.NewSettler(
		eventRepo,
		betRepo,
		disputeRepo,
		ledgerRepo,
		statsRepo,
		jobQueue,
		settlementPublisher,
		auditSink,
		payoutNotifier,
		settlementMetrics,
		cfg.Settlement,
		logger,
	)
	monitor := worker.NewWindowMonitor(eventRepo, jobQueue, cfg.Settlement, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return worker.RunPool(ctx, jobQueue, settler, cfg.Settlement, cfg.KafkaService.ConsumerGroup, logger)
	})
	group.Go(func() error {
		return monitor.Run(ctx)
	})

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.MetricsServer.Host, cfg.MetricsServer.Port),
		Handler: promhttp.Handler(),
	}
	group.Go(func() error {
		logger.Info("metrics server listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	logger.Info("settlement service started", "env", cfg.Env)
	if err := group.Wait(); err != nil {
		log.Fatalf("settlement service stopped: %v", err)
	}
	logger.Info("settlement service stopped")
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
