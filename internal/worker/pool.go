package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/doomlife/settlement-service/internal/config"
	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/queue"
	"golang.org/x/sync/errgroup"
)

// RunPool starts the consumer fleet: a small number of resolution workers, a
// wider set of payout workers and the refund workers, all in one errgroup so
// a hard failure in any consumer tears the pool down together.
func RunPool(ctx context.Context, kafkaQueue *queue.KafkaQueue, settler *Settler, cfg config.Settlement, consumerGroup string, logger *slog.Logger) error {
	consumerCfg := queue.ConsumerConfig{
		GroupID:     consumerGroup,
		MaxAttempts: cfg.MaxJobAttempts,
		BaseBackoff: cfg.RetryBackoff,
		JobTimeout:  cfg.JobTimeout,
	}

	group, ctx := errgroup.WithContext(ctx)

	spawn := func(kind domain.JobKind, count int, handler queue.Handler) {
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			consumer := queue.NewConsumer(kafkaQueue, kind, consumerCfg, handler, settler.metrics, logger)
			group.Go(func() error {
				if err := consumer.Run(ctx); err != nil {
					return fmt.Errorf("%s consumer: %w", kind, err)
				}
				return nil
			})
		}
	}

	spawn(domain.JobResolution, cfg.ResolutionWorkers, settler.HandleResolution)
	spawn(domain.JobPayoutBatch, cfg.PayoutWorkers, settler.HandlePayoutBatch)
	spawn(domain.JobRefundBatch, cfg.RefundWorkers, settler.HandleRefundBatch)

	logger.Info("settlement worker pool started",
		"resolution_workers", cfg.ResolutionWorkers,
		"payout_workers", cfg.PayoutWorkers,
		"refund_workers", cfg.RefundWorkers)

	return group.Wait()
}
