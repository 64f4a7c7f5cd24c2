package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/queue"
)

// HandlePayoutBatch credits one slice of winning bets. CreditPayout is
// guarded on the claimed flag, so a retried or duplicated batch re-credits
// nothing; bets that failed transiently are picked up by the retry because
// the already-claimed ones fall through as no-ops.
func (s *Settler) HandlePayoutBatch(ctx context.Context, env *domain.JobEnvelope) error {
	var job domain.BatchPayoutJob
	if err := json.Unmarshal(env.Payload, &job); err != nil {
		return queue.Fatal(fmt.Errorf("decode payout batch: %w", err))
	}

	var credited int
	var failed int
	for _, betID := range job.BetIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		ok, bet, err := s.betRepo.CreditPayout(betID)
		if err != nil {
			if errors.Is(err, domain.ErrBetNotFound) {
				s.logger.Error("payout batch references missing bet",
					"event_id", job.EventID, "bet_id", betID)
				continue
			}
			failed++
			s.logger.Error("failed to credit payout",
				"event_id", job.EventID, "bet_id", betID, "error", err.Error())
			continue
		}
		if !ok {
			// Already claimed by an earlier delivery.
			continue
		}

		credited++
		s.metrics.RecordPayout(*bet.Payout)
		if err := s.statsRepo.RecordWin(bet.UserID, bet.Amount, *bet.Payout); err != nil {
			s.logger.Error("failed to record win stats",
				"event_id", job.EventID, "bet_id", betID, "error", err.Error())
		}
		s.notifier.NotifyPayout(bet.UserID, bet.EventID, bet.Outcome, *bet.Payout)
	}

	if failed > 0 {
		return fmt.Errorf("payout batch %d for event %s: %d of %d credits failed",
			job.Batch, job.EventID, failed, len(job.BetIDs))
	}

	if credited > 0 {
		s.auditSink.Record("payout.batch_completed", map[string]any{
			"event_id": job.EventID,
			"batch":    job.Batch,
			"credited": credited,
		})
	}
	s.logger.Info("payout batch processed",
		"event_id", job.EventID, "batch", job.Batch,
		"credited", credited, "total", len(job.BetIDs))
	return nil
}

// HandleRefundBatch returns original stakes for one slice of bets on a
// cancelled event, guarded by the refunded flag.
func (s *Settler) HandleRefundBatch(ctx context.Context, env *domain.JobEnvelope) error {
	var job domain.RefundBatchJob
	if err := json.Unmarshal(env.Payload, &job); err != nil {
		return queue.Fatal(fmt.Errorf("decode refund batch: %w", err))
	}

	var refunded int
	var failed int
	for _, betID := range job.BetIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		ok, bet, err := s.betRepo.RefundBet(betID)
		if err != nil {
			if errors.Is(err, domain.ErrBetNotFound) {
				s.logger.Error("refund batch references missing bet",
					"event_id", job.EventID, "bet_id", betID)
				continue
			}
			failed++
			s.logger.Error("failed to refund bet",
				"event_id", job.EventID, "bet_id", betID, "error", err.Error())
			continue
		}
		if !ok {
			continue
		}

		refunded++
		s.metrics.RecordRefund(bet.Amount)
		s.notifier.NotifyRefund(bet.UserID, bet.EventID, bet.Outcome, bet.Amount)
	}

	if failed > 0 {
		return fmt.Errorf("refund batch %d for event %s: %d of %d refunds failed",
			job.Batch, job.EventID, failed, len(job.BetIDs))
	}

	if refunded > 0 {
		s.auditSink.Record("refund.batch_completed", map[string]any{
			"event_id": job.EventID,
			"batch":    job.Batch,
			"refunded": refunded,
		})
	}
	s.logger.Info("refund batch processed",
		"event_id", job.EventID, "batch", job.Batch,
		"refunded", refunded, "total", len(job.BetIDs))
	return nil
}
