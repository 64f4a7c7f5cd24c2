// Package worker holds the consumers of the settlement job topics: the
// resolution handler that finalizes events and fans out batches, the batch
// handlers that credit payouts and refunds, and the sweep monitor that feeds
// the resolution topic.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/doomlife/settlement-service/internal/config"
	"github.com/doomlife/settlement-service/internal/domain"
	publisher "github.com/doomlife/settlement-service/internal/infrastructure/kafka"
	"github.com/doomlife/settlement-service/internal/infrastructure/metrics"
	"github.com/doomlife/settlement-service/internal/infrastructure/queue"
	"github.com/doomlife/settlement-service/internal/payout"
)

// Settler runs the settlement job handlers. Every mutating step is guarded in
// the store, so a handler can be re-entered from the top after any crash and
// converge on the same final state.
type Settler struct {
	eventRepo   domain.EventRepository
	betRepo     domain.BetRepository
	disputeRepo domain.DisputeRepository
	ledger      domain.LedgerRepository
	statsRepo   domain.StatsRepository
	queue       domain.JobQueue
	publisher   *publisher.KafkaPublisher
	auditSink   domain.AuditSink
	notifier    domain.NotificationDispatcher
	metrics     *metrics.SettlementMetrics
	cfg         config.Settlement
	logger      *slog.Logger

	now func() time.Time
}

func NewSettler(
	eventRepo domain.EventRepository,
	betRepo domain.BetRepository,
	disputeRepo domain.DisputeRepository,
	ledger domain.LedgerRepository,
	statsRepo domain.StatsRepository,
	jobQueue domain.JobQueue,
	kafkaPublisher *publisher.KafkaPublisher,
	auditSink domain.AuditSink,
	notifier domain.NotificationDispatcher,
	settlementMetrics *metrics.SettlementMetrics,
	cfg config.Settlement,
	logger *slog.Logger) *Settler {

	return &Settler{
		eventRepo:   eventRepo,
		betRepo:     betRepo,
		disputeRepo: disputeRepo,
		ledger:      ledger,
		statsRepo:   statsRepo,
		queue:       jobQueue,
		publisher:   kafkaPublisher,
		auditSink:   auditSink,
		notifier:    notifier,
		metrics:     settlementMetrics,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// HandleResolution finalizes one event. The ACTIVE to RESOLVED_* transition
// is claimed with a single conditional update; losing that race means another
// delivery already finalized, and this run degrades to re-driving the fan-out
// with the same deterministic batch ids.
func (s *Settler) HandleResolution(ctx context.Context, env *domain.JobEnvelope) error {
	var job domain.ResolutionJob
	if err := json.Unmarshal(env.Payload, &job); err != nil {
		return queue.Fatal(fmt.Errorf("decode resolution job: %w", err))
	}

	started := s.now()

	event, err := s.eventRepo.GetEventByID(job.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return queue.Fatal(err)
		}
		return err
	}

	outcome, claimedNow, err := s.claimResolution(event)
	if err != nil {
		return err
	}
	if outcome == nil {
		// Cancelled while queued; refund jobs own this event now.
		return nil
	}

	bets, err := s.betRepo.GetBetsByEventID(job.EventID)
	if err != nil {
		return err
	}

	payouts := payout.ComputePayouts(bets, *outcome,
		event.TotalDoomStake, event.TotalLifeStake, s.cfg.FeeBasisPoints)

	// Every bet gets its payout written: the winner amount for the winning
	// side, zero for the losing side. Losses are booked against user stats
	// only on the write that flipped payout from null, so a re-delivered job
	// cannot double-count.
	winnerIDs := make([]string, 0, len(bets))
	var totalWinnings int64
	for _, bet := range bets {
		amount := payouts[bet.ID]
		wrote, err := s.betRepo.SetPayout(bet.ID, amount)
		if err != nil {
			return fmt.Errorf("set payout for bet %s: %w", bet.ID, err)
		}
		if amount > 0 {
			winnerIDs = append(winnerIDs, bet.ID)
			totalWinnings += amount - bet.Amount
			continue
		}
		if wrote {
			if err := s.statsRepo.RecordLoss(bet.UserID, bet.Amount); err != nil {
				s.logger.Error("failed to record loss stats",
					"event_id", event.ID, "bet_id", bet.ID, "error", err.Error())
			}
		}
	}

	if claimedNow {
		// Whatever the winners do not take out of the losing pool stays with
		// the platform: the fee plus truncation remainders, or the whole pool
		// when nobody backed the winning side. It was escrowed in the losing
		// token, so it is retained in the losing token. Credited only by the
		// run that won the status claim so a re-delivered job cannot
		// double-credit.
		losingToken := domain.Opposite(*outcome)
		retained := event.WinningPool(losingToken) - totalWinnings
		if len(winnerIDs) == 0 && event.TotalPool() > 0 {
			s.logger.Warn("event resolved with empty winning pool, full pool retained",
				"event_id", event.ID, "outcome", string(*outcome), "total_pool", event.TotalPool())
		}
		if retained > 0 {
			if err := s.ledger.Credit(domain.PlatformAccountID, losingToken, retained); err != nil {
				s.logger.Error("failed to retain platform share", "event_id", event.ID, "error", err.Error())
			}
			s.metrics.RecordFeeRetained(retained)
		}
	}

	batches, err := s.enqueuePayoutBatches(event.ID, winnerIDs)
	if err != nil {
		return err
	}

	s.metrics.RecordEventResolved(string(*outcome))
	s.metrics.SettlementDuration.Observe(s.now().Sub(started).Seconds())
	s.auditSink.Record("event.resolved", map[string]any{
		"event_id":       event.ID,
		"outcome":        string(*outcome),
		"total_pool":     event.TotalPool(),
		"winners":        len(winnerIDs),
		"batches_queued": batches,
	})

	if err := s.publisher.PublishSettlement(publisher.SettlementEvent{
		EventID:       event.ID,
		Status:        string(domain.ResolvedStatus(*outcome)),
		Outcome:       string(*outcome),
		TotalPool:     event.TotalPool(),
		WinningPool:   event.WinningPool(*outcome),
		WinnersCount:  len(winnerIDs),
		BatchesQueued: batches,
	}); err != nil {
		s.logger.Error("failed to publish settlement event", "event_id", event.ID, "error", err.Error())
	}

	s.logger.Info("event finalized",
		"event_id", event.ID, "outcome", string(*outcome),
		"winners", len(winnerIDs), "batches", batches)
	return nil
}

// claimResolution either wins the ACTIVE to terminal transition or recovers
// the outcome of a finalization that already happened. A nil outcome with a
// nil error means the event was cancelled and there is nothing to settle.
// The bool reports whether this run performed the transition.
func (s *Settler) claimResolution(event *domain.Event) (*domain.Outcome, bool, error) {
	if event.Status == domain.EventCancelled {
		return nil, false, nil
	}

	if event.IsTerminal() {
		outcome := outcomeOf(event.Status)
		if outcome == nil {
			return nil, false, queue.Fatal(fmt.Errorf("event %s in unexpected terminal status %s", event.ID, event.Status))
		}
		return outcome, false, nil
	}

	if event.ProposedOutcome == nil {
		// The sweep only enqueues events with a live proposal; seeing none
		// here means the proposal was voided after enqueue. Not an error,
		// the sweep will pick the event up again once a new one lands.
		return nil, false, nil
	}

	windowEnd := event.ProposedAt.Add(s.cfg.DisputeWindow)
	if s.now().Before(windowEnd) {
		return nil, false, fmt.Errorf("dispute window for event %s still open until %s", event.ID, windowEnd)
	}

	openDisputes, err := s.disputeRepo.CountOpenDisputes(event.ID)
	if err != nil {
		return nil, false, err
	}
	if openDisputes > 0 {
		return nil, false, fmt.Errorf("event %s has %d open disputes", event.ID, openDisputes)
	}

	outcome := *event.ProposedOutcome
	claimed, err := s.eventRepo.MarkResolved(event.ID, domain.ResolvedStatus(outcome), s.now())
	if err != nil {
		return nil, false, err
	}
	if claimed {
		return &outcome, true, nil
	}

	// Lost the race; re-read to learn what actually happened.
	fresh, err := s.eventRepo.GetEventByID(event.ID)
	if err != nil {
		return nil, false, err
	}
	if fresh.Status == domain.EventCancelled {
		return nil, false, nil
	}
	resolved := outcomeOf(fresh.Status)
	if resolved == nil {
		return nil, false, fmt.Errorf("event %s still active after failed resolution claim", event.ID)
	}
	return resolved, false, nil
}

func (s *Settler) enqueuePayoutBatches(eventID string, winnerIDs []string) (int, error) {
	batchSize := s.cfg.PayoutBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	var batch int
	for start := 0; start < len(winnerIDs); start += batchSize {
		end := start + batchSize
		if end > len(winnerIDs) {
			end = len(winnerIDs)
		}
		job := domain.BatchPayoutJob{EventID: eventID, Batch: batch, BetIDs: winnerIDs[start:end]}
		err := s.queue.Enqueue(domain.JobPayoutBatch, job, &domain.EnqueueOptions{
			JobID: fmt.Sprintf("%s-payout-%d", eventID, batch),
		})
		if err != nil {
			return batch, fmt.Errorf("enqueue payout batch %d: %w", batch, err)
		}
		batch++
	}

	s.metrics.RecordBatchJobsQueued(string(domain.JobPayoutBatch), batch)
	return batch, nil
}

func outcomeOf(status domain.EventStatus) *domain.Outcome {
	switch status {
	case domain.EventResolvedDoom:
		outcome := domain.OutcomeDoom
		return &outcome
	case domain.EventResolvedLife:
		outcome := domain.OutcomeLife
		return &outcome
	default:
		return nil
	}
}
