package usecase

import (
	"fmt"
	"log/slog"

	"github.com/doomlife/settlement-service/internal/domain"
	publisher "github.com/doomlife/settlement-service/internal/infrastructure/kafka"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CancelEvent is the administrative override: any non-terminal event moves to
// CANCELLED, open dispute escrow is returned immediately and every stake is
// refunded through the batch pipeline. Cancellation after resolution is
// rejected; in-flight payout batches are never interrupted.
func (uc *DefaultEventUsecase) CancelEvent(eventID string) error {
	event, err := uc.eventRepo.GetEventByID(eventID)
	if err != nil {
		return status.Error(codes.NotFound, domain.ErrEventNotFound.Error())
	}
	if event.IsTerminal() {
		return status.Error(codes.FailedPrecondition, domain.ErrEventNotActive.Error())
	}

	cancelled, err := uc.eventRepo.MarkCancelled(eventID)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if !cancelled {
		return status.Error(codes.FailedPrecondition, domain.ErrEventNotActive.Error())
	}

	// Return escrow for disputes that never reached review.
	disputes, err := uc.disputeRepo.GetEventDisputes(eventID)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	now := uc.now()
	for _, dispute := range disputes {
		if !dispute.IsOpen() {
			continue
		}
		resolved, err := uc.disputeRepo.ResolveDispute(dispute.ID, domain.DisputeRejected, nil, now)
		if err != nil || !resolved {
			continue
		}
		if err := uc.ledger.Credit(dispute.DisputerID, dispute.StakeToken, dispute.StakeAmount); err != nil {
			slog.Error("failed to refund dispute escrow on cancellation",
				"dispute_id", dispute.ID, "error", err.Error())
		}
	}

	if err := uc.enqueueRefunds(eventID); err != nil {
		return status.Error(codes.Internal, err.Error())
	}

	uc.metrics.EventsCancelledTotal.Inc()
	uc.auditSink.Record("event.cancelled", map[string]any{
		"event_id":   eventID,
		"total_pool": event.TotalPool(),
	})

	go func() {
		if err := uc.publisher.PublishSettlement(publisher.SettlementEvent{
			EventID:   eventID,
			Status:    string(domain.EventCancelled),
			TotalPool: event.TotalPool(),
		}); err != nil {
			slog.Error("failed to publish cancellation event", "event_id", eventID, "error", err.Error())
		}
	}()

	return nil
}

func (uc *DefaultEventUsecase) enqueueRefunds(eventID string) error {
	bets, err := uc.betRepo.GetBetsByEventID(eventID)
	if err != nil {
		return err
	}

	batchSize := uc.cfg.PayoutBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	var batch int
	for start := 0; start < len(bets); start += batchSize {
		end := start + batchSize
		if end > len(bets) {
			end = len(bets)
		}
		ids := make([]string, 0, end-start)
		for _, bet := range bets[start:end] {
			ids = append(ids, bet.ID)
		}
		job := domain.RefundBatchJob{EventID: eventID, Batch: batch, BetIDs: ids}
		err := uc.queue.Enqueue(domain.JobRefundBatch, job, &domain.EnqueueOptions{
			JobID: fmt.Sprintf("%s-refund-%d", eventID, batch),
		})
		if err != nil {
			return fmt.Errorf("enqueue refund batch %d: %w", batch, err)
		}
		batch++
	}

	uc.metrics.RecordBatchJobsQueued(string(domain.JobRefundBatch), batch)
	return nil
}
