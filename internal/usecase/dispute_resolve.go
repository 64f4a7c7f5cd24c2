package usecase

import (
	"log/slog"

	"github.com/doomlife/settlement-service/internal/domain"
	publisher "github.com/doomlife/settlement-service/internal/infrastructure/kafka"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ResolveDispute closes a dispute after review. An upheld dispute voids the
// live proposal and returns the escrow; a rejected dispute forfeits the
// escrow to the platform account and leaves the proposal standing.
func (uc *DefaultDisputeUsecase) ResolveDispute(input *ResolveDisputeInput) error {
	dispute, err := uc.disputeRepo.GetDisputeByID(input.DisputeID)
	if err != nil {
		return status.Error(codes.NotFound, domain.ErrDisputeNotFound.Error())
	}
	if !dispute.IsOpen() {
		return status.Error(codes.FailedPrecondition, domain.ErrDisputeNotOpen.Error())
	}

	now := uc.now()
	finalStatus := domain.DisputeRejected
	if input.Upheld {
		finalStatus = domain.DisputeUpheld
	}

	updated, err := uc.disputeRepo.ResolveDispute(dispute.ID, finalStatus, input.Outcome, now)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if !updated {
		// Lost the race with a concurrent review.
		return status.Error(codes.FailedPrecondition, domain.ErrDisputeNotOpen.Error())
	}

	if input.Upheld {
		// The proposal was wrong: void it so a corrected one can be filed,
		// and return the escrow to the disputer.
		if _, err := uc.eventRepo.ClearProposedOutcome(dispute.EventID); err != nil {
			slog.Error("failed to void proposal for upheld dispute",
				"dispute_id", dispute.ID, "event_id", dispute.EventID, "error", err.Error())
		}
		if err := uc.ledger.Credit(dispute.DisputerID, dispute.StakeToken, dispute.StakeAmount); err != nil {
			slog.Error("failed to return escrow for upheld dispute",
				"dispute_id", dispute.ID, "disputer_id", dispute.DisputerID, "error", err.Error())
		}
		uc.metrics.RecordDisputeResolved("upheld")
	} else {
		if err := uc.ledger.Credit(domain.PlatformAccountID, dispute.StakeToken, dispute.StakeAmount); err != nil {
			slog.Error("failed to forfeit escrow for rejected dispute",
				"dispute_id", dispute.ID, "error", err.Error())
		}
		uc.metrics.RecordDisputeResolved("rejected")
		uc.metrics.RecordFeeRetained(dispute.StakeAmount)
	}

	uc.auditSink.Record("dispute.resolved", map[string]any{
		"dispute_id":  dispute.ID,
		"event_id":    dispute.EventID,
		"reviewer_id": input.ReviewerID,
		"status":      string(finalStatus),
	})

	go func() {
		if err := uc.publisher.PublishDispute(publisher.DisputeEvent{
			DisputeID:   dispute.ID,
			EventID:     dispute.EventID,
			DisputerID:  dispute.DisputerID,
			StakeAmount: dispute.StakeAmount,
			Status:      string(finalStatus),
			Escalated:   dispute.Escalated,
		}); err != nil {
			slog.Error("failed to publish dispute event", "dispute_id", dispute.ID, "error", err.Error())
		}
	}()

	return nil
}
