package usecase

import (
	"errors"
	"log/slog"

	"github.com/doomlife/settlement-service/internal/domain"
	publisher "github.com/doomlife/settlement-service/internal/infrastructure/kafka"
	"github.com/doomlife/settlement-service/internal/policy"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// EscalateDispute sends a rejected dispute to community review. The
// escalation fee is charged up front and retained by the platform
// regardless of the eventual verdict.
func (uc *DefaultDisputeUsecase) EscalateDispute(disputeID, disputerID string) error {
	dispute, err := uc.disputeRepo.GetDisputeByID(disputeID)
	if err != nil {
		return status.Error(codes.NotFound, domain.ErrDisputeNotFound.Error())
	}
	if dispute.DisputerID != disputerID {
		return status.Error(codes.PermissionDenied, "dispute belongs to another user")
	}
	if dispute.Status != domain.DisputeRejected || dispute.Escalated {
		return status.Error(codes.FailedPrecondition, domain.ErrNotEscalatable.Error())
	}

	event, err := uc.eventRepo.GetEventByID(dispute.EventID)
	if err != nil {
		return status.Error(codes.NotFound, domain.ErrEventNotFound.Error())
	}

	cost := policy.EscalationCost(event.TotalPool())
	if err := uc.ledger.Debit(disputerID, dispute.StakeToken, cost); err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return status.Error(codes.FailedPrecondition, domain.ErrInsufficientBalance.Error())
		}
		return status.Error(codes.Internal, err.Error())
	}
	if err := uc.ledger.Credit(domain.PlatformAccountID, dispute.StakeToken, cost); err != nil {
		slog.Error("failed to credit escalation fee", "dispute_id", disputeID, "error", err.Error())
	}

	updated, err := uc.disputeRepo.MarkEscalated(disputeID)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if !updated {
		// Lost the race with a concurrent escalation; reverse the charge.
		if creditErr := uc.ledger.Credit(disputerID, dispute.StakeToken, cost); creditErr != nil {
			slog.Error("failed to return escalation fee", "dispute_id", disputeID, "error", creditErr.Error())
		}
		if debitErr := uc.ledger.Debit(domain.PlatformAccountID, dispute.StakeToken, cost); debitErr != nil {
			slog.Error("failed to reverse platform escalation credit", "dispute_id", disputeID, "error", debitErr.Error())
		}
		return status.Error(codes.FailedPrecondition, domain.ErrNotEscalatable.Error())
	}

	uc.metrics.DisputesEscalatedTotal.Inc()
	uc.metrics.RecordFeeRetained(cost)
	uc.auditSink.Record("dispute.escalated", map[string]any{
		"dispute_id":  disputeID,
		"event_id":    dispute.EventID,
		"disputer_id": disputerID,
		"cost":        cost,
	})

	go func() {
		if err := uc.publisher.PublishDispute(publisher.DisputeEvent{
			DisputeID:   dispute.ID,
			EventID:     dispute.EventID,
			DisputerID:  dispute.DisputerID,
			StakeAmount: dispute.StakeAmount,
			Status:      string(domain.DisputeUnderReview),
			Escalated:   true,
		}); err != nil {
			slog.Error("failed to publish dispute event", "dispute_id", dispute.ID, "error", err.Error())
		}
	}()

	return nil
}
