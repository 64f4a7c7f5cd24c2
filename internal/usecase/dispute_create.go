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

// CreateDispute files a stake-backed challenge while the dispute window is
// open. The stake is debited immediately (escrow semantics): refunded if the
// dispute is upheld, forfeited if it is rejected.
func (uc *DefaultDisputeUsecase) CreateDispute(input *CreateDisputeInput) (*domain.Dispute, error) {
	event, err := uc.eventRepo.GetEventByID(input.EventID)
	if err != nil {
		return nil, status.Error(codes.NotFound, domain.ErrEventNotFound.Error())
	}
	if event.IsTerminal() {
		return nil, status.Error(codes.FailedPrecondition, domain.ErrEventNotActive.Error())
	}
	if event.ProposedOutcome == nil {
		return nil, status.Error(codes.FailedPrecondition, domain.ErrNoProposal.Error())
	}

	now := uc.now()
	windowEnd := event.ProposedAt.Add(uc.cfg.DisputeWindow)
	if !now.Before(windowEnd) {
		return nil, status.Error(codes.PermissionDenied, domain.ErrDisputeWindowClosed.Error())
	}

	minimumStake := policy.MinimumDisputeStake(event.TotalPool())
	if input.StakeAmount < minimumStake {
		return nil, status.Error(codes.InvalidArgument, domain.ErrInsufficientStake.Error())
	}

	if _, err := uc.disputeRepo.GetOpenDisputeByEventUser(input.EventID, input.DisputerID); err == nil {
		return nil, status.Error(codes.AlreadyExists, domain.ErrOpenDisputeExists.Error())
	} else if !errors.Is(err, domain.ErrDisputeNotFound) {
		return nil, status.Error(codes.Internal, err.Error())
	}

	// The disputer effectively backs the other side; escrow comes out of
	// that token.
	stakeToken := domain.Opposite(*event.ProposedOutcome)
	if err := uc.ledger.Debit(input.DisputerID, stakeToken, input.StakeAmount); err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return nil, status.Error(codes.FailedPrecondition, domain.ErrInsufficientBalance.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	dispute := &domain.Dispute{
		ID:          uc.idGen(),
		EventID:     input.EventID,
		DisputerID:  input.DisputerID,
		StakeAmount: input.StakeAmount,
		StakeToken:  stakeToken,
		Reason:      input.Reason,
		Evidence:    input.Evidence,
		Status:      domain.DisputeOpen,
		CreatedAt:   now,
	}
	if err := uc.disputeRepo.CreateDispute(dispute); err != nil {
		// Escrow already left the wallet; give it back before failing.
		if creditErr := uc.ledger.Credit(input.DisputerID, stakeToken, input.StakeAmount); creditErr != nil {
			slog.Error("failed to return escrow after dispute write failure",
				"event_id", input.EventID, "disputer_id", input.DisputerID, "error", creditErr.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	uc.metrics.DisputesOpenedTotal.Inc()
	uc.auditSink.Record("dispute.opened", map[string]any{
		"dispute_id":   dispute.ID,
		"event_id":     dispute.EventID,
		"disputer_id":  dispute.DisputerID,
		"stake_amount": dispute.StakeAmount,
	})

	go func() {
		if err := uc.publisher.PublishDispute(publisher.DisputeEvent{
			DisputeID:   dispute.ID,
			EventID:     dispute.EventID,
			DisputerID:  dispute.DisputerID,
			StakeAmount: dispute.StakeAmount,
			Reason:      dispute.Reason,
			Status:      string(dispute.Status),
		}); err != nil {
			slog.Error("failed to publish dispute event", "dispute_id", dispute.ID, "error", err.Error())
		}
	}()

	return dispute, nil
}
