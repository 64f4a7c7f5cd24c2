package usecase

import (
	"log/slog"

	"github.com/doomlife/settlement-service/internal/domain"
	publisher "github.com/doomlife/settlement-service/internal/infrastructure/kafka"
	"github.com/doomlife/settlement-service/internal/policy"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ProposeOutcome validates and records an outcome proposal, opening the
// dispute window. Guard violations are rejected preconditions, never retried;
// the write itself is a single conditional update so a racing proposer loses
// cleanly.
func (uc *DefaultEventUsecase) ProposeOutcome(eventID, proposerID string, outcome domain.Outcome) error {
	event, err := uc.eventRepo.GetEventByID(eventID)
	if err != nil {
		return status.Error(codes.NotFound, domain.ErrEventNotFound.Error())
	}

	now := uc.now()
	if event.IsTerminal() {
		return status.Error(codes.FailedPrecondition, domain.ErrEventNotActive.Error())
	}
	if now.Before(event.EventDeadline) {
		return status.Error(codes.FailedPrecondition, domain.ErrEventNotEnded.Error())
	}
	if now.After(event.ResolutionDeadline) {
		return status.Error(codes.FailedPrecondition, domain.ErrResolutionExpired.Error())
	}
	if event.ProposedOutcome != nil {
		return status.Error(codes.FailedPrecondition, domain.ErrProposalExists.Error())
	}

	evidenceCount, err := uc.evidenceRepo.CountEvidence(eventID)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if evidenceCount < int64(policy.EvidenceRequirement(event.TotalPool())) {
		return status.Error(codes.FailedPrecondition, domain.ErrInsufficientEvidence.Error())
	}

	sources, err := uc.evidenceRepo.ListSources(eventID)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if policy.DetermineResolutionType(event, sources) == domain.ResolutionMultiSig {
		approvals, err := uc.evidenceRepo.CountApprovals(eventID)
		if err != nil {
			return status.Error(codes.Internal, err.Error())
		}
		if approvals < int64(uc.cfg.MultiSigApprovals) {
			return status.Error(codes.FailedPrecondition, domain.ErrInsufficientApprovals.Error())
		}
	}

	set, err := uc.eventRepo.SetProposedOutcome(eventID, outcome, now)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if !set {
		return status.Error(codes.FailedPrecondition, domain.ErrProposalExists.Error())
	}

	windowEnd := now.Add(uc.cfg.DisputeWindow)
	slog.Info("outcome proposed, dispute window open",
		"event_id", eventID,
		"proposer_id", proposerID,
		"outcome", string(outcome),
		"dispute_window_end", windowEnd)

	uc.metrics.ProposalsTotal.WithLabelValues(string(outcome)).Inc()
	uc.auditSink.Record("event.outcome_proposed", map[string]any{
		"event_id":           eventID,
		"proposer_id":        proposerID,
		"outcome":            string(outcome),
		"dispute_window_end": windowEnd,
	})

	go func() {
		if err := uc.publisher.PublishSettlement(publisher.SettlementEvent{
			EventID:     eventID,
			Status:      "OUTCOME_PROPOSED",
			Outcome:     string(outcome),
			TotalPool:   event.TotalPool(),
			WinningPool: event.WinningPool(outcome),
		}); err != nil {
			slog.Error("failed to publish proposal event", "event_id", eventID, "error", err.Error())
		}
	}()

	return nil
}
