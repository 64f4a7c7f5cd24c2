package usecase

import (
	"time"

	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/policy"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// WindowStatus is the read model an API layer exposes for the dispute window.
type WindowStatus struct {
	State            domain.WindowState `json:"state"`
	IsResolved       bool               `json:"is_resolved"`
	ProposedOutcome  *domain.Outcome    `json:"proposed_outcome,omitempty"`
	ProposedAt       *time.Time         `json:"proposed_at,omitempty"`
	DisputeWindowEnd *time.Time         `json:"dispute_window_end,omitempty"`
	CanDispute       bool               `json:"can_dispute"`
	MinimumStake     int64              `json:"minimum_stake"`
	Deadlines        domain.EventDeadlines `json:"deadlines"`
}

// GetWindowStatus reports where the event sits in its dispute window and
// whether the given user may still file a dispute.
func (uc *DefaultEventUsecase) GetWindowStatus(eventID, userID string) (*WindowStatus, error) {
	event, err := uc.eventRepo.GetEventByID(eventID)
	if err != nil {
		return nil, status.Error(codes.NotFound, domain.ErrEventNotFound.Error())
	}

	now := uc.now()
	windowEnd := event.DisputeWindowEnd(uc.cfg.DisputeWindow)
	isResolved := event.Status == domain.EventResolvedDoom || event.Status == domain.EventResolvedLife

	ws := &WindowStatus{
		IsResolved:       isResolved,
		ProposedOutcome:  event.ProposedOutcome,
		ProposedAt:       event.ProposedAt,
		DisputeWindowEnd: windowEnd,
		MinimumStake:     policy.MinimumDisputeStake(event.TotalPool()),
		Deadlines:        event.Deadlines(uc.cfg.DisputeWindow),
	}

	ws.State, err = uc.windowState(event)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	if event.Status == domain.EventActive && windowEnd != nil && now.Before(*windowEnd) {
		// A live window; the user may dispute unless they already have one open.
		ws.CanDispute = true
		if userID != "" {
			if _, err := uc.disputeRepo.GetOpenDisputeByEventUser(eventID, userID); err == nil {
				ws.CanDispute = false
			}
		}
	}

	return ws, nil
}

// windowState derives PROPOSED/DISPUTED/ESCALATED from the proposal fields
// and dispute records; the persisted status stays four-valued.
func (uc *DefaultEventUsecase) windowState(event *domain.Event) (domain.WindowState, error) {
	switch event.Status {
	case domain.EventResolvedDoom, domain.EventResolvedLife:
		return domain.WindowResolved, nil
	case domain.EventCancelled:
		return domain.WindowCancelled, nil
	}

	if event.ProposedOutcome == nil {
		return domain.WindowActive, nil
	}

	escalated, err := uc.disputeRepo.CountEscalatedDisputes(event.ID)
	if err != nil {
		return "", err
	}
	if escalated > 0 {
		return domain.WindowEscalated, nil
	}

	open, err := uc.disputeRepo.CountOpenDisputes(event.ID)
	if err != nil {
		return "", err
	}
	if open > 0 {
		return domain.WindowDisputed, nil
	}
	return domain.WindowProposed, nil
}
