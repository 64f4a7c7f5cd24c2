package mappers

import (
	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/models"
)

func ToDomainEvent(model *models.EventModel) *domain.Event {
	var proposedOutcome *domain.Outcome
	if model.ProposedOutcome != nil {
		outcome := domain.Outcome(*model.ProposedOutcome)
		proposedOutcome = &outcome
	}
	return &domain.Event{
		ID:                 model.ID,
		CreatorID:          model.CreatorID,
		Title:              model.Title,
		Description:        model.Description,
		Status:             domain.EventStatus(model.Status),
		TotalDoomStake:     model.TotalDoomStake,
		TotalLifeStake:     model.TotalLifeStake,
		ProposedOutcome:    proposedOutcome,
		ProposedAt:         model.ProposedAt,
		ResolvedAt:         model.ResolvedAt,
		BettingDeadline:    model.BettingDeadline,
		EventDeadline:      model.EventDeadline,
		ResolutionDeadline: model.ResolutionDeadline,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

func ToGORMEvent(event *domain.Event) *models.EventModel {
	var proposedOutcome *string
	if event.ProposedOutcome != nil {
		outcome := string(*event.ProposedOutcome)
		proposedOutcome = &outcome
	}
	return &models.EventModel{
		ID:                 event.ID,
		CreatorID:          event.CreatorID,
		Title:              event.Title,
		Description:        event.Description,
		Status:             string(event.Status),
		TotalDoomStake:     event.TotalDoomStake,
		TotalLifeStake:     event.TotalLifeStake,
		ProposedOutcome:    proposedOutcome,
		ProposedAt:         event.ProposedAt,
		ResolvedAt:         event.ResolvedAt,
		BettingDeadline:    event.BettingDeadline,
		EventDeadline:      event.EventDeadline,
		ResolutionDeadline: event.ResolutionDeadline,
		CreatedAt:          event.CreatedAt,
		UpdatedAt:          event.UpdatedAt,
	}
}
