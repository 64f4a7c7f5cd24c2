package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/mappers"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultEventRepository struct {
	db *gorm.DB
}

func NewDefaultEventRepository(db *gorm.DB) *DefaultEventRepository {
	return &DefaultEventRepository{db: db}
}

func (r *DefaultEventRepository) CreateEvent(event *domain.Event) error {
	eventModel := mappers.ToGORMEvent(event)
	if err := r.db.Create(eventModel).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *DefaultEventRepository) GetEventByID(eventID string) (*domain.Event, error) {
	var eventModel models.EventModel
	if err := r.db.First(&eventModel, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return mappers.ToDomainEvent(&eventModel), nil
}

// AddStake bumps the pool total for one side. Stake totals only ever grow
// while the event is active; settlement never rewrites them.
func (r *DefaultEventRepository) AddStake(eventID string, outcome domain.Outcome, amount int64) error {
	column := "total_doom_stake"
	if outcome == domain.OutcomeLife {
		column = "total_life_stake"
	}
	result := r.db.Model(&models.EventModel{}).
		Where("id = ? AND status = ?", eventID, string(domain.EventActive)).
		Update(column, gorm.Expr(column+" + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrEventNotActive
	}
	return nil
}

func (r *DefaultEventRepository) SetProposedOutcome(eventID string, outcome domain.Outcome, proposedAt time.Time) (bool, error) {
	result := r.db.Model(&models.EventModel{}).
		Where("id = ? AND status = ? AND proposed_outcome IS NULL", eventID, string(domain.EventActive)).
		Updates(map[string]any{
			"proposed_outcome": string(outcome),
			"proposed_at":      proposedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *DefaultEventRepository) ClearProposedOutcome(eventID string) (bool, error) {
	result := r.db.Model(&models.EventModel{}).
		Where("id = ? AND status = ? AND proposed_outcome IS NOT NULL", eventID, string(domain.EventActive)).
		Updates(map[string]any{
			"proposed_outcome": nil,
			"proposed_at":      nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkResolved performs the "update where status = active" transition that
// makes re-entrant resolution a no-op without a lock service.
func (r *DefaultEventRepository) MarkResolved(eventID string, status domain.EventStatus, resolvedAt time.Time) (bool, error) {
	result := r.db.Model(&models.EventModel{}).
		Where("id = ? AND status = ?", eventID, string(domain.EventActive)).
		Updates(map[string]any{
			"status":      string(status),
			"resolved_at": resolvedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *DefaultEventRepository) MarkCancelled(eventID string) (bool, error) {
	result := r.db.Model(&models.EventModel{}).
		Where("id = ? AND status = ?", eventID, string(domain.EventActive)).
		Update("status", string(domain.EventCancelled))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *DefaultEventRepository) FindFinalizable(windowCutoff time.Time) ([]*domain.Event, error) {
	var eventModels []models.EventModel
	err := r.db.Model(&models.EventModel{}).
		Where("status = ?", string(domain.EventActive)).
		Where("proposed_at IS NOT NULL AND proposed_at < ?", windowCutoff).
		Where("NOT EXISTS (SELECT 1 FROM dispute_models d WHERE d.event_id = event_models.id AND d.status IN ?)",
			[]string{string(domain.DisputeOpen), string(domain.DisputeUnderReview)}).
		Find(&eventModels).Error
	if err != nil {
		return nil, fmt.Errorf("find finalizable events: %w", err)
	}

	events := make([]*domain.Event, len(eventModels))
	for i := range eventModels {
		events[i] = mappers.ToDomainEvent(&eventModels[i])
	}
	return events, nil
}
