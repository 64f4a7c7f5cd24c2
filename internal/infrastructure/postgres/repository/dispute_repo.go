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

var reviewableStatuses = []string{
	string(domain.DisputeOpen),
	string(domain.DisputeUnderReview),
}

type DefaultDisputeRepository struct {
	db *gorm.DB
}

func NewDefaultDisputeRepository(db *gorm.DB) *DefaultDisputeRepository {
	return &DefaultDisputeRepository{db: db}
}

func (r *DefaultDisputeRepository) CreateDispute(dispute *domain.Dispute) error {
	disputeModel := mappers.ToGORMDispute(dispute)
	if err := r.db.Create(disputeModel).Error; err != nil {
		return fmt.Errorf("create dispute: %w", err)
	}
	dispute.ID = disputeModel.ID
	return nil
}

func (r *DefaultDisputeRepository) GetDisputeByID(disputeID string) (*domain.Dispute, error) {
	var disputeModel models.DisputeModel
	if err := r.db.First(&disputeModel, "id = ?", disputeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDisputeNotFound
		}
		return nil, err
	}
	return mappers.ToDomainDispute(&disputeModel), nil
}

func (r *DefaultDisputeRepository) GetOpenDisputeByEventUser(eventID, userID string) (*domain.Dispute, error) {
	var disputeModel models.DisputeModel
	err := r.db.
		Where("event_id = ? AND disputer_id = ? AND status IN ?", eventID, userID, reviewableStatuses).
		First(&disputeModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDisputeNotFound
		}
		return nil, err
	}
	return mappers.ToDomainDispute(&disputeModel), nil
}

func (r *DefaultDisputeRepository) GetEventDisputes(eventID string) ([]*domain.Dispute, error) {
	var disputeModels []models.DisputeModel
	if err := r.db.Where("event_id = ?", eventID).Order("created_at ASC").Find(&disputeModels).Error; err != nil {
		return nil, fmt.Errorf("find disputes for event %s: %w", eventID, err)
	}
	disputes := make([]*domain.Dispute, len(disputeModels))
	for i := range disputeModels {
		disputes[i] = mappers.ToDomainDispute(&disputeModels[i])
	}
	return disputes, nil
}

func (r *DefaultDisputeRepository) CountOpenDisputes(eventID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.DisputeModel{}).
		Where("event_id = ? AND status IN ?", eventID, reviewableStatuses).
		Count(&count).Error
	return count, err
}

func (r *DefaultDisputeRepository) CountEscalatedDisputes(eventID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.DisputeModel{}).
		Where("event_id = ? AND escalated = ? AND status IN ?", eventID, true, reviewableStatuses).
		Count(&count).Error
	return count, err
}

func (r *DefaultDisputeRepository) ResolveDispute(disputeID string, status domain.DisputeStatus, outcome *domain.Outcome, resolvedAt time.Time) (bool, error) {
	updates := map[string]any{
		"status":      string(status),
		"resolved_at": resolvedAt,
	}
	if outcome != nil {
		updates["outcome"] = string(*outcome)
	}
	result := r.db.Model(&models.DisputeModel{}).
		Where("id = ? AND status IN ?", disputeID, reviewableStatuses).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *DefaultDisputeRepository) MarkEscalated(disputeID string) (bool, error) {
	result := r.db.Model(&models.DisputeModel{}).
		Where("id = ? AND status = ? AND escalated = ?", disputeID, string(domain.DisputeRejected), false).
		Updates(map[string]any{
			"status":      string(domain.DisputeUnderReview),
			"escalated":   true,
			"resolved_at": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
