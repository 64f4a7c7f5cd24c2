package repository

import (
	"fmt"

	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/mappers"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultEvidenceRepository struct {
	db *gorm.DB
}

func NewDefaultEvidenceRepository(db *gorm.DB) *DefaultEvidenceRepository {
	return &DefaultEvidenceRepository{db: db}
}

func (r *DefaultEvidenceRepository) AddEvidence(evidence *domain.ResolutionEvidence) error {
	if err := r.db.Create(mappers.ToGORMEvidence(evidence)).Error; err != nil {
		return fmt.Errorf("add evidence: %w", err)
	}
	return nil
}

func (r *DefaultEvidenceRepository) CountEvidence(eventID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ResolutionEvidenceModel{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

func (r *DefaultEvidenceRepository) ListEvidence(eventID string) ([]*domain.ResolutionEvidence, error) {
	var evidenceModels []models.ResolutionEvidenceModel
	if err := r.db.Where("event_id = ?", eventID).Order("created_at ASC").Find(&evidenceModels).Error; err != nil {
		return nil, err
	}
	evidence := make([]*domain.ResolutionEvidence, len(evidenceModels))
	for i := range evidenceModels {
		evidence[i] = mappers.ToDomainEvidence(&evidenceModels[i])
	}
	return evidence, nil
}

func (r *DefaultEvidenceRepository) AddSource(source *domain.VerificationSource) error {
	if err := r.db.Create(mappers.ToGORMSource(source)).Error; err != nil {
		return fmt.Errorf("add verification source: %w", err)
	}
	return nil
}

func (r *DefaultEvidenceRepository) ListSources(eventID string) ([]*domain.VerificationSource, error) {
	var sourceModels []models.VerificationSourceModel
	if err := r.db.Where("event_id = ?", eventID).Find(&sourceModels).Error; err != nil {
		return nil, err
	}
	sources := make([]*domain.VerificationSource, len(sourceModels))
	for i := range sourceModels {
		sources[i] = mappers.ToDomainSource(&sourceModels[i])
	}
	return sources, nil
}

func (r *DefaultEvidenceRepository) AddApproval(approval *domain.ResolutionApproval) error {
	if err := r.db.Create(mappers.ToGORMApproval(approval)).Error; err != nil {
		return fmt.Errorf("add resolution approval: %w", err)
	}
	return nil
}

func (r *DefaultEvidenceRepository) CountApprovals(eventID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ResolutionApprovalModel{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}
