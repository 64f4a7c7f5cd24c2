package mappers

import (
	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/models"
)

func ToDomainEvidence(model *models.ResolutionEvidenceModel) *domain.ResolutionEvidence {
	return &domain.ResolutionEvidence{
		ID:          model.ID,
		EventID:     model.EventID,
		URL:         model.URL,
		Description: model.Description,
		SubmittedBy: model.SubmittedBy,
		CreatedAt:   model.CreatedAt,
	}
}

func ToGORMEvidence(evidence *domain.ResolutionEvidence) *models.ResolutionEvidenceModel {
	return &models.ResolutionEvidenceModel{
		ID:          evidence.ID,
		EventID:     evidence.EventID,
		URL:         evidence.URL,
		Description: evidence.Description,
		SubmittedBy: evidence.SubmittedBy,
		CreatedAt:   evidence.CreatedAt,
	}
}

func ToDomainSource(model *models.VerificationSourceModel) *domain.VerificationSource {
	return &domain.VerificationSource{
		ID:         model.ID,
		EventID:    model.EventID,
		SourceType: domain.SourceType(model.SourceType),
		URL:        model.URL,
		IsPrimary:  model.IsPrimary,
		CreatedAt:  model.CreatedAt,
	}
}

func ToGORMSource(source *domain.VerificationSource) *models.VerificationSourceModel {
	return &models.VerificationSourceModel{
		ID:         source.ID,
		EventID:    source.EventID,
		SourceType: string(source.SourceType),
		URL:        source.URL,
		IsPrimary:  source.IsPrimary,
		CreatedAt:  source.CreatedAt,
	}
}

func ToGORMApproval(approval *domain.ResolutionApproval) *models.ResolutionApprovalModel {
	return &models.ResolutionApprovalModel{
		ID:         approval.ID,
		EventID:    approval.EventID,
		ApproverID: approval.ApproverID,
		CreatedAt:  approval.CreatedAt,
	}
}
