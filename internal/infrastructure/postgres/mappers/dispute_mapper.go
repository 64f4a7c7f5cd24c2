package mappers

import (
	"encoding/json"

	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/models"
)

func ToDomainDispute(model *models.DisputeModel) *domain.Dispute {
	var evidence []string
	if model.Evidence != "" {
		// Stored as a jsonb array; a decode failure leaves evidence empty.
		_ = json.Unmarshal([]byte(model.Evidence), &evidence)
	}
	var outcome *domain.Outcome
	if model.Outcome != nil {
		o := domain.Outcome(*model.Outcome)
		outcome = &o
	}
	return &domain.Dispute{
		ID:          model.ID,
		EventID:     model.EventID,
		DisputerID:  model.DisputerID,
		StakeAmount: model.StakeAmount,
		StakeToken:  domain.Outcome(model.StakeToken),
		Reason:      model.Reason,
		Evidence:    evidence,
		Status:      domain.DisputeStatus(model.Status),
		Outcome:     outcome,
		Escalated:   model.Escalated,
		CreatedAt:   model.CreatedAt,
		ResolvedAt:  model.ResolvedAt,
	}
}

func ToGORMDispute(dispute *domain.Dispute) *models.DisputeModel {
	evidence, _ := json.Marshal(dispute.Evidence)
	var outcome *string
	if dispute.Outcome != nil {
		o := string(*dispute.Outcome)
		outcome = &o
	}
	return &models.DisputeModel{
		ID:          dispute.ID,
		EventID:     dispute.EventID,
		DisputerID:  dispute.DisputerID,
		StakeAmount: dispute.StakeAmount,
		StakeToken:  string(dispute.StakeToken),
		Reason:      dispute.Reason,
		Evidence:    string(evidence),
		Status:      string(dispute.Status),
		Outcome:     outcome,
		Escalated:   dispute.Escalated,
		CreatedAt:   dispute.CreatedAt,
		ResolvedAt:  dispute.ResolvedAt,
	}
}
