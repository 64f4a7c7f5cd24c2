package mappers

import (
	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/models"
)

func ToDomainBet(model *models.BetModel) *domain.Bet {
	return &domain.Bet{
		ID:       model.ID,
		EventID:  model.EventID,
		UserID:   model.UserID,
		Outcome:  domain.Outcome(model.Outcome),
		Amount:   model.Amount,
		Payout:   model.Payout,
		Claimed:  model.Claimed,
		Refunded: model.Refunded,
		PlacedAt: model.PlacedAt,
	}
}

func ToGORMBet(bet *domain.Bet) *models.BetModel {
	return &models.BetModel{
		ID:       bet.ID,
		EventID:  bet.EventID,
		UserID:   bet.UserID,
		Outcome:  string(bet.Outcome),
		Amount:   bet.Amount,
		Payout:   bet.Payout,
		Claimed:  bet.Claimed,
		Refunded: bet.Refunded,
		PlacedAt: bet.PlacedAt,
	}
}
