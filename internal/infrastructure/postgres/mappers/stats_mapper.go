package mappers

import (
	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/models"
)

func ToDomainUserStats(model *models.UserStatsModel) *domain.UserStats {
	return &domain.UserStats{
		UserID:        model.UserID,
		TotalBets:     model.TotalBets,
		Wins:          model.Wins,
		Losses:        model.Losses,
		TotalWagered:  model.TotalWagered,
		TotalWon:      model.TotalWon,
		TotalLost:     model.TotalLost,
		NetProfit:     model.NetProfit,
		EventsCreated: model.EventsCreated,
		FirstBetAt:    model.FirstBetAt,
		LastBetAt:     model.LastBetAt,
		CurrentStreak: model.CurrentStreak,
		BestStreak:    model.BestStreak,
		WorstStreak:   model.WorstStreak,
	}
}

func ToGORMUserStats(stats *domain.UserStats) *models.UserStatsModel {
	return &models.UserStatsModel{
		UserID:        stats.UserID,
		TotalBets:     stats.TotalBets,
		Wins:          stats.Wins,
		Losses:        stats.Losses,
		TotalWagered:  stats.TotalWagered,
		TotalWon:      stats.TotalWon,
		TotalLost:     stats.TotalLost,
		NetProfit:     stats.NetProfit,
		EventsCreated: stats.EventsCreated,
		FirstBetAt:    stats.FirstBetAt,
		LastBetAt:     stats.LastBetAt,
		CurrentStreak: stats.CurrentStreak,
		BestStreak:    stats.BestStreak,
		WorstStreak:   stats.WorstStreak,
	}
}
