package repository

import (
	"errors"
	"time"

	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/mappers"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultStatsRepository maintains the per-user aggregate record. Each write
// locks the user's row so concurrent batch workers cannot lose an update.
type DefaultStatsRepository struct {
	db *gorm.DB
}

func NewDefaultStatsRepository(db *gorm.DB) *DefaultStatsRepository {
	return &DefaultStatsRepository{db: db}
}

func (r *DefaultStatsRepository) RecordBetPlaced(userID string, amount int64, at time.Time) error {
	return r.mutate(userID, func(stats *domain.UserStats) {
		stats.RecordBet(amount, at)
	})
}

func (r *DefaultStatsRepository) RecordWin(userID string, wagered, won int64) error {
	return r.mutate(userID, func(stats *domain.UserStats) {
		stats.RecordWin(wagered, won)
	})
}

func (r *DefaultStatsRepository) RecordLoss(userID string, wagered int64) error {
	return r.mutate(userID, func(stats *domain.UserStats) {
		stats.RecordLoss(wagered)
	})
}

func (r *DefaultStatsRepository) RecordEventCreated(creatorID string) error {
	return r.mutate(creatorID, func(stats *domain.UserStats) {
		stats.EventsCreated++
	})
}

func (r *DefaultStatsRepository) GetUserStats(userID string) (*domain.UserStats, error) {
	var model models.UserStatsModel
	if err := r.db.First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.UserStats{UserID: userID}, nil
		}
		return nil, err
	}
	return mappers.ToDomainUserStats(&model), nil
}

func (r *DefaultStatsRepository) mutate(userID string, apply func(*domain.UserStats)) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var model models.UserStatsModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "user_id = ?", userID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		stats := mappers.ToDomainUserStats(&model)
		stats.UserID = userID
		apply(stats)

		updated := mappers.ToGORMUserStats(stats)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(updated).Error
		}
		return tx.Save(updated).Error
	})
}
