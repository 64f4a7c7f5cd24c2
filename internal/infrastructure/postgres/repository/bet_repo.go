package repository

import (
	"errors"
	"fmt"

	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/mappers"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultBetRepository struct {
	db *gorm.DB
}

func NewDefaultBetRepository(db *gorm.DB) *DefaultBetRepository {
	return &DefaultBetRepository{db: db}
}

func (r *DefaultBetRepository) CreateBet(bet *domain.Bet) error {
	betModel := mappers.ToGORMBet(bet)
	if err := r.db.Create(betModel).Error; err != nil {
		return fmt.Errorf("create bet: %w", err)
	}
	return nil
}

func (r *DefaultBetRepository) GetBetByID(betID string) (*domain.Bet, error) {
	var betModel models.BetModel
	if err := r.db.First(&betModel, "id = ?", betID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBetNotFound
		}
		return nil, err
	}
	return mappers.ToDomainBet(&betModel), nil
}

func (r *DefaultBetRepository) GetBetByEventUser(eventID, userID string) (*domain.Bet, error) {
	var betModel models.BetModel
	if err := r.db.First(&betModel, "event_id = ? AND user_id = ?", eventID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBetNotFound
		}
		return nil, err
	}
	return mappers.ToDomainBet(&betModel), nil
}

func (r *DefaultBetRepository) GetBetsByEventID(eventID string) ([]*domain.Bet, error) {
	var betModels []models.BetModel
	if err := r.db.Where("event_id = ?", eventID).Order("placed_at ASC").Find(&betModels).Error; err != nil {
		return nil, fmt.Errorf("find bets for event %s: %w", eventID, err)
	}
	bets := make([]*domain.Bet, len(betModels))
	for i := range betModels {
		bets[i] = mappers.ToDomainBet(&betModels[i])
	}
	return bets, nil
}

// DeleteBet unwinds a bet whose stake never reached the pool.
func (r *DefaultBetRepository) DeleteBet(betID string) error {
	return r.db.Delete(&models.BetModel{}, "id = ?", betID).Error
}

// SetPayout writes the payout only while it is still null, so a re-run
// resolution job cannot rewrite an already-settled bet. Reports whether this
// call performed the write.
func (r *DefaultBetRepository) SetPayout(betID string, payout int64) (bool, error) {
	result := r.db.Model(&models.BetModel{}).
		Where("id = ? AND payout IS NULL", betID).
		Update("payout", payout)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreditPayout flips the claimed flag and credits the wallet in a single
// transaction. The conditional claim is the idempotency guard: a duplicate
// delivery finds claimed already true and affects zero rows.
//
// The payout spans two token kinds. The stake comes back in the token it was
// escrowed in; the winnings were escrowed by the losing side, so they are
// paid in the opposite token. Crediting everything in the bet's own token
// would mint winning-side tokens out of nothing and strand the losing
// escrow.
func (r *DefaultBetRepository) CreditPayout(betID string) (bool, *domain.Bet, error) {
	var credited bool
	var bet *domain.Bet

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var betModel models.BetModel
		if err := tx.First(&betModel, "id = ?", betID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBetNotFound
			}
			return err
		}
		bet = mappers.ToDomainBet(&betModel)

		if betModel.Payout == nil || *betModel.Payout <= 0 {
			return nil
		}

		result := tx.Model(&models.BetModel{}).
			Where("id = ? AND claimed = ? AND payout IS NOT NULL", betID, false).
			Update("claimed", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := creditWallet(tx, betModel.UserID, betModel.Outcome, betModel.Amount); err != nil {
			return err
		}
		if winnings := *betModel.Payout - betModel.Amount; winnings > 0 {
			losingToken := string(domain.Opposite(domain.Outcome(betModel.Outcome)))
			if err := creditWallet(tx, betModel.UserID, losingToken, winnings); err != nil {
				return err
			}
		}
		credited = true
		bet.Claimed = true
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return credited, bet, nil
}

// RefundBet returns the original stake once for a cancelled event, guarded by
// the refunded flag.
func (r *DefaultBetRepository) RefundBet(betID string) (bool, *domain.Bet, error) {
	var refunded bool
	var bet *domain.Bet

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var betModel models.BetModel
		if err := tx.First(&betModel, "id = ?", betID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBetNotFound
			}
			return err
		}
		bet = mappers.ToDomainBet(&betModel)

		result := tx.Model(&models.BetModel{}).
			Where("id = ? AND refunded = ? AND claimed = ?", betID, false, false).
			Update("refunded", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := creditWallet(tx, betModel.UserID, betModel.Outcome, betModel.Amount); err != nil {
			return err
		}
		refunded = true
		bet.Refunded = true
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return refunded, bet, nil
}

func creditWallet(tx *gorm.DB, userID, token string, amount int64) error {
	result := tx.Model(&models.WalletModel{}).
		Where("user_id = ? AND token = ?", userID, token).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return tx.Create(&models.WalletModel{UserID: userID, Token: token, Balance: amount}).Error
	}
	return nil
}
