package repository

import (
	"errors"

	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

// DefaultLedgerRepository is the stake ledger leaf: per-user token balances
// mutated only through single-row atomic increments and guarded decrements.
type DefaultLedgerRepository struct {
	db *gorm.DB
}

func NewDefaultLedgerRepository(db *gorm.DB) *DefaultLedgerRepository {
	return &DefaultLedgerRepository{db: db}
}

func (r *DefaultLedgerRepository) Credit(userID string, token domain.Outcome, amount int64) error {
	result := r.db.Model(&models.WalletModel{}).
		Where("user_id = ? AND token = ?", userID, string(token)).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.db.Create(&models.WalletModel{
			UserID:  userID,
			Token:   string(token),
			Balance: amount,
		}).Error
	}
	return nil
}

// Debit decrements only when the balance covers the amount; the balance
// column never goes negative.
func (r *DefaultLedgerRepository) Debit(userID string, token domain.Outcome, amount int64) error {
	result := r.db.Model(&models.WalletModel{}).
		Where("user_id = ? AND token = ? AND balance >= ?", userID, string(token), amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *DefaultLedgerRepository) GetBalance(userID string, token domain.Outcome) (int64, error) {
	var wallet models.WalletModel
	err := r.db.First(&wallet, "user_id = ? AND token = ?", userID, string(token)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return wallet.Balance, nil
}
