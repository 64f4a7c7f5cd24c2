package models

import (
	"time"
)

type WalletModel struct {
	UserID    string `gorm:"primaryKey"`
	Token     string `gorm:"primaryKey"`
	Balance   int64
	UpdatedAt time.Time
}
