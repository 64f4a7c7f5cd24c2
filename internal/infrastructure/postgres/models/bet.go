package models

import (
	"time"
)

type BetModel struct {
	ID       string     `gorm:"primaryKey;type:uuid"`
	EventID  string     `gorm:"index:idx_event_user,unique;type:uuid"`
	UserID   string     `gorm:"index:idx_event_user,unique"`
	Outcome  string
	Amount   int64
	Payout   *int64
	Claimed  bool
	Refunded bool
	Event    EventModel `gorm:"foreignKey:EventID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	PlacedAt time.Time
	UpdatedAt time.Time
}
