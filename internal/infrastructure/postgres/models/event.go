package models

import (
	"time"
)

type EventModel struct {
	ID                 string `gorm:"primaryKey;type:uuid"`
	CreatorID          string `gorm:"index"`
	Title              string
	Description        string
	Status             string `gorm:"index:idx_status_proposed"`
	TotalDoomStake     int64
	TotalLifeStake     int64
	ProposedOutcome    *string
	ProposedAt         *time.Time `gorm:"index:idx_status_proposed"`
	ResolvedAt         *time.Time
	BettingDeadline    time.Time
	EventDeadline      time.Time
	ResolutionDeadline time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
