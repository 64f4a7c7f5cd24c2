package models

import (
	"time"
)

type DisputeModel struct {
	ID          string `gorm:"primaryKey"`
	EventID     string `gorm:"index;type:uuid"`
	DisputerID  string `gorm:"index"`
	StakeAmount int64
	StakeToken  string
	Reason      string
	Evidence    string `gorm:"type:jsonb"`
	Status      string `gorm:"index"`
	Outcome     *string
	Escalated   bool
	Event       EventModel `gorm:"foreignKey:EventID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}
