package models

import (
	"time"
)

type ResolutionEvidenceModel struct {
	ID          string `gorm:"primaryKey"`
	EventID     string `gorm:"index;type:uuid"`
	URL         string
	Description string
	SubmittedBy string
	CreatedAt   time.Time
}

type VerificationSourceModel struct {
	ID         string `gorm:"primaryKey"`
	EventID    string `gorm:"index;type:uuid"`
	SourceType string
	URL        string
	IsPrimary  bool
	CreatedAt  time.Time
}

type ResolutionApprovalModel struct {
	ID         string `gorm:"primaryKey"`
	EventID    string `gorm:"index:idx_event_approver,unique;type:uuid"`
	ApproverID string `gorm:"index:idx_event_approver,unique"`
	CreatedAt  time.Time
}
