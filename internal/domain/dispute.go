package domain

import "time"

type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "OPEN"
	DisputeUnderReview DisputeStatus = "UNDER_REVIEW"
	DisputeUpheld      DisputeStatus = "UPHELD"
	DisputeRejected    DisputeStatus = "REJECTED"
)

type Dispute struct {
	ID          string
	EventID     string
	DisputerID  string
	StakeAmount int64
	// StakeToken is the token the escrow was debited in: the side the
	// disputer effectively backs, i.e. the opposite of the proposed outcome.
	StakeToken Outcome
	Reason     string
	Evidence   []string
	Status     DisputeStatus
	// Outcome is the event outcome the review decided, set on resolution.
	Outcome    *Outcome
	Escalated  bool
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

func (d *Dispute) IsOpen() bool {
	return d.Status == DisputeOpen || d.Status == DisputeUnderReview
}

type DisputeRepository interface {
	CreateDispute(dispute *Dispute) error
	GetDisputeByID(disputeID string) (*Dispute, error)
	GetOpenDisputeByEventUser(eventID, userID string) (*Dispute, error)
	GetEventDisputes(eventID string) ([]*Dispute, error)
	CountOpenDisputes(eventID string) (int64, error)
	CountEscalatedDisputes(eventID string) (int64, error)

	// ResolveDispute moves an open or under-review dispute to a terminal
	// status. Returns false when the dispute already left review.
	ResolveDispute(disputeID string, status DisputeStatus, outcome *Outcome, resolvedAt time.Time) (bool, error)

	// MarkEscalated moves a rejected dispute back under review with the
	// escalated flag set. Returns false when the dispute is not escalatable.
	MarkEscalated(disputeID string) (bool, error)
}
