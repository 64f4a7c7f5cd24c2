package domain

import "time"

type Bet struct {
	ID       string
	EventID  string
	UserID   string
	Outcome  Outcome
	Amount   int64
	Payout   *int64
	Claimed  bool
	Refunded bool
	PlacedAt time.Time
}

// IsWinner reports whether the bet backed the resolved outcome.
func (b *Bet) IsWinner(eventOutcome Outcome) bool {
	return b.Outcome == eventOutcome
}

type BetRepository interface {
	CreateBet(bet *Bet) error

	// DeleteBet removes a bet that never made it into the pool. Used only to
	// unwind a partially placed bet.
	DeleteBet(betID string) error

	GetBetByID(betID string) (*Bet, error)
	GetBetByEventUser(eventID, userID string) (*Bet, error)
	GetBetsByEventID(eventID string) ([]*Bet, error)

	// SetPayout writes the payout exactly once and reports whether this call
	// was the one that wrote it; a bet whose payout is already set is left
	// untouched.
	SetPayout(betID string, payout int64) (bool, error)

	// CreditPayout flips claimed and credits the winner in one transaction:
	// the stake returns in the bet's own token, the winnings in the opposite
	// token they were escrowed in. Returns false without error when the bet
	// was already claimed or carries no positive payout, which is what makes
	// batch jobs safe to re-deliver.
	CreditPayout(betID string) (bool, *Bet, error)

	// RefundBet returns the original stake for a cancelled event, guarded by
	// the refunded flag.
	RefundBet(betID string) (bool, *Bet, error)
}
