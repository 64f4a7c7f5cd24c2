package domain

// Wallet holds one user's balance in one outcome token. It is the only
// mutable shared resource in the system; every write is a single-row atomic
// increment or a guarded decrement.
type Wallet struct {
	UserID  string
	Token   Outcome
	Balance int64
}

// PlatformAccountID receives forfeited dispute escrow and escalation fees.
const PlatformAccountID = "platform"

type LedgerRepository interface {
	// Credit atomically increments the user's balance, creating the wallet
	// row on first use.
	Credit(userID string, token Outcome, amount int64) error

	// Debit atomically decrements the user's balance; fails with
	// ErrInsufficientBalance instead of going negative.
	Debit(userID string, token Outcome, amount int64) error

	GetBalance(userID string, token Outcome) (int64, error)
}
