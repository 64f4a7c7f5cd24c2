package domain

import "time"

// UserStats aggregates one user's lifetime betting record. It is a derived
// read model: every field can be rebuilt from bets and events, so writers
// treat stats failures as non-fatal.
type UserStats struct {
	UserID        string
	TotalBets     int64
	Wins          int64
	Losses        int64
	TotalWagered  int64
	TotalWon      int64
	TotalLost     int64
	NetProfit     int64
	EventsCreated int64
	FirstBetAt    *time.Time
	LastBetAt     *time.Time

	// CurrentStreak is positive while winning, negative while losing.
	CurrentStreak int64
	BestStreak    int64
	WorstStreak   int64
}

// WinRate returns the win rate in basis points (0 to 10000).
func (s *UserStats) WinRate() int64 {
	if s.TotalBets == 0 {
		return 0
	}
	return s.Wins * 10_000 / s.TotalBets
}

func (s *UserStats) RecordBet(amount int64, at time.Time) {
	s.TotalBets++
	s.TotalWagered += amount
	if s.FirstBetAt == nil {
		first := at
		s.FirstBetAt = &first
	}
	last := at
	s.LastBetAt = &last
}

// RecordWin books one settled winning bet. The won amount is the gross
// payout, stake included.
func (s *UserStats) RecordWin(wagered, won int64) {
	s.Wins++
	s.TotalWon += won
	s.NetProfit += won - wagered

	if s.CurrentStreak >= 0 {
		s.CurrentStreak++
	} else {
		s.CurrentStreak = 1
	}
	if s.CurrentStreak > s.BestStreak {
		s.BestStreak = s.CurrentStreak
	}
}

// RecordLoss books one settled losing bet; the stake is gone.
func (s *UserStats) RecordLoss(wagered int64) {
	s.Losses++
	s.TotalLost += wagered
	s.NetProfit -= wagered

	if s.CurrentStreak <= 0 {
		s.CurrentStreak--
	} else {
		s.CurrentStreak = -1
	}
	if -s.CurrentStreak > s.WorstStreak {
		s.WorstStreak = -s.CurrentStreak
	}
}

type StatsRepository interface {
	// RecordBetPlaced bumps the wager counters when a bet is accepted.
	RecordBetPlaced(userID string, amount int64, at time.Time) error

	// RecordWin books a settled winning bet; won is the gross payout.
	RecordWin(userID string, wagered, won int64) error

	// RecordLoss books a settled losing bet.
	RecordLoss(userID string, wagered int64) error

	RecordEventCreated(creatorID string) error

	GetUserStats(userID string) (*UserStats, error)
}
