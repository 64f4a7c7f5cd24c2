package models

import (
	"time"
)

type UserStatsModel struct {
	UserID        string `gorm:"primaryKey"`
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
	CurrentStreak int64
	BestStreak    int64
	WorstStreak   int64
	UpdatedAt     time.Time
}
