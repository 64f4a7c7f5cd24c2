package publisher

type SettlementEvent struct {
	EventID       string `json:"event_id"`
	Status        string `json:"status"`
	Outcome       string `json:"outcome,omitempty"`
	TotalPool     int64  `json:"total_pool"`
	WinningPool   int64  `json:"winning_pool"`
	WinnersCount  int    `json:"winners_count,omitempty"`
	BatchesQueued int    `json:"batches_queued,omitempty"`
}

type DisputeEvent struct {
	DisputeID   string `json:"dispute_id"`
	EventID     string `json:"event_id"`
	DisputerID  string `json:"disputer_id"`
	StakeAmount int64  `json:"stake_amount"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status"`
	Escalated   bool   `json:"escalated,omitempty"`
}
