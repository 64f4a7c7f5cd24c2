package notifier

type PayoutNotification struct {
	Kind    string `json:"kind"` // "payout" or "refund"
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
	Token   string `json:"token"`
	Amount  int64  `json:"amount"`
}
