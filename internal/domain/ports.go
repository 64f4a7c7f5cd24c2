package domain

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(topic string, msgs ...Message) error
}

// AuditSink is a fire-and-forget write-only sink; failures are logged and
// never block settlement.
type AuditSink interface {
	Record(event string, details map[string]any)
}

// NotificationDispatcher delivers the per-winner message after crediting.
// Fire-and-forget.
type NotificationDispatcher interface {
	NotifyPayout(userID, eventID string, token Outcome, amount int64)
	NotifyRefund(userID, eventID string, token Outcome, amount int64)
}
