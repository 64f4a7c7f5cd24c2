package audit

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/doomlife/settlement-service/internal/domain"
)

type record struct {
	Event      string         `json:"event"`
	Details    map[string]any `json:"details,omitempty"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// KafkaAuditSink publishes audit records to a write-only topic. Delivery is
// fire-and-forget; a broker outage must never block settlement.
type KafkaAuditSink struct {
	publisher domain.PublisherPort
	topic     string
	logger    *slog.Logger
}

func NewKafkaAuditSink(publisher domain.PublisherPort, topic string, logger *slog.Logger) *KafkaAuditSink {
	return &KafkaAuditSink{publisher: publisher, topic: topic, logger: logger}
}

func (s *KafkaAuditSink) Record(event string, details map[string]any) {
	go func() {
		body, err := json.Marshal(record{Event: event, Details: details, RecordedAt: time.Now()})
		if err != nil {
			s.logger.Error("failed to marshal audit record", "event", event, "error", err.Error())
			return
		}
		if err := s.publisher.Publish(s.topic, domain.Message{Key: []byte(event), Value: body}); err != nil {
			s.logger.Error("failed to publish audit record", "event", event, "error", err.Error())
		}
	}()
}
