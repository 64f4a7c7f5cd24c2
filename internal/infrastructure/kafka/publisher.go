package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (k *KafkaPublisher) PublishSettlement(event SettlementEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event.EventID),
		Value: msg,
		Time:  time.Now(),
	})
}

func (k *KafkaPublisher) PublishDispute(event DisputeEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event.EventID),
		Value: msg,
		Time:  time.Now(),
	})
}

func (k *KafkaPublisher) Publish(topic string, msgs ...domain.Message) error {
	kafkaMsgs := make([]kafka.Message, len(msgs))
	for i, m := range msgs {
		kafkaMsgs[i] = kafka.Message{Key: m.Key, Value: m.Value, Time: time.Now()}
	}
	return k.writer.WriteMessages(context.Background(), kafkaMsgs...)
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}
