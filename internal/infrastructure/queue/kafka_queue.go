// Package queue implements the durable settlement job queue on Kafka: one
// topic per job kind, consumer groups for at-least-once delivery, bounded
// retries with exponential backoff via delayed re-publish, and a dead-letter
// topic for exhausted jobs.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/jaevor/go-nanoid"
	"github.com/segmentio/kafka-go"
)

type KafkaQueue struct {
	brokers    []string
	writers    map[domain.JobKind]*kafka.Writer
	deadLetter *kafka.Writer
	idGen      func() string
}

func NewKafkaQueue(brokers []string, deadLetterTopic string) (*KafkaQueue, error) {
	idGen, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}
	kinds := []domain.JobKind{domain.JobResolution, domain.JobPayoutBatch, domain.JobRefundBatch}
	writers := make(map[domain.JobKind]*kafka.Writer, len(kinds))
	for _, kind := range kinds {
		writers[kind] = newWriter(brokers, string(kind))
	}
	return &KafkaQueue{
		brokers:    brokers,
		writers:    writers,
		deadLetter: newWriter(brokers, deadLetterTopic),
		idGen:      idGen,
	}, nil
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
}

func (q *KafkaQueue) Enqueue(kind domain.JobKind, payload any, opts *domain.EnqueueOptions) error {
	writer, ok := q.writers[kind]
	if !ok {
		return fmt.Errorf("unknown job kind %q", kind)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}

	env := domain.JobEnvelope{
		ID:         q.idGen(),
		Kind:       kind,
		EnqueuedAt: time.Now(),
		Payload:    body,
	}
	if opts != nil {
		if opts.JobID != "" {
			env.ID = opts.JobID
		}
		if opts.Delay > 0 {
			env.NotBefore = time.Now().Add(opts.Delay)
		}
	}

	return q.publish(writer, &env)
}

// requeue re-publishes a failed envelope with its attempt count bumped and a
// backoff delay. Called by the consumer on retryable failures.
func (q *KafkaQueue) requeue(env *domain.JobEnvelope, backoff time.Duration) error {
	writer, ok := q.writers[env.Kind]
	if !ok {
		return fmt.Errorf("unknown job kind %q", env.Kind)
	}
	retry := *env
	retry.Attempt++
	retry.NotBefore = time.Now().Add(backoff)
	return q.publish(writer, &retry)
}

// sendToDeadLetter parks an exhausted or fatal job for manual operator
// intervention. The envelope is preserved verbatim.
func (q *KafkaQueue) sendToDeadLetter(env *domain.JobEnvelope, cause error) error {
	msg, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return q.deadLetter.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(env.ID),
		Value: msg,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(env.Kind)},
			{Key: "attempt", Value: []byte(strconv.Itoa(env.Attempt))},
			{Key: "error", Value: []byte(cause.Error())},
		},
	})
}

func (q *KafkaQueue) publish(writer *kafka.Writer, env *domain.JobEnvelope) error {
	msg, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(env.ID),
		Value: msg,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(env.Kind)},
			{Key: "attempt", Value: []byte(strconv.Itoa(env.Attempt))},
		},
	})
}

func (q *KafkaQueue) Close() error {
	for _, w := range q.writers {
		w.Close()
	}
	return q.deadLetter.Close()
}
