package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/doomlife/settlement-service/internal/domain"
	"github.com/doomlife/settlement-service/internal/infrastructure/metrics"
	"github.com/segmentio/kafka-go"
)

// Handler processes one decoded job envelope. Returning a Fatal-wrapped error
// dead-letters the job immediately; any other error consumes a retry attempt.
type Handler func(ctx context.Context, env *domain.JobEnvelope) error

type ConsumerConfig struct {
	GroupID     string
	MaxAttempts int
	BaseBackoff time.Duration
	JobTimeout  time.Duration
}

// Consumer drains one job topic and applies the retry policy. Run several
// consumers in the same group to raise concurrency for a kind.
type Consumer struct {
	queue   *KafkaQueue
	kind    domain.JobKind
	cfg     ConsumerConfig
	handler Handler
	metrics *metrics.SettlementMetrics
	logger  *slog.Logger
}

func NewConsumer(queue *KafkaQueue, kind domain.JobKind, cfg ConsumerConfig, handler Handler, settlementMetrics *metrics.SettlementMetrics, logger *slog.Logger) *Consumer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 3 * time.Second
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = time.Minute
	}
	return &Consumer{queue: queue, kind: kind, cfg: cfg, handler: handler, metrics: settlementMetrics, logger: logger}
}

// Run consumes until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: c.queue.brokers,
		Topic:   string(c.kind),
		GroupID: c.cfg.GroupID,
	})
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var env domain.JobEnvelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			c.logger.Error("undecodable job message dropped to dead-letter",
				"kind", c.kind, "error", err.Error())
			c.deadLetter(&domain.JobEnvelope{ID: string(msg.Key), Kind: c.kind, Payload: msg.Value}, err)
			continue
		}

		c.process(ctx, &env)
	}
}

func (c *Consumer) process(ctx context.Context, env *domain.JobEnvelope) {
	// Delayed jobs wait out their backoff before the handler runs.
	if !env.NotBefore.IsZero() {
		if wait := time.Until(env.NotBefore); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}
		}
	}

	jobCtx, cancel := context.WithTimeout(ctx, c.cfg.JobTimeout)
	err := c.handler(jobCtx, env)
	cancel()
	if err == nil {
		return
	}

	if IsFatal(err) {
		c.logger.Error("fatal job failure, routing to manual review",
			"kind", env.Kind, "job_id", env.ID, "attempt", env.Attempt, "error", err.Error())
		c.deadLetter(env, err)
		return
	}

	if env.Attempt+1 >= c.cfg.MaxAttempts {
		c.logger.Error("job exhausted retry budget",
			"kind", env.Kind, "job_id", env.ID, "attempt", env.Attempt, "error", err.Error())
		c.deadLetter(env, err)
		return
	}

	backoff := Backoff(c.cfg.BaseBackoff, env.Attempt)
	c.metrics.JobRetriesTotal.WithLabelValues(string(c.kind)).Inc()
	c.logger.Warn("job failed, retrying",
		"kind", env.Kind, "job_id", env.ID, "attempt", env.Attempt,
		"backoff", backoff.String(), "error", err.Error())
	if requeueErr := c.queue.requeue(env, backoff); requeueErr != nil {
		c.logger.Error("failed to requeue job", "job_id", env.ID, "error", requeueErr.Error())
	}
}

func (c *Consumer) deadLetter(env *domain.JobEnvelope, cause error) {
	c.metrics.JobsDeadLetteredTotal.WithLabelValues(string(c.kind)).Inc()
	if err := c.queue.sendToDeadLetter(env, cause); err != nil {
		c.logger.Error("failed to dead-letter job", "job_id", env.ID, "error", err.Error())
	}
}

// Backoff doubles per attempt from the base, capped at five minutes.
func Backoff(base time.Duration, attempt int) time.Duration {
	backoff := base
	for i := 0; i < attempt && backoff < 5*time.Minute; i++ {
		backoff *= 2
	}
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute
	}
	return backoff
}

type fatalError struct {
	err error
}

func (f *fatalError) Error() string { return f.err.Error() }
func (f *fatalError) Unwrap() error { return f.err }

// Fatal marks an error as non-retryable: the job goes straight to the
// dead-letter topic instead of consuming attempts.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

func IsFatal(err error) bool {
	var f *fatalError
	return errors.As(err, &f)
}
