package domain

import (
	"encoding/json"
	"time"
)

type JobKind string

const (
	JobResolution  JobKind = "settlement.resolution"
	JobPayoutBatch JobKind = "settlement.payout-batch"
	JobRefundBatch JobKind = "settlement.refund-batch"
)

// ResolutionJob finalizes one event: claims the status transition, computes
// payouts and fans out batch jobs. Effectively serialized per event by the
// low worker ceiling plus the status guard.
type ResolutionJob struct {
	EventID string `json:"event_id"`
}

// BatchPayoutJob credits one pre-partitioned slice of winning bets. Batches
// for the same event never share a bet id, so payout workers need no lock.
type BatchPayoutJob struct {
	EventID string   `json:"event_id"`
	Batch   int      `json:"batch"`
	BetIDs  []string `json:"bet_ids"`
}

// RefundBatchJob returns stakes for one slice of bets on a cancelled event.
type RefundBatchJob struct {
	EventID string   `json:"event_id"`
	Batch   int      `json:"batch"`
	BetIDs  []string `json:"bet_ids"`
}

// JobEnvelope is the wire form of a queued job: one tagged variant per kind,
// dispatched by a handler table keyed on Kind.
type JobEnvelope struct {
	ID         string          `json:"id"`
	Kind       JobKind         `json:"kind"`
	Attempt    int             `json:"attempt"`
	NotBefore  time.Time       `json:"not_before,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Payload    json.RawMessage `json:"payload"`
}

type EnqueueOptions struct {
	// Delay defers processing until now + Delay.
	Delay time.Duration
	// JobID overrides the generated id; deterministic ids make duplicate
	// fan-out harmless.
	JobID string
}

// JobQueue is the durable queue port. Delivery is at-least-once; handlers
// stay correct under re-delivery because every mutating step is guarded.
type JobQueue interface {
	Enqueue(kind JobKind, payload any, opts *EnqueueOptions) error
}
