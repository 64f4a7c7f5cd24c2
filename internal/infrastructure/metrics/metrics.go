package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SettlementMetrics holds all settlement pipeline metrics.
type SettlementMetrics struct {
	EventsResolvedTotal  prometheus.CounterVec
	EventsCancelledTotal prometheus.Counter

	PayoutsDistributedTotal prometheus.Counter
	PayoutAmountTotal       prometheus.Counter
	RefundsIssuedTotal      prometheus.Counter
	RefundAmountTotal       prometheus.Counter
	FeesRetainedTotal       prometheus.Counter

	DisputesOpenedTotal    prometheus.Counter
	DisputesResolvedTotal  prometheus.CounterVec
	DisputesEscalatedTotal prometheus.Counter

	ProposalsTotal        prometheus.CounterVec
	BatchJobsQueuedTotal  prometheus.CounterVec
	JobRetriesTotal       prometheus.CounterVec
	JobsDeadLetteredTotal prometheus.CounterVec

	SettlementDuration prometheus.Histogram
}

func NewSettlementMetrics() *SettlementMetrics {
	return &SettlementMetrics{
		EventsResolvedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_events_resolved_total",
				Help: "Events finalized by the settlement pipeline, by outcome",
			},
			[]string{"outcome"},
		),

		EventsCancelledTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settlement_events_cancelled_total",
				Help: "Events cancelled by administrative override",
			},
		),

		PayoutsDistributedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settlement_payouts_distributed_total",
				Help: "Winning bets credited by batch payout jobs",
			},
		),

		PayoutAmountTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settlement_payout_amount_total",
				Help: "Total tokens credited to winners",
			},
		),

		RefundsIssuedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settlement_refunds_issued_total",
				Help: "Bets refunded after event cancellation",
			},
		),

		RefundAmountTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settlement_refund_amount_total",
				Help: "Total tokens refunded after cancellation",
			},
		),

		FeesRetainedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settlement_fees_retained_total",
				Help: "Platform retention: explicit fees plus forfeited dispute escrow",
			},
		),

		DisputesOpenedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settlement_disputes_opened_total",
				Help: "Stake-backed disputes filed inside the dispute window",
			},
		),

		DisputesResolvedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_disputes_resolved_total",
				Help: "Disputes resolved by review, by result",
			},
			[]string{"result"},
		),

		DisputesEscalatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settlement_disputes_escalated_total",
				Help: "Rejected disputes escalated to community vote",
			},
		),

		ProposalsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_proposals_total",
				Help: "Outcome proposals accepted into the dispute window, by outcome",
			},
			[]string{"outcome"},
		),

		BatchJobsQueuedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_batch_jobs_queued_total",
				Help: "Batch jobs fanned out by resolution jobs, by kind",
			},
			[]string{"kind"},
		),

		JobRetriesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_job_retries_total",
				Help: "Job retries after transient failures, by kind",
			},
			[]string{"kind"},
		),

		JobsDeadLetteredTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_jobs_dead_lettered_total",
				Help: "Jobs surfaced for manual operator intervention, by kind",
			},
			[]string{"kind"},
		),

		SettlementDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "settlement_resolution_duration_seconds",
				Help:    "Time to finalize an event and fan out its batches",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
	}
}

func (m *SettlementMetrics) RecordEventResolved(outcome string) {
	m.EventsResolvedTotal.WithLabelValues(outcome).Inc()
}

func (m *SettlementMetrics) RecordPayout(amount int64) {
	m.PayoutsDistributedTotal.Inc()
	m.PayoutAmountTotal.Add(float64(amount))
}

func (m *SettlementMetrics) RecordRefund(amount int64) {
	m.RefundsIssuedTotal.Inc()
	m.RefundAmountTotal.Add(float64(amount))
}

func (m *SettlementMetrics) RecordFeeRetained(amount int64) {
	m.FeesRetainedTotal.Add(float64(amount))
}

func (m *SettlementMetrics) RecordDisputeResolved(result string) {
	m.DisputesResolvedTotal.WithLabelValues(result).Inc()
}

func (m *SettlementMetrics) RecordBatchJobsQueued(kind string, count int) {
	m.BatchJobsQueuedTotal.WithLabelValues(kind).Add(float64(count))
}
