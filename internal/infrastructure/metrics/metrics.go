package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type FulfillmentMetrics struct {
	WebhooksReceivedTotal  prometheus.CounterVec
	WebhooksRejectedTotal  prometheus.CounterVec
	WebhooksDuplicateTotal prometheus.CounterVec

	CanonicalOutcomesTotal prometheus.CounterVec

	FulfillmentsIssuedTotal  prometheus.CounterVec
	HoldsPlacedTotal         prometheus.CounterVec
	HoldsReleasedTotal       prometheus.CounterVec
	RefundsAttemptedTotal    prometheus.CounterVec
	RefundsFailedTotal       prometheus.CounterVec
	UnlockRedemptionsTotal   prometheus.CounterVec
	AnomaliesTotal           prometheus.CounterVec

	SweepDuration prometheus.HistogramVec
}

func NewFulfillmentMetrics() *FulfillmentMetrics {
	return &FulfillmentMetrics{
		WebhooksReceivedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhooks_received_total",
				Help: "Provider notifications received",
			},
			[]string{"provider"},
		),
		WebhooksRejectedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhooks_rejected_total",
				Help: "Provider notifications rejected before processing",
			},
			[]string{"provider", "reason"},
		),
		WebhooksDuplicateTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhooks_duplicate_total",
				Help: "Replayed notifications answered from the idempotency ledger",
			},
			[]string{"provider"},
		),
		CanonicalOutcomesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canonical_outcomes_total",
				Help: "Normalized webhook outcomes applied",
			},
			[]string{"provider", "outcome"},
		),
		FulfillmentsIssuedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillments_issued_total",
				Help: "Unlock tokens issued",
			},
			[]string{"provider"},
		),
		HoldsPlacedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "holds_placed_total",
				Help: "Orders held by the risk gate",
			},
			[]string{"decision"},
		),
		HoldsReleasedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "holds_released_total",
				Help: "Holds resolved",
			},
			[]string{"reason"},
		),
		RefundsAttemptedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refunds_attempted_total",
				Help: "Refund connector calls",
			},
			[]string{"provider"},
		),
		RefundsFailedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refunds_failed_total",
				Help: "Refund connector failures (retried next sweep)",
			},
			[]string{"provider"},
		),
		UnlockRedemptionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unlock_redemptions_total",
				Help: "Unlock token redemptions",
			},
			[]string{"result"},
		),
		AnomaliesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_anomalies_total",
				Help: "Business anomalies recorded to the audit log",
			},
			[]string{"kind"},
		),
		SweepDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reconciliation_sweep_duration_seconds",
				Help:    "Duration of reconciliation sweeps",
				Buckets: prometheus.DefBuckets,
			},
			[]string{},
		),
	}
}
