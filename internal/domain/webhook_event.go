package domain

import "time"

// CanonicalOutcome is one of the five internal outcomes every provider
// vocabulary normalizes to.
type CanonicalOutcome string

const (
	OutcomePaymentCompleted   CanonicalOutcome = "payment_completed"
	OutcomePaymentFailed      CanonicalOutcome = "payment_failed"
	OutcomePaymentPending     CanonicalOutcome = "payment_pending"
	OutcomeRefundIssued       CanonicalOutcome = "refund_issued"
	OutcomeChargebackReceived CanonicalOutcome = "chargeback_received"
)

// WebhookEvent is the idempotency ledger record. One row per
// (provider, provider_event_id); the stored outcome is replayed to
// duplicate deliveries without side effects.
type WebhookEvent struct {
	ID              string
	Provider        Provider
	ProviderEventID string
	EventType       string
	OrderID         string
	Outcome         CanonicalOutcome
	FirstSeenAt     time.Time
}
