package domain

import "time"

type AuditKind string

const (
	AuditPaymentCompleted    AuditKind = "payment_completed"
	AuditPaymentFailed       AuditKind = "payment_failed"
	AuditPaymentPending      AuditKind = "payment_pending"
	AuditRiskAssessed        AuditKind = "risk_assessed"
	AuditFulfillmentHeld     AuditKind = "fulfillment_held"
	AuditFulfillmentReleased AuditKind = "fulfillment_released"
	AuditFulfillmentIssued   AuditKind = "fulfillment_issued"
	AuditFulfillmentRevoked  AuditKind = "fulfillment_revoked"
	AuditOrderRefunded       AuditKind = "order_refunded"
	AuditChargebackReceived  AuditKind = "chargeback_received"
	AuditConfirmationSent    AuditKind = "confirmation_sent"
	AuditConfirmationDone    AuditKind = "confirmation_confirmed"
	AuditAccessDenied        AuditKind = "unlock_access_denied"
	AuditAnomaly             AuditKind = "anomaly"
)

// AuditEvent rows are append-only and never authoritative for state.
type AuditEvent struct {
	ID        string
	OrderID   string
	Kind      AuditKind
	Detail    string
	CreatedAt time.Time
}
