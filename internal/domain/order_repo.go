package domain

import (
	"context"
	"time"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, orderID string) (*Order, error)
	GetOrderByProviderTxnID(ctx context.Context, provider Provider, txnID string) (*Order, error)
	UpdateOrder(ctx context.Context, order *Order) error
	// ReleaseHold sets hold_released_at/reason only when the hold is still
	// unresolved. Returns ErrAlreadyReleased when another writer got there
	// first.
	ReleaseHold(ctx context.Context, orderID, reason string, status OrderStatus) error
	// FindStaleConfirmationHolds selects orders held for email confirmation
	// whose hold predates cutoff, unresolved, bounded by limit.
	FindStaleConfirmationHolds(ctx context.Context, cutoff time.Time, limit int) ([]*Order, error)
	FindHeldOrders(ctx context.Context) ([]*Order, error)
}

type WebhookEventRepository interface {
	GetEvent(ctx context.Context, provider Provider, providerEventID string) (*WebhookEvent, error)
}

type ConfirmationRepository interface {
	CreateConfirmation(ctx context.Context, c *Confirmation) error
	GetByToken(ctx context.Context, token string) (*Confirmation, error)
	GetActiveByOrderID(ctx context.Context, orderID string, now time.Time) (*Confirmation, error)
	// Consume sets confirmed_at only when still unconsumed; reports whether
	// this caller won the consume race.
	Consume(ctx context.Context, confirmationID string, at time.Time) (bool, error)
}

type FulfillmentRepository interface {
	// InsertFulfillment fails with a duplicate-key error when a row for the
	// order already exists.
	InsertFulfillment(ctx context.Context, f *Fulfillment) error
	GetByOrderID(ctx context.Context, orderID string) (*Fulfillment, error)
	GetByUnlockToken(ctx context.Context, token string) (*Fulfillment, error)
	Revoke(ctx context.Context, orderID, reason string, at time.Time) error
}

type AuditEventRepository interface {
	AppendEvent(ctx context.Context, e *AuditEvent) error
	ListByOrderID(ctx context.Context, orderID string) ([]*AuditEvent, error)
}

// IngestTx runs the idempotency-ledger insert and the order mutation in
// one storage transaction: both commit or neither does. A duplicate
// ledger key aborts with ErrDuplicateEvent before apply runs.
type IngestTx interface {
	WebhookEventRepository
	RecordAndApply(ctx context.Context, event *WebhookEvent, apply func(orders OrderRepository, audits AuditEventRepository) error) error
}
