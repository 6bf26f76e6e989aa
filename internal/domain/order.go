package domain

import "time"

type OrderStatus string

const (
	StatusCreated         OrderStatus = "CREATED"
	StatusPending         OrderStatus = "PENDING"
	StatusCompleted       OrderStatus = "COMPLETED"
	StatusFailed          OrderStatus = "FAILED"
	StatusFulfilled       OrderStatus = "FULFILLED"
	StatusRefundRequested OrderStatus = "REFUND_REQUESTED"
	StatusRefunded        OrderStatus = "REFUNDED"
	StatusDisputed        OrderStatus = "DISPUTED"
)

type Provider string

const (
	ProviderCard   Provider = "card"
	ProviderWallet Provider = "wallet"
	ProviderCrypto Provider = "crypto"
)

type RiskDecision string

const (
	DecisionAllow        RiskDecision = "allow"
	DecisionEmailConfirm RiskDecision = "require_email_confirmation"
	DecisionManualHold   RiskDecision = "manual_hold"
)

const HoldReasonAutoRefund = "auto_refund_unconfirmed"

type Order struct {
	ID                 string
	Provider           Provider
	ProviderTxnID      string
	Status             OrderStatus
	AmountMinor        int64
	Currency           string
	ProductSKU         string
	CustomerEmail      string
	Attribution        string
	RiskScore          float64
	RiskDecision       RiskDecision
	HeldAt             *time.Time
	HoldReleasedAt     *time.Time
	HoldReleasedReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Held reports whether the order sits under an unresolved risk hold.
func (o *Order) Held() bool {
	return o.HeldAt != nil && o.HoldReleasedAt == nil
}

// Cleared reports whether fulfillment may be issued for the order.
func (o *Order) Cleared() bool {
	if o.Status != StatusCompleted && o.Status != StatusFulfilled {
		return false
	}
	return !o.Held()
}

var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusCreated:         {StatusPending, StatusCompleted, StatusFailed},
	StatusPending:         {StatusCompleted, StatusFailed},
	StatusCompleted:       {StatusFulfilled, StatusRefundRequested, StatusRefunded, StatusDisputed},
	StatusFulfilled:       {StatusRefundRequested, StatusRefunded, StatusDisputed},
	StatusRefundRequested: {StatusRefunded},
}

// CanTransition reports whether a status change is legal. A same-status
// update is not a transition; callers short-circuit it before asking.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderSnapshot is the immutable view handed to the risk scorer.
type OrderSnapshot struct {
	OrderID       string
	Provider      Provider
	AmountMinor   int64
	Currency      string
	ProductSKU    string
	CustomerEmail string
	Attribution   string
	CreatedAt     time.Time
}

func Snapshot(o *Order) OrderSnapshot {
	return OrderSnapshot{
		OrderID:       o.ID,
		Provider:      o.Provider,
		AmountMinor:   o.AmountMinor,
		Currency:      o.Currency,
		ProductSKU:    o.ProductSKU,
		CustomerEmail: o.CustomerEmail,
		Attribution:   o.Attribution,
		CreatedAt:     o.CreatedAt,
	}
}
