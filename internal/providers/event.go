package providers

import (
	"github.com/crestline-media/fulfillment-service/internal/domain"
)

// ProviderEvent is the tagged variant produced by each provider's parser.
// Outcome applies the fixed per-provider mapping table onto the five
// canonical outcomes; unknown vocabulary is a malformed payload, never a
// silent default.
type ProviderEvent interface {
	Provider() domain.Provider
	EventID() string
	EventType() string
	TxnID() string
	OrderHint() string
	Attribution() string
	Outcome() (domain.CanonicalOutcome, error)

	// CheckoutDetails returns what a webhook-first order can be created
	// from when the intent endpoint was never called.
	CheckoutDetails() (amountMinor int64, currency, productSKU, customerEmail string)
}
