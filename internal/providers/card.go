package providers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/crestline-media/fulfillment-service/internal/domain"
)

// CardSignatureHeader carries a hex HMAC-SHA256 of the raw request body,
// keyed with the shared signing secret.
const CardSignatureHeader = "Pay-Signature"

type CardEvent struct {
	ID            string `json:"event_id"`
	Type          string `json:"event_type"`
	TransactionID string `json:"transaction_id"`
	OrderID       string `json:"order_id"`
	AmountMinor   int64  `json:"amount_minor"`
	Currency      string `json:"currency"`
	ProductSKU    string `json:"product_sku"`
	CustomerEmail string `json:"customer_email"`
	Attr          string `json:"attribution"`
}

func (e *CardEvent) Provider() domain.Provider { return domain.ProviderCard }
func (e *CardEvent) EventID() string           { return e.ID }
func (e *CardEvent) EventType() string         { return e.Type }
func (e *CardEvent) TxnID() string             { return e.TransactionID }
func (e *CardEvent) OrderHint() string         { return e.OrderID }
func (e *CardEvent) Attribution() string       { return e.Attr }

func (e *CardEvent) CheckoutDetails() (int64, string, string, string) {
	return e.AmountMinor, e.Currency, e.ProductSKU, e.CustomerEmail
}

func (e *CardEvent) Outcome() (domain.CanonicalOutcome, error) {
	switch e.Type {
	case "checkout completed", "intent succeeded":
		return domain.OutcomePaymentCompleted, nil
	case "payment failed":
		return domain.OutcomePaymentFailed, nil
	case "charge refunded":
		return domain.OutcomeRefundIssued, nil
	case "dispute created":
		return domain.OutcomeChargebackReceived, nil
	}
	return "", fmt.Errorf("%w: unknown card event type %q", domain.ErrMalformedPayload, e.Type)
}

type CardWebhook struct {
	signingSecret []byte
}

func NewCardWebhook(signingSecret string) *CardWebhook {
	return &CardWebhook{signingSecret: []byte(signingSecret)}
}

// Verify checks the keyed signature over the raw body. hmac.Equal keeps
// the comparison constant-time.
func (w *CardWebhook) Verify(rawBody []byte, signature string) error {
	if signature == "" {
		return fmt.Errorf("%w: missing %s header", domain.ErrAuthenticationFailed, CardSignatureHeader)
	}
	given, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: malformed card signature", domain.ErrAuthenticationFailed)
	}
	mac := hmac.New(sha256.New, w.signingSecret)
	mac.Write(rawBody)
	if !hmac.Equal(given, mac.Sum(nil)) {
		return fmt.Errorf("%w: card signature mismatch", domain.ErrAuthenticationFailed)
	}
	return nil
}

func (w *CardWebhook) Parse(rawBody []byte) (*CardEvent, error) {
	var event CardEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("%w: card event missing event_id or event_type", domain.ErrMalformedPayload)
	}
	return &event, nil
}
