package providers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/crestline-media/fulfillment-service/internal/domain"
)

// CryptoSignatureHeader carries "sha256=<hex>" over the raw body.
const CryptoSignatureHeader = "X-Invoice-Sig"

type CryptoEvent struct {
	DeliveryID    string `json:"delivery_id"`
	InvoiceID     string `json:"invoice_id"`
	Status        string `json:"status"`
	OrderID       string `json:"order_id"`
	AmountMinor   int64  `json:"amount_minor"`
	Currency      string `json:"currency"`
	ProductSKU    string `json:"product_sku"`
	CustomerEmail string `json:"buyer_email"`
	Attr          string `json:"attribution"`
}

func (e *CryptoEvent) Provider() domain.Provider { return domain.ProviderCrypto }
func (e *CryptoEvent) EventID() string           { return e.DeliveryID }
func (e *CryptoEvent) EventType() string         { return e.Status }
func (e *CryptoEvent) TxnID() string             { return e.InvoiceID }
func (e *CryptoEvent) OrderHint() string         { return e.OrderID }
func (e *CryptoEvent) Attribution() string       { return e.Attr }

func (e *CryptoEvent) CheckoutDetails() (int64, string, string, string) {
	return e.AmountMinor, e.Currency, e.ProductSKU, e.CustomerEmail
}

// Outcome maps invoice states. "paid" means zero confirmations and is
// withheld as pending until the chain confirms, to avoid double-spend
// fulfillment.
func (e *CryptoEvent) Outcome() (domain.CanonicalOutcome, error) {
	switch e.Status {
	case "confirmed", "settled":
		return domain.OutcomePaymentCompleted, nil
	case "paid":
		return domain.OutcomePaymentPending, nil
	case "expired", "invalid", "failed":
		return domain.OutcomePaymentFailed, nil
	}
	return "", fmt.Errorf("%w: unknown crypto invoice status %q", domain.ErrMalformedPayload, e.Status)
}

type CryptoWebhook struct {
	secret []byte
}

func NewCryptoWebhook(secret string) *CryptoWebhook {
	return &CryptoWebhook{secret: []byte(secret)}
}

func (w *CryptoWebhook) Verify(rawBody []byte, signature string) error {
	digest, ok := strings.CutPrefix(signature, "sha256=")
	if !ok {
		return fmt.Errorf("%w: missing or malformed %s header", domain.ErrAuthenticationFailed, CryptoSignatureHeader)
	}
	given, err := hex.DecodeString(digest)
	if err != nil {
		return fmt.Errorf("%w: malformed crypto signature", domain.ErrAuthenticationFailed)
	}
	mac := hmac.New(sha256.New, w.secret)
	mac.Write(rawBody)
	if !hmac.Equal(given, mac.Sum(nil)) {
		return fmt.Errorf("%w: crypto signature mismatch", domain.ErrAuthenticationFailed)
	}
	return nil
}

func (w *CryptoWebhook) Parse(rawBody []byte) (*CryptoEvent, error) {
	var event CryptoEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if event.DeliveryID == "" || event.InvoiceID == "" || event.Status == "" {
		return nil, fmt.Errorf("%w: crypto event missing delivery_id, invoice_id or status", domain.ErrMalformedPayload)
	}
	return &event, nil
}
