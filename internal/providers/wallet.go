package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"encoding/json"

	"github.com/crestline-media/fulfillment-service/internal/domain"
)

type WalletEvent struct {
	ID            string `json:"notification_id"`
	Type          string `json:"event_type"`
	CaptureID     string `json:"capture_id"`
	OrderID       string `json:"custom_id"`
	AmountMinor   int64  `json:"amount_minor"`
	Currency      string `json:"currency"`
	ProductSKU    string `json:"product_sku"`
	CustomerEmail string `json:"payer_email"`
	Attr          string `json:"attribution"`
}

func (e *WalletEvent) Provider() domain.Provider { return domain.ProviderWallet }
func (e *WalletEvent) EventID() string           { return e.ID }
func (e *WalletEvent) EventType() string         { return e.Type }
func (e *WalletEvent) TxnID() string             { return e.CaptureID }
func (e *WalletEvent) OrderHint() string         { return e.OrderID }
func (e *WalletEvent) Attribution() string       { return e.Attr }

func (e *WalletEvent) CheckoutDetails() (int64, string, string, string) {
	return e.AmountMinor, e.Currency, e.ProductSKU, e.CustomerEmail
}

// Outcome maps the wallet vocabulary. "order approved" is deliberately
// pending: approval alone must never fulfill, only a completed capture.
func (e *WalletEvent) Outcome() (domain.CanonicalOutcome, error) {
	switch e.Type {
	case "capture completed":
		return domain.OutcomePaymentCompleted, nil
	case "capture denied":
		return domain.OutcomePaymentFailed, nil
	case "capture pending", "order approved":
		return domain.OutcomePaymentPending, nil
	case "capture refunded":
		return domain.OutcomeRefundIssued, nil
	}
	if strings.HasPrefix(e.Type, "dispute") {
		return domain.OutcomeChargebackReceived, nil
	}
	return "", fmt.Errorf("%w: unknown wallet event type %q", domain.ErrMalformedPayload, e.Type)
}

// WalletWebhook verifies notifications by echoing the raw body back to
// the wallet provider's own verification endpoint. The round trip can be
// skipped only outside production.
type WalletWebhook struct {
	verifyURL  string
	skipVerify bool
	client     *http.Client
}

func NewWalletWebhook(verifyURL string, skipVerify bool) *WalletWebhook {
	return &WalletWebhook{
		verifyURL:  verifyURL,
		skipVerify: skipVerify,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WalletWebhook) Verify(ctx context.Context, rawBody []byte) error {
	if w.skipVerify {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.verifyURL, bytes.NewReader(rawBody))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderCallFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: wallet verification call: %v", domain.ErrProviderCallFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: wallet verification read: %v", domain.ErrProviderCallFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: wallet verification returned %s", domain.ErrProviderCallFailure, resp.Status)
	}
	if strings.TrimSpace(string(body)) != "VERIFIED" {
		return fmt.Errorf("%w: wallet notification not verified", domain.ErrAuthenticationFailed)
	}
	return nil
}

func (w *WalletWebhook) Parse(rawBody []byte) (*WalletEvent, error) {
	var event WalletEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("%w: wallet event missing notification_id or event_type", domain.ErrMalformedPayload)
	}
	return &event, nil
}
