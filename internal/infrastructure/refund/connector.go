package refund

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
)

// Connector issues a refund with the provider that settled the payment,
// keyed by the provider transaction id. A timeout is a failure to retry,
// never an assumed success.
type Connector interface {
	Refund(ctx context.Context, provider domain.Provider, providerTxnID string, amountMinor int64, currency string) error
}

type endpoint struct {
	url    string
	apiKey string
}

type ProviderConnector struct {
	endpoints map[domain.Provider]endpoint
	client    *http.Client
}

func NewProviderConnector(cardURL, cardKey, walletURL, walletKey, cryptoURL, cryptoKey string) *ProviderConnector {
	return &ProviderConnector{
		endpoints: map[domain.Provider]endpoint{
			domain.ProviderCard:   {url: cardURL, apiKey: cardKey},
			domain.ProviderWallet: {url: walletURL, apiKey: walletKey},
			domain.ProviderCrypto: {url: cryptoURL, apiKey: cryptoKey},
		},
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type refundRequest struct {
	TransactionID string `json:"transaction_id"`
	AmountMinor   int64  `json:"amount_minor"`
	Currency      string `json:"currency"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *ProviderConnector) Refund(ctx context.Context, provider domain.Provider, providerTxnID string, amountMinor int64, currency string) error {
	ep, ok := c.endpoints[provider]
	if !ok || ep.url == "" {
		return fmt.Errorf("%w: no refund endpoint for provider %s", domain.ErrProviderCallFailure, provider)
	}

	requestBodyBytes, err := json.Marshal(refundRequest{
		TransactionID: providerTxnID,
		AmountMinor:   amountMinor,
		Currency:      currency,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ep.apiKey)

	response, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderCallFailure, err)
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderCallFailure, err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	var errResp errorResponse
	if err := json.Unmarshal(responseBodyBytes, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("%w: refund returned %s", domain.ErrProviderCallFailure, response.Status)
	}
	return fmt.Errorf("%w: %s", domain.ErrProviderCallFailure, errResp.Error)
}

var _ Connector = (*ProviderConnector)(nil)
