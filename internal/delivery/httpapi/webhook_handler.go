package httpapi

import (
	"io"
	"net/http"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/metrics"
	"github.com/crestline-media/fulfillment-service/internal/providers"
	"github.com/crestline-media/fulfillment-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

// WebhookHandler fronts the three provider endpoints. Verification
// failures never touch state or the idempotency ledger; the provider
// retries on anything but 200.
type WebhookHandler struct {
	Card    *providers.CardWebhook
	Wallet  *providers.WalletWebhook
	Crypto  *providers.CryptoWebhook
	Ingest  usecase.IngestUsecase
	Metrics *metrics.FulfillmentMetrics
}

func NewWebhookHandler(
	card *providers.CardWebhook,
	wallet *providers.WalletWebhook,
	crypto *providers.CryptoWebhook,
	ingest usecase.IngestUsecase,
	m *metrics.FulfillmentMetrics,
) *WebhookHandler {
	return &WebhookHandler{Card: card, Wallet: wallet, Crypto: crypto, Ingest: ingest, Metrics: m}
}

func (h *WebhookHandler) readBody(c *gin.Context) ([]byte, bool) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil || len(rawBody) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return nil, false
	}
	return rawBody, true
}

func (h *WebhookHandler) received(provider domain.Provider) {
	if h.Metrics != nil {
		h.Metrics.WebhooksReceivedTotal.WithLabelValues(string(provider)).Inc()
	}
}

func (h *WebhookHandler) rejected(c *gin.Context, provider domain.Provider, err error) {
	status, msg := statusFor(err)
	if h.Metrics != nil {
		reason := "malformed"
		if status == http.StatusUnauthorized {
			reason = "authentication"
		}
		h.Metrics.WebhooksRejectedTotal.WithLabelValues(string(provider), reason).Inc()
	}
	c.JSON(status, gin.H{"error": msg})
}

func (h *WebhookHandler) process(c *gin.Context, provider domain.Provider, event providers.ProviderEvent) {
	result, err := h.Ingest.ProcessWebhook(c.Request.Context(), event)
	if err != nil {
		h.rejected(c, provider, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /webhooks/card
func (h *WebhookHandler) HandleCard(c *gin.Context) {
	h.received(domain.ProviderCard)
	rawBody, ok := h.readBody(c)
	if !ok {
		return
	}
	if err := h.Card.Verify(rawBody, c.GetHeader(providers.CardSignatureHeader)); err != nil {
		h.rejected(c, domain.ProviderCard, err)
		return
	}
	event, err := h.Card.Parse(rawBody)
	if err != nil {
		h.rejected(c, domain.ProviderCard, err)
		return
	}
	h.process(c, domain.ProviderCard, event)
}

// POST /webhooks/wallet
func (h *WebhookHandler) HandleWallet(c *gin.Context) {
	h.received(domain.ProviderWallet)
	rawBody, ok := h.readBody(c)
	if !ok {
		return
	}
	if err := h.Wallet.Verify(c.Request.Context(), rawBody); err != nil {
		h.rejected(c, domain.ProviderWallet, err)
		return
	}
	event, err := h.Wallet.Parse(rawBody)
	if err != nil {
		h.rejected(c, domain.ProviderWallet, err)
		return
	}
	h.process(c, domain.ProviderWallet, event)
}

// POST /webhooks/crypto
func (h *WebhookHandler) HandleCrypto(c *gin.Context) {
	h.received(domain.ProviderCrypto)
	rawBody, ok := h.readBody(c)
	if !ok {
		return
	}
	if err := h.Crypto.Verify(rawBody, c.GetHeader(providers.CryptoSignatureHeader)); err != nil {
		h.rejected(c, domain.ProviderCrypto, err)
		return
	}
	event, err := h.Crypto.Parse(rawBody)
	if err != nil {
		h.rejected(c, domain.ProviderCrypto, err)
		return
	}
	h.process(c, domain.ProviderCrypto, event)
}
