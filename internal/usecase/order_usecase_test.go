package usecase_test

import (
	"context"
	"testing"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIntent(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	ctx := context.Background()

	output, err := f.admin.CreateIntent(ctx, &usecase.CreateIntentInput{
		Provider:      domain.ProviderCard,
		AmountMinor:   4999,
		Currency:      "USD",
		ProductSKU:    "sku-pro",
		CustomerEmail: "buyer@example.com",
		Attribution:   "utm_source=newsletter",
	})
	require.NoError(t, err)
	assert.Equal(t, output.OrderID, output.ProviderMetadata["order_id"])
	assert.Equal(t, "sku-pro", output.ProviderMetadata["product_sku"])

	order := f.order(t, output.OrderID)
	assert.Equal(t, domain.StatusCreated, order.Status)
	assert.Equal(t, int64(4999), order.AmountMinor)
}

func TestCreateIntentValidation(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	ctx := context.Background()

	_, err := f.admin.CreateIntent(ctx, &usecase.CreateIntentInput{
		Provider: "giftcard", AmountMinor: 100, Currency: "USD", ProductSKU: "sku-pro",
	})
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)

	_, err = f.admin.CreateIntent(ctx, &usecase.CreateIntentInput{
		Provider: domain.ProviderCard, AmountMinor: 0, Currency: "USD", ProductSKU: "sku-pro",
	})
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)

	_, err = f.admin.CreateIntent(ctx, &usecase.CreateIntentInput{
		Provider: domain.ProviderCard, AmountMinor: 100, Currency: "USD",
	})
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestReleaseHoldManually(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	ctx := context.Background()
	seedHeldOrder(t, f, "ord_a1")

	result, err := f.admin.ReleaseHoldManually(ctx, "ord_a1", "ops@crestline")
	require.NoError(t, err)
	assert.NotEmpty(t, result.UnlockToken)

	order := f.order(t, "ord_a1")
	assert.False(t, order.Held())
	assert.Equal(t, "manual_release", order.HoldReleasedReason)
	assert.Equal(t, domain.StatusFulfilled, order.Status)

	_, err = f.admin.ReleaseHoldManually(ctx, "ord_a1", "ops@crestline")
	assert.ErrorIs(t, err, domain.ErrAlreadyReleased)
}

func TestManualReleaseThenConfirmYieldsOneToken(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	ctx := context.Background()
	seedHeldOrder(t, f, "ord_a2")

	confirmation, err := f.confirmation.RequestConfirmation(ctx, "ord_a2", false)
	require.NoError(t, err)

	released, err := f.admin.ReleaseHoldManually(ctx, "ord_a2", "ops@crestline")
	require.NoError(t, err)

	// The customer clicks the mail link afterwards; they get the same
	// unlock, not a second one.
	confirmed, err := f.confirmation.Confirm(ctx, confirmation.Token)
	require.NoError(t, err)
	assert.Equal(t, released.UnlockToken, confirmed.UnlockToken)
	assert.True(t, confirmed.AlreadyFulfilled)
	assert.Equal(t, 1, f.fulfillments.count())
}

func TestRefundManually(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	ctx := context.Background()
	seedHeldOrder(t, f, "ord_a3")

	require.NoError(t, f.admin.RefundManually(ctx, "ord_a3", "ops@crestline"))
	assert.Equal(t, 1, f.refunds.callCount())

	order := f.order(t, "ord_a3")
	assert.Equal(t, domain.StatusRefunded, order.Status)
	assert.Equal(t, "manual_refund", order.HoldReleasedReason)

	// Refunding a refunded order is a no-op, not a second provider call.
	require.NoError(t, f.admin.RefundManually(ctx, "ord_a3", "ops@crestline"))
	assert.Equal(t, 1, f.refunds.callCount())
}

func TestRefundManuallyBeforeSettlement(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	f.seedOrder(t, &domain.Order{
		ID: "ord_a4", Provider: domain.ProviderCard, Status: domain.StatusPending,
		AmountMinor: 2000, Currency: "USD", ProductSKU: "sku-pro",
	})

	err := f.admin.RefundManually(context.Background(), "ord_a4", "ops@crestline")
	assert.ErrorIs(t, err, domain.ErrTxnNotSettled)
	assert.Equal(t, 0, f.refunds.callCount())
}

func TestEvidencePacket(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	ctx := context.Background()

	f.seedOrder(t, &domain.Order{
		ID: "ord_a5", Provider: domain.ProviderCard, Status: domain.StatusCreated,
		AmountMinor: 2000, Currency: "USD", ProductSKU: "sku-pro", CustomerEmail: "k@example.com",
	})
	_, err := f.ingest.ProcessWebhook(ctx, cardCompleted("evt_a5", "txn_a5", "ord_a5"))
	require.NoError(t, err)

	packet, err := f.admin.GetEvidencePacket(ctx, "ord_a5")
	require.NoError(t, err)
	assert.Equal(t, "ord_a5", packet.Order.ID)
	require.NotNil(t, packet.Fulfillment)
	assert.NotEmpty(t, packet.Fulfillment.UnlockToken)
	assert.NotEmpty(t, packet.Events)

	_, err = f.admin.GetEvidencePacket(ctx, "ord_missing")
	assert.ErrorIs(t, err, domain.ErrUnknownOrder)
}

func TestListHeldOrders(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	ctx := context.Background()
	seedHeldOrder(t, f, "ord_a6")
	f.seedOrder(t, &domain.Order{
		ID: "ord_a7", Provider: domain.ProviderCard, Status: domain.StatusCompleted,
		AmountMinor: 100, Currency: "USD", ProductSKU: "sku-pro",
	})

	held, err := f.admin.ListHeldOrders(ctx)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, "ord_a6", held[0].ID)
}
