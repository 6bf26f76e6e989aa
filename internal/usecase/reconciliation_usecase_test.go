package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStaleHold(t *testing.T, f *fixture, orderID string, age time.Duration) {
	t.Helper()
	heldAt := time.Now().Add(-age)
	f.seedOrder(t, &domain.Order{
		ID: orderID, Provider: domain.ProviderCard, ProviderTxnID: "txn_" + orderID,
		Status: domain.StatusCompleted, AmountMinor: 9900, Currency: "USD",
		ProductSKU: "sku-team", CustomerEmail: "stale@example.com",
		RiskDecision: domain.DecisionEmailConfirm, HeldAt: &heldAt,
	})
}

func TestSweepRefundsStaleConfirmationHold(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	ctx := context.Background()
	seedStaleHold(t, f, "ord_s1", 2*time.Hour) // fixture hold timeout is 1h

	report, err := f.reconciliation.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Candidates)
	assert.Equal(t, 1, report.Refunded)
	assert.Equal(t, 1, f.refunds.callCount())

	order := f.order(t, "ord_s1")
	assert.Equal(t, domain.StatusRefunded, order.Status)
	assert.False(t, order.Held())
	assert.Equal(t, domain.HoldReasonAutoRefund, order.HoldReleasedReason)
	assert.Equal(t, 0, f.fulfillments.count())
	assert.Contains(t, f.audits.kinds("ord_s1"), domain.AuditOrderRefunded)
}

func TestSweepTwiceRefundsOnce(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	ctx := context.Background()
	seedStaleHold(t, f, "ord_s2", 3*time.Hour)

	first, err := f.reconciliation.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Refunded)

	second, err := f.reconciliation.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Candidates)
	assert.Equal(t, 1, f.refunds.callCount())
}

func TestSweepRefundFailureRetriedNextCycle(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	ctx := context.Background()
	seedStaleHold(t, f, "ord_s3", 2*time.Hour)
	f.refunds.failNext["txn_ord_s3"] = errors.New("gateway 502")

	report, err := f.reconciliation.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 0, report.Refunded)

	// The hold is untouched, so the next cycle picks it up again.
	order := f.order(t, "ord_s3")
	assert.True(t, order.Held())
	assert.Equal(t, domain.StatusCompleted, order.Status)

	report, err = f.reconciliation.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Refunded)
	assert.Equal(t, domain.StatusRefunded, f.order(t, "ord_s3").Status)
}

func TestSweepSkipsHoldWithoutTxn(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	ctx := context.Background()

	heldAt := time.Now().Add(-2 * time.Hour)
	f.seedOrder(t, &domain.Order{
		ID: "ord_s4", Provider: domain.ProviderCard, Status: domain.StatusCompleted,
		AmountMinor: 9900, Currency: "USD", ProductSKU: "sku-team",
		RiskDecision: domain.DecisionEmailConfirm, HeldAt: &heldAt,
	})

	report, err := f.reconciliation.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, f.refunds.callCount())
	assert.True(t, f.order(t, "ord_s4").Held())
	assert.Contains(t, f.audits.kinds("ord_s4"), domain.AuditAnomaly)
}

func TestSweepIgnoresFreshAndManualHolds(t *testing.T) {
	f := newFixture(fixedScorer{decision: domain.DecisionAllow})
	ctx := context.Background()

	// Fresh email-confirmation hold, still inside the window.
	seedStaleHold(t, f, "ord_s5", 10*time.Minute)

	// Manual holds are for operators, never auto-refunded.
	heldAt := time.Now().Add(-5 * time.Hour)
	f.seedOrder(t, &domain.Order{
		ID: "ord_s6", Provider: domain.ProviderCard, ProviderTxnID: "txn_ord_s6",
		Status: domain.StatusCompleted, AmountMinor: 200000, Currency: "USD",
		ProductSKU: "sku-ent", RiskDecision: domain.DecisionManualHold, HeldAt: &heldAt,
	})

	report, err := f.reconciliation.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Candidates)
	assert.Equal(t, 0, f.refunds.callCount())
}
