package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/usecase"
	"github.com/stretchr/testify/require"
)

// fixture wires the real usecases over the in-memory repositories, the
// way main assembles them over postgres.
type fixture struct {
	orders        *memOrderRepo
	audits        *memAuditRepo
	ledger        *memIngest
	confirmations *memConfirmationRepo
	fulfillments  *memFulfillmentRepo
	refunds       *fakeRefundConnector
	notifier      *fakeNotifier

	fulfillment    *usecase.DefaultFulfillmentUsecase
	confirmation   *usecase.DefaultConfirmationUsecase
	ingest         *usecase.DefaultIngestUsecase
	reconciliation *usecase.DefaultReconciliationUsecase
	admin          *usecase.DefaultOrderUsecase
}

func newFixture(scorer domain.RiskScorer) *fixture {
	f := &fixture{
		orders:        newMemOrderRepo(),
		audits:        newMemAuditRepo(),
		confirmations: newMemConfirmationRepo(),
		fulfillments:  newMemFulfillmentRepo(),
		refunds:       newFakeRefundConnector(),
		notifier:      &fakeNotifier{},
	}
	f.ledger = newMemIngest(f.orders, f.audits)

	recorder := usecase.NewRecorder(f.audits, fakePublisher{}, "order-lifecycle-events", nil)
	f.fulfillment = usecase.NewDefaultFulfillmentUsecase(f.orders, f.fulfillments, recorder, nil)
	f.confirmation = usecase.NewDefaultConfirmationUsecase(f.orders, f.confirmations, f.fulfillment, recorder, 48*time.Hour, "https://pay.example.com")
	f.ingest = usecase.NewDefaultIngestUsecase(f.orders, f.ledger, scorer, f.fulfillment, f.confirmation, f.notifier, recorder, nil)
	f.reconciliation = usecase.NewDefaultReconciliationUsecase(f.orders, f.refunds, recorder, nil, time.Hour, 100)
	f.admin = usecase.NewDefaultOrderUsecase(f.orders, f.fulfillments, f.audits, f.fulfillment, f.refunds, recorder, nil)
	return f
}

func (f *fixture) seedOrder(t *testing.T, order *domain.Order) *domain.Order {
	t.Helper()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
		order.UpdatedAt = order.CreatedAt
	}
	require.NoError(t, f.orders.CreateOrder(context.Background(), order))
	return order
}

func (f *fixture) order(t *testing.T, orderID string) *domain.Order {
	t.Helper()
	order, err := f.orders.GetOrderByID(context.Background(), orderID)
	require.NoError(t, err)
	return order
}
