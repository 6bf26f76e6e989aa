package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	publisher "github.com/crestline-media/fulfillment-service/internal/infrastructure/kafka"
)

// In-memory repositories emulating the storage-level unique constraints
// the real postgres repositories rely on.

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*domain.Order)}
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	return &c
}

func (r *memOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *memOrderRepo) GetOrderByID(_ context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrUnknownOrder
	}
	return cloneOrder(order), nil
}

func (r *memOrderRepo) GetOrderByProviderTxnID(_ context.Context, provider domain.Provider, txnID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.Provider == provider && order.ProviderTxnID == txnID {
			return cloneOrder(order), nil
		}
	}
	return nil, domain.ErrUnknownOrder
}

func (r *memOrderRepo) UpdateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *memOrderRepo) ReleaseHold(_ context.Context, orderID, reason string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrUnknownOrder
	}
	if order.HeldAt == nil || order.HoldReleasedAt != nil {
		return domain.ErrAlreadyReleased
	}
	now := time.Now()
	order.HoldReleasedAt = &now
	order.HoldReleasedReason = reason
	order.Status = status
	order.UpdatedAt = now
	return nil
}

func (r *memOrderRepo) FindStaleConfirmationHolds(_ context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		if order.HeldAt != nil && order.HoldReleasedAt == nil &&
			order.RiskDecision == domain.DecisionEmailConfirm &&
			order.HeldAt.Before(cutoff) {
			out = append(out, cloneOrder(order))
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindHeldOrders(_ context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		if order.HeldAt != nil && order.HoldReleasedAt == nil {
			out = append(out, cloneOrder(order))
		}
	}
	return out, nil
}

type memAuditRepo struct {
	mu     sync.Mutex
	events []*domain.AuditEvent
}

func newMemAuditRepo() *memAuditRepo {
	return &memAuditRepo{}
}

func (r *memAuditRepo) AppendEvent(_ context.Context, e *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *memAuditRepo) ListByOrderID(_ context.Context, orderID string) ([]*domain.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditEvent
	for _, e := range r.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memAuditRepo) kinds(orderID string) []domain.AuditKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditKind
	for _, e := range r.events {
		if e.OrderID == orderID {
			out = append(out, e.Kind)
		}
	}
	return out
}

// memIngest backs the idempotency ledger and emulates the transactional
// record-and-apply: on apply failure the order store rolls back too.
type memIngest struct {
	mu     sync.Mutex
	ledger map[string]*domain.WebhookEvent
	orders *memOrderRepo
	audits *memAuditRepo
}

func newMemIngest(orders *memOrderRepo, audits *memAuditRepo) *memIngest {
	return &memIngest{
		ledger: make(map[string]*domain.WebhookEvent),
		orders: orders,
		audits: audits,
	}
}

func ledgerKey(provider domain.Provider, eventID string) string {
	return string(provider) + "/" + eventID
}

func (r *memIngest) GetEvent(_ context.Context, provider domain.Provider, providerEventID string) (*domain.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.ledger[ledgerKey(provider, providerEventID)]
	if !ok {
		return nil, nil
	}
	c := *event
	return &c, nil
}

func (r *memIngest) RecordAndApply(
	ctx context.Context,
	event *domain.WebhookEvent,
	apply func(orders domain.OrderRepository, audits domain.AuditEventRepository) error,
) error {
	r.mu.Lock()
	key := ledgerKey(event.Provider, event.ProviderEventID)
	if _, exists := r.ledger[key]; exists {
		r.mu.Unlock()
		return domain.ErrDuplicateEvent
	}
	c := *event
	r.ledger[key] = &c

	snapshot := make(map[string]*domain.Order, len(r.orders.orders))
	r.orders.mu.Lock()
	for id, order := range r.orders.orders {
		snapshot[id] = order
	}
	r.orders.mu.Unlock()
	r.mu.Unlock()

	if err := apply(r.orders, r.audits); err != nil {
		r.mu.Lock()
		delete(r.ledger, key)
		r.orders.mu.Lock()
		r.orders.orders = snapshot
		r.orders.mu.Unlock()
		r.mu.Unlock()
		return err
	}
	return nil
}

type memConfirmationRepo struct {
	mu            sync.Mutex
	confirmations map[string]*domain.Confirmation
}

func newMemConfirmationRepo() *memConfirmationRepo {
	return &memConfirmationRepo{confirmations: make(map[string]*domain.Confirmation)}
}

func (r *memConfirmationRepo) CreateConfirmation(_ context.Context, c *domain.Confirmation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.confirmations[c.ID] = &clone
	return nil
}

func (r *memConfirmationRepo) GetByToken(_ context.Context, token string) (*domain.Confirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.confirmations {
		if c.Token == token {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memConfirmationRepo) GetActiveByOrderID(_ context.Context, orderID string, now time.Time) (*domain.Confirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.confirmations {
		if c.OrderID == orderID && c.ConfirmedAt == nil && c.ExpiresAt.After(now) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memConfirmationRepo) Consume(_ context.Context, confirmationID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.confirmations[confirmationID]
	if !ok || c.ConfirmedAt != nil {
		return false, nil
	}
	c.ConfirmedAt = &at
	return true, nil
}

type memFulfillmentRepo struct {
	mu      sync.Mutex
	byOrder map[string]*domain.Fulfillment
}

func newMemFulfillmentRepo() *memFulfillmentRepo {
	return &memFulfillmentRepo{byOrder: make(map[string]*domain.Fulfillment)}
}

func (r *memFulfillmentRepo) InsertFulfillment(_ context.Context, f *domain.Fulfillment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byOrder[f.OrderID]; exists {
		return domain.ErrFulfillmentExists
	}
	clone := *f
	r.byOrder[f.OrderID] = &clone
	return nil
}

func (r *memFulfillmentRepo) GetByOrderID(_ context.Context, orderID string) (*domain.Fulfillment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	clone := *f
	return &clone, nil
}

func (r *memFulfillmentRepo) GetByUnlockToken(_ context.Context, token string) (*domain.Fulfillment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.byOrder {
		if f.UnlockToken == token {
			clone := *f
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memFulfillmentRepo) Revoke(_ context.Context, orderID, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byOrder[orderID]
	if !ok || f.RevokedAt != nil {
		return nil
	}
	f.RevokedAt = &at
	f.RevokeReason = reason
	return nil
}

func (r *memFulfillmentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byOrder)
}

type fakeRefundConnector struct {
	mu       sync.Mutex
	calls    []string
	failNext map[string]error
}

func newFakeRefundConnector() *fakeRefundConnector {
	return &fakeRefundConnector{failNext: make(map[string]error)}
}

func (c *fakeRefundConnector) Refund(_ context.Context, _ domain.Provider, providerTxnID string, _ int64, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, providerTxnID)
	if err, ok := c.failNext[providerTxnID]; ok {
		delete(c.failNext, providerTxnID)
		return err
	}
	return nil
}

func (c *fakeRefundConnector) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *fakeNotifier) SendConfirmationLink(_ context.Context, _, orderID, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, orderID)
	return nil
}

func (n *fakeNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakePublisher struct{}

func (fakePublisher) PublishLifecycle(string, publisher.LifecycleEvent) error { return nil }

// fixedScorer pins the risk verdict for a test.
type fixedScorer struct {
	score    float64
	decision domain.RiskDecision
}

func (s fixedScorer) Score(domain.OrderSnapshot) (float64, domain.RiskDecision) {
	return s.score, s.decision
}
