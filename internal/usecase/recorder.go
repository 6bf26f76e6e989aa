package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	publisher "github.com/crestline-media/fulfillment-service/internal/infrastructure/kafka"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

// LifecyclePublisher is the analytics-topic boundary; the kafka publisher
// satisfies it in production.
type LifecyclePublisher interface {
	PublishLifecycle(topic string, event publisher.LifecycleEvent) error
}

// Recorder fans a lifecycle event out to the append-only audit log, the
// analytics topic and the structured log. The audit row is the durable
// record; publish failures are logged and swallowed.
type Recorder struct {
	Audits    domain.AuditEventRepository
	Publisher LifecyclePublisher
	Topic     string
	Metrics   *metrics.FulfillmentMetrics
}

func NewRecorder(audits domain.AuditEventRepository, pub LifecyclePublisher, topic string, m *metrics.FulfillmentMetrics) *Recorder {
	return &Recorder{Audits: audits, Publisher: pub, Topic: topic, Metrics: m}
}

func (r *Recorder) Emit(ctx context.Context, order *domain.Order, kind domain.AuditKind, detail map[string]string) {
	r.EmitTo(ctx, r.Audits, order, kind, detail)
}

// EmitTo writes the audit row through the given repository, which may be
// transaction-scoped; the kafka publish always happens outside any
// transaction semantics.
func (r *Recorder) EmitTo(ctx context.Context, audits domain.AuditEventRepository, order *domain.Order, kind domain.AuditKind, detail map[string]string) {
	detailJSON := "{}"
	if len(detail) > 0 {
		if b, err := json.Marshal(detail); err == nil {
			detailJSON = string(b)
		}
	}

	event := &domain.AuditEvent{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		Kind:      kind,
		Detail:    detailJSON,
		CreatedAt: time.Now(),
	}
	if err := audits.AppendEvent(ctx, event); err != nil {
		slog.Error("failed to append audit event", "order_id", order.ID, "kind", kind, "error", err.Error())
	}

	if r.Publisher != nil {
		lifecycle := publisher.LifecycleEvent{
			OrderID:     order.ID,
			Kind:        string(kind),
			Provider:    string(order.Provider),
			AmountMinor: order.AmountMinor,
			Currency:    order.Currency,
			ProductSKU:  order.ProductSKU,
			Attribution: order.Attribution,
			Detail:      detailJSON,
			OccurredAt:  event.CreatedAt,
		}
		go func() {
			if err := r.Publisher.PublishLifecycle(r.Topic, lifecycle); err != nil {
				slog.Error("failed to publish lifecycle event", "order_id", lifecycle.OrderID, "kind", lifecycle.Kind, "error", err.Error())
			}
		}()
	}

	slog.Info("order lifecycle event", "order_id", order.ID, "kind", kind)
}

// Anomaly records a business anomaly against the audit log and the admin
// listing, never back to the provider.
func (r *Recorder) Anomaly(ctx context.Context, audits domain.AuditEventRepository, order *domain.Order, reason string, detail map[string]string) {
	if detail == nil {
		detail = map[string]string{}
	}
	detail["reason"] = reason
	r.EmitTo(ctx, audits, order, domain.AuditAnomaly, detail)
	if r.Metrics != nil {
		r.Metrics.AnomaliesTotal.WithLabelValues(reason).Inc()
	}
}
