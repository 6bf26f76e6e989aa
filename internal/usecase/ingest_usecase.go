package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/metrics"
	"github.com/crestline-media/fulfillment-service/internal/providers"
	"github.com/google/uuid"
)

// ConfirmationNotifier delivers the confirmation link; the mail API
// client satisfies it in production.
type ConfirmationNotifier interface {
	SendConfirmationLink(ctx context.Context, toEmail, orderID, confirmationURL string) error
}

type WebhookResult struct {
	OrderID   string                  `json:"order_id"`
	Outcome   domain.CanonicalOutcome `json:"outcome"`
	Duplicate bool                    `json:"duplicate"`
}

type IngestUsecase interface {
	ProcessWebhook(ctx context.Context, event providers.ProviderEvent) (*WebhookResult, error)
	ResendConfirmation(ctx context.Context, orderID string) error
}

type DefaultIngestUsecase struct {
	OrderRepo     domain.OrderRepository
	Ingest        domain.IngestTx
	RiskScorer    domain.RiskScorer
	Fulfillment   FulfillmentUsecase
	Confirmations ConfirmationUsecase
	Notifier      ConfirmationNotifier
	Recorder      *Recorder
	Metrics       *metrics.FulfillmentMetrics
}

func NewDefaultIngestUsecase(
	orderRepo domain.OrderRepository,
	ingest domain.IngestTx,
	riskScorer domain.RiskScorer,
	fulfillment FulfillmentUsecase,
	confirmations ConfirmationUsecase,
	notifier ConfirmationNotifier,
	recorder *Recorder,
	m *metrics.FulfillmentMetrics,
) *DefaultIngestUsecase {
	return &DefaultIngestUsecase{
		OrderRepo:     orderRepo,
		Ingest:        ingest,
		RiskScorer:    riskScorer,
		Fulfillment:   fulfillment,
		Confirmations: confirmations,
		Notifier:      notifier,
		Recorder:      recorder,
		Metrics:       m,
	}
}

func statusFor(outcome domain.CanonicalOutcome) domain.OrderStatus {
	switch outcome {
	case domain.OutcomePaymentCompleted:
		return domain.StatusCompleted
	case domain.OutcomePaymentFailed:
		return domain.StatusFailed
	case domain.OutcomePaymentPending:
		return domain.StatusPending
	case domain.OutcomeRefundIssued:
		return domain.StatusRefunded
	case domain.OutcomeChargebackReceived:
		return domain.StatusDisputed
	}
	return ""
}

// ProcessWebhook is the single entry for verified provider events. The
// ledger row and the order mutation commit in one transaction; replays
// and concurrent redeliveries short-circuit to the recorded outcome.
func (uc *DefaultIngestUsecase) ProcessWebhook(ctx context.Context, event providers.ProviderEvent) (*WebhookResult, error) {
	outcome, err := event.Outcome()
	if err != nil {
		return nil, err
	}

	if prior, err := uc.Ingest.GetEvent(ctx, event.Provider(), event.EventID()); err != nil {
		return nil, err
	} else if prior != nil {
		return uc.replay(ctx, prior), nil
	}

	order, err := uc.resolveOrder(ctx, event)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownOrder) {
			return uc.recordUnmatched(ctx, event, outcome)
		}
		return nil, err
	}

	ledgerEvent := &domain.WebhookEvent{
		ID:              uuid.NewString(),
		Provider:        event.Provider(),
		ProviderEventID: event.EventID(),
		EventType:       event.EventType(),
		OrderID:         order.ID,
		Outcome:         outcome,
		FirstSeenAt:     time.Now(),
	}

	var decision domain.RiskDecision
	var riskScore float64

	err = uc.Ingest.RecordAndApply(ctx, ledgerEvent, func(orders domain.OrderRepository, audits domain.AuditEventRepository) error {
		fresh, err := orders.GetOrderByID(ctx, order.ID)
		if err != nil {
			return err
		}

		// provider_txn_id attaches once at settlement and then correlates
		// refunds and disputes arriving under new event ids.
		if fresh.ProviderTxnID == "" && event.TxnID() != "" {
			fresh.ProviderTxnID = event.TxnID()
		}

		target := statusFor(outcome)
		if fresh.Status == target {
			return orders.UpdateOrder(ctx, fresh)
		}
		if !domain.CanTransition(fresh.Status, target) {
			uc.Recorder.Anomaly(ctx, audits, fresh, "illegal_transition", map[string]string{
				"from":       string(fresh.Status),
				"to":         string(target),
				"event_type": event.EventType(),
			})
			// Prior state preserved; the ledger row still commits so the
			// replay of this delivery stays a no-op.
			return orders.UpdateOrder(ctx, fresh)
		}

		fresh.Status = target

		switch outcome {
		case domain.OutcomePaymentCompleted:
			riskScore, decision = uc.RiskScorer.Score(domain.Snapshot(fresh))
			fresh.RiskScore = riskScore
			fresh.RiskDecision = decision
			uc.Recorder.EmitTo(ctx, audits, fresh, domain.AuditPaymentCompleted, map[string]string{"event_type": event.EventType()})
			uc.Recorder.EmitTo(ctx, audits, fresh, domain.AuditRiskAssessed, map[string]string{
				"score":    fmt.Sprintf("%.2f", riskScore),
				"decision": string(decision),
			})
			if decision != domain.DecisionAllow {
				now := time.Now()
				fresh.HeldAt = &now
				uc.Recorder.EmitTo(ctx, audits, fresh, domain.AuditFulfillmentHeld, map[string]string{"decision": string(decision)})
			}
		case domain.OutcomePaymentPending:
			uc.Recorder.EmitTo(ctx, audits, fresh, domain.AuditPaymentPending, map[string]string{"event_type": event.EventType()})
		case domain.OutcomePaymentFailed:
			uc.Recorder.EmitTo(ctx, audits, fresh, domain.AuditPaymentFailed, map[string]string{"event_type": event.EventType()})
		case domain.OutcomeRefundIssued:
			if fresh.Held() {
				now := time.Now()
				fresh.HoldReleasedAt = &now
				fresh.HoldReleasedReason = "provider_refund"
			}
			uc.Recorder.EmitTo(ctx, audits, fresh, domain.AuditOrderRefunded, map[string]string{"event_type": event.EventType()})
		case domain.OutcomeChargebackReceived:
			uc.Recorder.EmitTo(ctx, audits, fresh, domain.AuditChargebackReceived, map[string]string{"event_type": event.EventType()})
		}

		return orders.UpdateOrder(ctx, fresh)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEvent) {
			// Lost the ledger insert race to a concurrent redelivery.
			prior, readErr := uc.Ingest.GetEvent(ctx, event.Provider(), event.EventID())
			if readErr != nil || prior == nil {
				return nil, fmt.Errorf("duplicate event lookup: %v", readErr)
			}
			return uc.replay(ctx, prior), nil
		}
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.CanonicalOutcomesTotal.WithLabelValues(string(event.Provider()), string(outcome)).Inc()
	}

	uc.applySideEffects(ctx, order.ID, outcome, decision)

	return &WebhookResult{OrderID: order.ID, Outcome: outcome}, nil
}

// replay answers a duplicate delivery from the ledger. If the first
// processing committed a cleared completed order but crashed before the
// unlock was issued, the redelivery converges by re-attempting the
// idempotent fulfillment.
func (uc *DefaultIngestUsecase) replay(ctx context.Context, prior *domain.WebhookEvent) *WebhookResult {
	if uc.Metrics != nil {
		uc.Metrics.WebhooksDuplicateTotal.WithLabelValues(string(prior.Provider)).Inc()
	}
	if prior.Outcome == domain.OutcomePaymentCompleted && prior.OrderID != "" {
		uc.ensureFulfilled(ctx, prior.OrderID)
	}
	return &WebhookResult{OrderID: prior.OrderID, Outcome: prior.Outcome, Duplicate: true}
}

func (uc *DefaultIngestUsecase) ensureFulfilled(ctx context.Context, orderID string) {
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil || !order.Cleared() {
		return
	}
	if _, err := uc.Fulfillment.FulfillOnce(ctx, orderID); err != nil {
		slog.Error("fulfillment retry on replay failed", "order_id", orderID, "error", err.Error())
	}
}

// resolveOrder correlates the event to an order: by our order id hint,
// then by the settled provider transaction id, finally creating the
// order from webhook data when the intent call never landed.
func (uc *DefaultIngestUsecase) resolveOrder(ctx context.Context, event providers.ProviderEvent) (*domain.Order, error) {
	if hint := event.OrderHint(); hint != "" {
		order, err := uc.OrderRepo.GetOrderByID(ctx, hint)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, domain.ErrUnknownOrder) {
			return nil, err
		}
	}

	if txnID := event.TxnID(); txnID != "" {
		order, err := uc.OrderRepo.GetOrderByProviderTxnID(ctx, event.Provider(), txnID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, domain.ErrUnknownOrder) {
			return nil, err
		}
	}

	amountMinor, currency, productSKU, customerEmail := event.CheckoutDetails()
	if amountMinor <= 0 || productSKU == "" {
		return nil, domain.ErrUnknownOrder
	}

	// Some providers notify before intent-creation completes; create the
	// order from the webhook so the payment is not lost.
	id := event.OrderHint()
	if id == "" {
		id = uuid.NewString()
	}
	order := &domain.Order{
		ID:            id,
		Provider:      event.Provider(),
		Status:        domain.StatusCreated,
		AmountMinor:   amountMinor,
		Currency:      currency,
		ProductSKU:    productSKU,
		CustomerEmail: customerEmail,
		Attribution:   event.Attribution(),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := uc.OrderRepo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	slog.Warn("order created from webhook, intent never arrived",
		"order_id", order.ID, "provider", event.Provider(), "event_type", event.EventType())
	return order, nil
}

// recordUnmatched writes only the ledger row for an event that cannot be
// correlated to any order, so replays short-circuit. The anomaly goes to
// the log and metrics, never back to the provider.
func (uc *DefaultIngestUsecase) recordUnmatched(ctx context.Context, event providers.ProviderEvent, outcome domain.CanonicalOutcome) (*WebhookResult, error) {
	ledgerEvent := &domain.WebhookEvent{
		ID:              uuid.NewString(),
		Provider:        event.Provider(),
		ProviderEventID: event.EventID(),
		EventType:       event.EventType(),
		Outcome:         outcome,
		FirstSeenAt:     time.Now(),
	}
	err := uc.Ingest.RecordAndApply(ctx, ledgerEvent, func(domain.OrderRepository, domain.AuditEventRepository) error {
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEvent) {
			prior, readErr := uc.Ingest.GetEvent(ctx, event.Provider(), event.EventID())
			if readErr != nil || prior == nil {
				return nil, fmt.Errorf("duplicate event lookup: %v", readErr)
			}
			return uc.replay(ctx, prior), nil
		}
		return nil, err
	}

	slog.Warn("webhook for unknown order",
		"provider", event.Provider(), "event_type", event.EventType(), "provider_event_id", event.EventID())
	if uc.Metrics != nil {
		uc.Metrics.AnomaliesTotal.WithLabelValues("unknown_order").Inc()
	}
	return &WebhookResult{Outcome: outcome}, nil
}

// applySideEffects runs the non-transactional work after commit. All of
// it is convergent: fulfillment and revocation are idempotent, and the
// confirmation mail can be re-sent by an operator.
func (uc *DefaultIngestUsecase) applySideEffects(ctx context.Context, orderID string, outcome domain.CanonicalOutcome, decision domain.RiskDecision) {
	switch outcome {
	case domain.OutcomePaymentCompleted:
		switch decision {
		case domain.DecisionAllow:
			if _, err := uc.Fulfillment.FulfillOnce(ctx, orderID); err != nil {
				slog.Error("fulfillment after completion failed", "order_id", orderID, "error", err.Error())
			}
		case domain.DecisionEmailConfirm:
			if uc.Metrics != nil {
				uc.Metrics.HoldsPlacedTotal.WithLabelValues(string(decision)).Inc()
			}
			uc.sendConfirmation(ctx, orderID, false)
		case domain.DecisionManualHold:
			if uc.Metrics != nil {
				uc.Metrics.HoldsPlacedTotal.WithLabelValues(string(decision)).Inc()
			}
		}
	case domain.OutcomeRefundIssued:
		if err := uc.Fulfillment.Revoke(ctx, orderID, "refund_issued"); err != nil {
			slog.Error("revoke after refund failed", "order_id", orderID, "error", err.Error())
		}
	case domain.OutcomeChargebackReceived:
		if err := uc.Fulfillment.Revoke(ctx, orderID, "chargeback"); err != nil {
			slog.Error("revoke after chargeback failed", "order_id", orderID, "error", err.Error())
		}
	}
}

// ResendConfirmation is the operator path for lost confirmation mail. It
// forces a fresh token past the single-active-token rule.
func (uc *DefaultIngestUsecase) ResendConfirmation(ctx context.Context, orderID string) error {
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Held() {
		return domain.ErrAlreadyReleased
	}
	uc.sendConfirmation(ctx, orderID, true)
	return nil
}

func (uc *DefaultIngestUsecase) sendConfirmation(ctx context.Context, orderID string, force bool) {
	confirmation, err := uc.Confirmations.RequestConfirmation(ctx, orderID, force)
	if err != nil {
		slog.Error("confirmation request failed", "order_id", orderID, "error", err.Error())
		return
	}
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		slog.Error("confirmation order lookup failed", "order_id", orderID, "error", err.Error())
		return
	}
	if order.CustomerEmail == "" {
		slog.Warn("held order has no customer email, operator follow-up required", "order_id", orderID)
		return
	}
	url := uc.Confirmations.ConfirmationURL(confirmation)
	if err := uc.Notifier.SendConfirmationLink(ctx, order.CustomerEmail, orderID, url); err != nil {
		slog.Error("confirmation mail failed, resend available to operators", "order_id", orderID, "error", err.Error())
	}
}
