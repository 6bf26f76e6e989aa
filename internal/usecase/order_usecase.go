package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/metrics"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/refund"
	"github.com/google/uuid"
)

type CreateIntentInput struct {
	Provider      domain.Provider
	AmountMinor   int64
	Currency      string
	ProductSKU    string
	CustomerEmail string
	Attribution   string
}

type IntentOutput struct {
	OrderID string `json:"order_id"`
	// ProviderMetadata is embedded into the provider's native checkout
	// call so later webhooks correlate back to this order.
	ProviderMetadata map[string]string `json:"provider_metadata"`
}

// EvidencePacket is everything recorded for an order, assembled for a
// dispute response.
type EvidencePacket struct {
	Order       *domain.Order        `json:"order"`
	Fulfillment *domain.Fulfillment  `json:"fulfillment,omitempty"`
	Events      []*domain.AuditEvent `json:"events"`
}

type OrderUsecase interface {
	CreateIntent(ctx context.Context, input *CreateIntentInput) (*IntentOutput, error)
	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	ListHeldOrders(ctx context.Context) ([]*domain.Order, error)
	GetEvidencePacket(ctx context.Context, orderID string) (*EvidencePacket, error)
	ReleaseHoldManually(ctx context.Context, orderID, operator string) (*FulfillmentResult, error)
	RefundManually(ctx context.Context, orderID, operator string) error
}

type DefaultOrderUsecase struct {
	OrderRepo       domain.OrderRepository
	FulfillmentRepo domain.FulfillmentRepository
	AuditRepo       domain.AuditEventRepository
	Fulfillment     FulfillmentUsecase
	Refunds         refund.Connector
	Recorder        *Recorder
	Metrics         *metrics.FulfillmentMetrics
}

func NewDefaultOrderUsecase(
	orderRepo domain.OrderRepository,
	fulfillmentRepo domain.FulfillmentRepository,
	auditRepo domain.AuditEventRepository,
	fulfillment FulfillmentUsecase,
	refunds refund.Connector,
	recorder *Recorder,
	m *metrics.FulfillmentMetrics,
) *DefaultOrderUsecase {
	return &DefaultOrderUsecase{
		OrderRepo:       orderRepo,
		FulfillmentRepo: fulfillmentRepo,
		AuditRepo:       auditRepo,
		Fulfillment:     fulfillment,
		Refunds:         refunds,
		Recorder:        recorder,
		Metrics:         m,
	}
}

func (uc *DefaultOrderUsecase) CreateIntent(ctx context.Context, input *CreateIntentInput) (*IntentOutput, error) {
	switch input.Provider {
	case domain.ProviderCard, domain.ProviderWallet, domain.ProviderCrypto:
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrMalformedPayload, input.Provider)
	}
	if input.AmountMinor <= 0 || input.Currency == "" || input.ProductSKU == "" {
		return nil, fmt.Errorf("%w: amount, currency and product_sku are required", domain.ErrMalformedPayload)
	}

	order := &domain.Order{
		ID:            uuid.NewString(),
		Provider:      input.Provider,
		Status:        domain.StatusCreated,
		AmountMinor:   input.AmountMinor,
		Currency:      input.Currency,
		ProductSKU:    input.ProductSKU,
		CustomerEmail: input.CustomerEmail,
		Attribution:   input.Attribution,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := uc.OrderRepo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	return &IntentOutput{
		OrderID: order.ID,
		ProviderMetadata: map[string]string{
			"order_id":    order.ID,
			"product_sku": order.ProductSKU,
		},
	}, nil
}

func (uc *DefaultOrderUsecase) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return uc.OrderRepo.GetOrderByID(ctx, orderID)
}

func (uc *DefaultOrderUsecase) ListHeldOrders(ctx context.Context) ([]*domain.Order, error) {
	return uc.OrderRepo.FindHeldOrders(ctx)
}

func (uc *DefaultOrderUsecase) GetEvidencePacket(ctx context.Context, orderID string) (*EvidencePacket, error) {
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	fulfillment, err := uc.FulfillmentRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	events, err := uc.AuditRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &EvidencePacket{Order: order, Fulfillment: fulfillment, Events: events}, nil
}

// ReleaseHoldManually clears a hold on operator authority and issues the
// unlock. It may race a pending confirmation for the same order; both
// paths end in FulfillOnce, so at most one token exists either way.
func (uc *DefaultOrderUsecase) ReleaseHoldManually(ctx context.Context, orderID, operator string) (*FulfillmentResult, error) {
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Held() {
		return nil, domain.ErrAlreadyReleased
	}

	if err := uc.OrderRepo.ReleaseHold(ctx, orderID, "manual_release", domain.StatusCompleted); err != nil {
		if !errors.Is(err, domain.ErrAlreadyReleased) {
			return nil, err
		}
	} else {
		uc.Recorder.Emit(ctx, order, domain.AuditFulfillmentReleased, map[string]string{
			"reason":   "manual_release",
			"operator": operator,
		})
		if uc.Metrics != nil {
			uc.Metrics.HoldsReleasedTotal.WithLabelValues("manual_release").Inc()
		}
	}

	return uc.Fulfillment.FulfillOnce(ctx, orderID)
}

func (uc *DefaultOrderUsecase) RefundManually(ctx context.Context, orderID, operator string) error {
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.ProviderTxnID == "" {
		return domain.ErrTxnNotSettled
	}
	if order.Status == domain.StatusRefunded {
		return nil
	}
	if !order.Held() && !domain.CanTransition(order.Status, domain.StatusRefunded) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, order.Status, domain.StatusRefunded)
	}

	if err := uc.Refunds.Refund(ctx, order.Provider, order.ProviderTxnID, order.AmountMinor, order.Currency); err != nil {
		return err
	}

	if order.Held() {
		err = uc.OrderRepo.ReleaseHold(ctx, orderID, "manual_refund", domain.StatusRefunded)
		if err != nil && !errors.Is(err, domain.ErrAlreadyReleased) {
			return err
		}
		if uc.Metrics != nil {
			uc.Metrics.HoldsReleasedTotal.WithLabelValues("manual_refund").Inc()
		}
	} else {
		order.Status = domain.StatusRefunded
		if err := uc.OrderRepo.UpdateOrder(ctx, order); err != nil {
			return err
		}
	}

	uc.Recorder.Emit(ctx, order, domain.AuditOrderRefunded, map[string]string{
		"reason":   "manual_refund",
		"operator": operator,
	})
	return nil
}
