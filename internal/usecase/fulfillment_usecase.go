package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

type FulfillmentResult struct {
	OrderID          string
	UnlockToken      string
	ProductSKU       string
	AlreadyFulfilled bool
}

type FulfillmentUsecase interface {
	FulfillOnce(ctx context.Context, orderID string) (*FulfillmentResult, error)
	Redeem(ctx context.Context, unlockToken string) (string, error)
	Revoke(ctx context.Context, orderID, reason string) error
}

type DefaultFulfillmentUsecase struct {
	OrderRepo       domain.OrderRepository
	FulfillmentRepo domain.FulfillmentRepository
	Recorder        *Recorder
	Metrics         *metrics.FulfillmentMetrics
}

func NewDefaultFulfillmentUsecase(
	orderRepo domain.OrderRepository,
	fulfillmentRepo domain.FulfillmentRepository,
	recorder *Recorder,
	m *metrics.FulfillmentMetrics,
) *DefaultFulfillmentUsecase {
	return &DefaultFulfillmentUsecase{
		OrderRepo:       orderRepo,
		FulfillmentRepo: fulfillmentRepo,
		Recorder:        recorder,
		Metrics:         m,
	}
}

// FulfillOnce issues the unlock token for a cleared order. The unique
// order_id constraint on the fulfillment row is the sole exactly-once
// mechanism: losing the insert race means someone already issued, so we
// read back and hand out the existing token.
func (uc *DefaultFulfillmentUsecase) FulfillOnce(ctx context.Context, orderID string) (*FulfillmentResult, error) {
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Cleared() {
		return nil, fmt.Errorf("%w: order %s status=%s held=%v", domain.ErrOrderNotCleared, orderID, order.Status, order.Held())
	}

	tokenGen, err := nanoid.Standard(21)
	if err != nil {
		return nil, err
	}

	fulfillment := &domain.Fulfillment{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		ProductSKU:  order.ProductSKU,
		UnlockToken: tokenGen(),
		DeliveredAt: time.Now(),
	}

	if err := uc.FulfillmentRepo.InsertFulfillment(ctx, fulfillment); err != nil {
		if errors.Is(err, domain.ErrFulfillmentExists) {
			existing, readErr := uc.FulfillmentRepo.GetByOrderID(ctx, order.ID)
			if readErr != nil {
				return nil, readErr
			}
			if existing == nil {
				return nil, fmt.Errorf("fulfillment row vanished for order %s", order.ID)
			}
			return &FulfillmentResult{
				OrderID:          order.ID,
				UnlockToken:      existing.UnlockToken,
				ProductSKU:       existing.ProductSKU,
				AlreadyFulfilled: true,
			}, nil
		}
		return nil, err
	}

	if order.Status == domain.StatusCompleted && domain.CanTransition(order.Status, domain.StatusFulfilled) {
		order.Status = domain.StatusFulfilled
		if err := uc.OrderRepo.UpdateOrder(ctx, order); err != nil {
			slog.Error("failed to mark order fulfilled", "order_id", order.ID, "error", err.Error())
		}
	}

	uc.Recorder.Emit(ctx, order, domain.AuditFulfillmentIssued, map[string]string{"product_sku": order.ProductSKU})
	if uc.Metrics != nil {
		uc.Metrics.FulfillmentsIssuedTotal.WithLabelValues(string(order.Provider)).Inc()
	}

	return &FulfillmentResult{
		OrderID:     order.ID,
		UnlockToken: fulfillment.UnlockToken,
		ProductSKU:  fulfillment.ProductSKU,
	}, nil
}

// Redeem resolves an unlock token to its product. Revoked and unknown
// tokens are kept distinguishable for HTTP codes, but the revoked message
// stays generic so dispute state never leaks to the bearer.
func (uc *DefaultFulfillmentUsecase) Redeem(ctx context.Context, unlockToken string) (string, error) {
	fulfillment, err := uc.FulfillmentRepo.GetByUnlockToken(ctx, unlockToken)
	if err != nil {
		return "", err
	}
	if fulfillment == nil {
		if uc.Metrics != nil {
			uc.Metrics.UnlockRedemptionsTotal.WithLabelValues("unknown").Inc()
		}
		return "", domain.ErrUnlockTokenUnknown
	}
	if fulfillment.Revoked() {
		order, err := uc.OrderRepo.GetOrderByID(ctx, fulfillment.OrderID)
		if err == nil {
			uc.Recorder.Emit(ctx, order, domain.AuditAccessDenied, map[string]string{"revoke_reason": fulfillment.RevokeReason})
		}
		if uc.Metrics != nil {
			uc.Metrics.UnlockRedemptionsTotal.WithLabelValues("revoked").Inc()
		}
		return "", domain.ErrUnlockTokenRevoked
	}

	if uc.Metrics != nil {
		uc.Metrics.UnlockRedemptionsTotal.WithLabelValues("ok").Inc()
	}
	return fulfillment.ProductSKU, nil
}

func (uc *DefaultFulfillmentUsecase) Revoke(ctx context.Context, orderID, reason string) error {
	if err := uc.FulfillmentRepo.Revoke(ctx, orderID, reason, time.Now()); err != nil {
		return err
	}
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	uc.Recorder.Emit(ctx, order, domain.AuditFulfillmentRevoked, map[string]string{"reason": reason})
	return nil
}
