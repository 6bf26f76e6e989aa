package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

type ConfirmationUsecase interface {
	RequestConfirmation(ctx context.Context, orderID string, force bool) (*domain.Confirmation, error)
	ConfirmationURL(c *domain.Confirmation) string
	Confirm(ctx context.Context, token string) (*FulfillmentResult, error)
}

type DefaultConfirmationUsecase struct {
	OrderRepo        domain.OrderRepository
	ConfirmationRepo domain.ConfirmationRepository
	Fulfillment      FulfillmentUsecase
	Recorder         *Recorder
	TokenTTL         time.Duration
	BaseURL          string
}

func NewDefaultConfirmationUsecase(
	orderRepo domain.OrderRepository,
	confirmationRepo domain.ConfirmationRepository,
	fulfillment FulfillmentUsecase,
	recorder *Recorder,
	tokenTTL time.Duration,
	baseURL string,
) *DefaultConfirmationUsecase {
	return &DefaultConfirmationUsecase{
		OrderRepo:        orderRepo,
		ConfirmationRepo: confirmationRepo,
		Fulfillment:      fulfillment,
		Recorder:         recorder,
		TokenTTL:         tokenTTL,
		BaseURL:          baseURL,
	}
}

// RequestConfirmation mints a single-use token for a held order. A second
// active token for the same order is refused unless forced (operator
// resend); forcing leaves the older token valid until expiry, consuming
// either one releases the order.
func (uc *DefaultConfirmationUsecase) RequestConfirmation(ctx context.Context, orderID string, force bool) (*domain.Confirmation, error) {
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Held() {
		return nil, fmt.Errorf("%w: order %s is not held", domain.ErrOrderNotCleared, orderID)
	}

	now := time.Now()
	if active, err := uc.ConfirmationRepo.GetActiveByOrderID(ctx, orderID, now); err != nil {
		return nil, err
	} else if active != nil && !force {
		return nil, domain.ErrConfirmationPending
	}

	tokenGen, err := nanoid.Standard(32)
	if err != nil {
		return nil, err
	}

	confirmation := &domain.Confirmation{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		Token:       tokenGen(),
		RequestedAt: now,
		ExpiresAt:   now.Add(uc.TokenTTL),
	}
	if err := uc.ConfirmationRepo.CreateConfirmation(ctx, confirmation); err != nil {
		return nil, err
	}

	uc.Recorder.Emit(ctx, order, domain.AuditConfirmationSent, map[string]string{"expires_at": confirmation.ExpiresAt.Format(time.RFC3339)})
	return confirmation, nil
}

func (uc *DefaultConfirmationUsecase) ConfirmationURL(c *domain.Confirmation) string {
	return fmt.Sprintf("%s/confirm?token=%s&order=%s", uc.BaseURL, c.Token, c.OrderID)
}

// Confirm consumes the token irreversibly and walks the order through
// release and fulfillment. Consume-then-fulfill may race with a manual
// release for the same order; both funnel into FulfillOnce, which is the
// single serialization point.
func (uc *DefaultConfirmationUsecase) Confirm(ctx context.Context, token string) (*FulfillmentResult, error) {
	confirmation, err := uc.ConfirmationRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if confirmation == nil {
		return nil, domain.ErrTokenUnknown
	}

	now := time.Now()
	if confirmation.Consumed() {
		return nil, domain.ErrTokenAlreadyConsumed
	}
	if confirmation.Expired(now) {
		return nil, domain.ErrTokenExpired
	}

	won, err := uc.ConfirmationRepo.Consume(ctx, confirmation.ID, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domain.ErrTokenAlreadyConsumed
	}

	order, err := uc.OrderRepo.GetOrderByID(ctx, confirmation.OrderID)
	if err != nil {
		return nil, err
	}

	if err := uc.OrderRepo.ReleaseHold(ctx, order.ID, "email_confirmed", domain.StatusCompleted); err != nil {
		// A concurrent manual release already cleared the hold. Either
		// way the order is cleared, so fall through to fulfillment.
		if !errors.Is(err, domain.ErrAlreadyReleased) {
			return nil, err
		}
	} else {
		uc.Recorder.Emit(ctx, order, domain.AuditFulfillmentReleased, map[string]string{"reason": "email_confirmed"})
	}

	uc.Recorder.Emit(ctx, order, domain.AuditConfirmationDone, nil)
	return uc.Fulfillment.FulfillOnce(ctx, order.ID)
}
