package repository

import (
	"context"
	"errors"
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	orderModel := mappers.ToGORMOrder(order)
	if err := r.DB.WithContext(ctx).Create(orderModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnknownOrder
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) GetOrderByProviderTxnID(ctx context.Context, provider domain.Provider, txnID string) (*domain.Order, error) {
	var order models.OrderModel
	err := r.DB.WithContext(ctx).
		First(&order, "provider = ? AND provider_txn_id = ?", provider, txnID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnknownOrder
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) UpdateOrder(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = time.Now()
	return r.DB.WithContext(ctx).Save(mappers.ToGORMOrder(order)).Error
}

// ReleaseHold is a conditional update: only a still-unresolved hold is
// released. RowsAffected distinguishes the winner from late callers, so
// concurrent sweeps and operators cannot double-release.
func (r *DefaultOrderRepository) ReleaseHold(ctx context.Context, orderID, reason string, status domain.OrderStatus) error {
	now := time.Now()
	res := r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND held_at IS NOT NULL AND hold_released_at IS NULL", orderID).
		Updates(map[string]interface{}{
			"hold_released_at":     now,
			"hold_released_reason": reason,
			"status":               status,
			"updated_at":           now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyReleased
	}
	return nil
}

func (r *DefaultOrderRepository) FindStaleConfirmationHolds(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	err := r.DB.WithContext(ctx).
		Where("held_at IS NOT NULL AND hold_released_at IS NULL").
		Where("risk_decision = ?", domain.DecisionEmailConfirm).
		Where("held_at < ?", cutoff).
		Order("held_at ASC").
		Limit(limit).
		Find(&orderModels).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(orderModels))
	for i := range orderModels {
		orders = append(orders, mappers.ToDomainOrder(&orderModels[i]))
	}
	return orders, nil
}

func (r *DefaultOrderRepository) FindHeldOrders(ctx context.Context) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	err := r.DB.WithContext(ctx).
		Where("held_at IS NOT NULL AND hold_released_at IS NULL").
		Order("held_at ASC").
		Find(&orderModels).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(orderModels))
	for i := range orderModels {
		orders = append(orders, mappers.ToDomainOrder(&orderModels[i]))
	}
	return orders, nil
}
