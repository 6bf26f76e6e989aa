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

type DefaultFulfillmentRepository struct {
	DB *gorm.DB
}

func NewDefaultFulfillmentRepository(db *gorm.DB) *DefaultFulfillmentRepository {
	return &DefaultFulfillmentRepository{DB: db}
}

func (r *DefaultFulfillmentRepository) InsertFulfillment(ctx context.Context, f *domain.Fulfillment) error {
	err := r.DB.WithContext(ctx).Create(mappers.ToGORMFulfillment(f)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrFulfillmentExists
	}
	return err
}

func (r *DefaultFulfillmentRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Fulfillment, error) {
	var model models.FulfillmentModel
	if err := r.DB.WithContext(ctx).First(&model, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mappers.ToDomainFulfillment(&model), nil
}

func (r *DefaultFulfillmentRepository) GetByUnlockToken(ctx context.Context, token string) (*domain.Fulfillment, error) {
	var model models.FulfillmentModel
	if err := r.DB.WithContext(ctx).First(&model, "unlock_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mappers.ToDomainFulfillment(&model), nil
}

func (r *DefaultFulfillmentRepository) Revoke(ctx context.Context, orderID, reason string, at time.Time) error {
	return r.DB.WithContext(ctx).
		Model(&models.FulfillmentModel{}).
		Where("order_id = ? AND revoked_at IS NULL", orderID).
		Updates(map[string]interface{}{
			"revoked_at":    at,
			"revoke_reason": reason,
		}).Error
}
