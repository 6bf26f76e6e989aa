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

type DefaultConfirmationRepository struct {
	DB *gorm.DB
}

func NewDefaultConfirmationRepository(db *gorm.DB) *DefaultConfirmationRepository {
	return &DefaultConfirmationRepository{DB: db}
}

func (r *DefaultConfirmationRepository) CreateConfirmation(ctx context.Context, c *domain.Confirmation) error {
	return r.DB.WithContext(ctx).Create(mappers.ToGORMConfirmation(c)).Error
}

func (r *DefaultConfirmationRepository) GetByToken(ctx context.Context, token string) (*domain.Confirmation, error) {
	var model models.ConfirmationModel
	if err := r.DB.WithContext(ctx).First(&model, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mappers.ToDomainConfirmation(&model), nil
}

func (r *DefaultConfirmationRepository) GetActiveByOrderID(ctx context.Context, orderID string, now time.Time) (*domain.Confirmation, error) {
	var model models.ConfirmationModel
	err := r.DB.WithContext(ctx).
		Where("order_id = ? AND confirmed_at IS NULL AND expires_at > ?", orderID, now).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mappers.ToDomainConfirmation(&model), nil
}

// Consume marks the token confirmed only while it is still unconsumed;
// losing a consume race reports ok=false rather than an error.
func (r *DefaultConfirmationRepository) Consume(ctx context.Context, confirmationID string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.ConfirmationModel{}).
		Where("id = ? AND confirmed_at IS NULL", confirmationID).
		Update("confirmed_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
