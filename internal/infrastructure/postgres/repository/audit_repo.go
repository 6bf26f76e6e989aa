package repository

import (
	"context"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultAuditEventRepository struct {
	DB *gorm.DB
}

func NewDefaultAuditEventRepository(db *gorm.DB) *DefaultAuditEventRepository {
	return &DefaultAuditEventRepository{DB: db}
}

func (r *DefaultAuditEventRepository) AppendEvent(ctx context.Context, e *domain.AuditEvent) error {
	return r.DB.WithContext(ctx).Create(mappers.ToGORMAuditEvent(e)).Error
}

func (r *DefaultAuditEventRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.AuditEvent, error) {
	var eventModels []models.AuditEventModel
	err := r.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&eventModels).Error
	if err != nil {
		return nil, err
	}

	events := make([]*domain.AuditEvent, 0, len(eventModels))
	for i := range eventModels {
		events = append(events, mappers.ToDomainAuditEvent(&eventModels[i]))
	}
	return events, nil
}
