package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

// DefaultIngestRepository owns the idempotency ledger and the atomic
// record-and-apply transaction around it.
type DefaultIngestRepository struct {
	DB *gorm.DB
}

func NewDefaultIngestRepository(db *gorm.DB) *DefaultIngestRepository {
	return &DefaultIngestRepository{DB: db}
}

func (r *DefaultIngestRepository) GetEvent(ctx context.Context, provider domain.Provider, providerEventID string) (*domain.WebhookEvent, error) {
	var model models.WebhookEventModel
	err := r.DB.WithContext(ctx).
		First(&model, "provider = ? AND provider_event_id = ?", provider, providerEventID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mappers.ToDomainWebhookEvent(&model), nil
}

// RecordAndApply inserts the ledger row and runs apply inside one
// transaction. The unique (provider, provider_event_id) index decides
// races between concurrent redeliveries: the loser rolls back having
// mutated nothing and surfaces ErrDuplicateEvent.
func (r *DefaultIngestRepository) RecordAndApply(
	ctx context.Context,
	event *domain.WebhookEvent,
	apply func(orders domain.OrderRepository, audits domain.AuditEventRepository) error,
) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mappers.ToGORMWebhookEvent(event)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateEvent
			}
			return fmt.Errorf("insert webhook event: %w", err)
		}
		return apply(&DefaultOrderRepository{DB: tx}, &DefaultAuditEventRepository{DB: tx})
	})
}
