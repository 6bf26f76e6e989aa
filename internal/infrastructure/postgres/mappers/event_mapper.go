package mappers

import (
	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMWebhookEvent(event *domain.WebhookEvent) *models.WebhookEventModel {
	return &models.WebhookEventModel{
		ID:              event.ID,
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.EventType,
		OrderID:         event.OrderID,
		Outcome:         event.Outcome,
		FirstSeenAt:     event.FirstSeenAt,
	}
}

func ToDomainWebhookEvent(model *models.WebhookEventModel) *domain.WebhookEvent {
	return &domain.WebhookEvent{
		ID:              model.ID,
		Provider:        model.Provider,
		ProviderEventID: model.ProviderEventID,
		EventType:       model.EventType,
		OrderID:         model.OrderID,
		Outcome:         model.Outcome,
		FirstSeenAt:     model.FirstSeenAt,
	}
}

func ToGORMAuditEvent(event *domain.AuditEvent) *models.AuditEventModel {
	return &models.AuditEventModel{
		ID:        event.ID,
		OrderID:   event.OrderID,
		Kind:      event.Kind,
		Detail:    event.Detail,
		CreatedAt: event.CreatedAt,
	}
}

func ToDomainAuditEvent(model *models.AuditEventModel) *domain.AuditEvent {
	return &domain.AuditEvent{
		ID:        model.ID,
		OrderID:   model.OrderID,
		Kind:      model.Kind,
		Detail:    model.Detail,
		CreatedAt: model.CreatedAt,
	}
}
