package mappers

import (
	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMConfirmation(c *domain.Confirmation) *models.ConfirmationModel {
	return &models.ConfirmationModel{
		ID:          c.ID,
		OrderID:     c.OrderID,
		Token:       c.Token,
		RequestedAt: c.RequestedAt,
		ConfirmedAt: c.ConfirmedAt,
		ExpiresAt:   c.ExpiresAt,
	}
}

func ToDomainConfirmation(model *models.ConfirmationModel) *domain.Confirmation {
	return &domain.Confirmation{
		ID:          model.ID,
		OrderID:     model.OrderID,
		Token:       model.Token,
		RequestedAt: model.RequestedAt,
		ConfirmedAt: model.ConfirmedAt,
		ExpiresAt:   model.ExpiresAt,
	}
}

func ToGORMFulfillment(f *domain.Fulfillment) *models.FulfillmentModel {
	return &models.FulfillmentModel{
		ID:           f.ID,
		OrderID:      f.OrderID,
		ProductSKU:   f.ProductSKU,
		UnlockToken:  f.UnlockToken,
		DeliveredAt:  f.DeliveredAt,
		RevokedAt:    f.RevokedAt,
		RevokeReason: f.RevokeReason,
	}
}

func ToDomainFulfillment(model *models.FulfillmentModel) *domain.Fulfillment {
	return &domain.Fulfillment{
		ID:           model.ID,
		OrderID:      model.OrderID,
		ProductSKU:   model.ProductSKU,
		UnlockToken:  model.UnlockToken,
		DeliveredAt:  model.DeliveredAt,
		RevokedAt:    model.RevokedAt,
		RevokeReason: model.RevokeReason,
	}
}
