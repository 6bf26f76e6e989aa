package mappers

import (
	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:                 order.ID,
		Provider:           order.Provider,
		ProviderTxnID:      order.ProviderTxnID,
		Status:             order.Status,
		AmountMinor:        order.AmountMinor,
		Currency:           order.Currency,
		ProductSKU:         order.ProductSKU,
		CustomerEmail:      order.CustomerEmail,
		Attribution:        order.Attribution,
		RiskScore:          order.RiskScore,
		RiskDecision:       order.RiskDecision,
		HeldAt:             order.HeldAt,
		HoldReleasedAt:     order.HoldReleasedAt,
		HoldReleasedReason: order.HoldReleasedReason,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
}

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	return &domain.Order{
		ID:                 model.ID,
		Provider:           model.Provider,
		ProviderTxnID:      model.ProviderTxnID,
		Status:             model.Status,
		AmountMinor:        model.AmountMinor,
		Currency:           model.Currency,
		ProductSKU:         model.ProductSKU,
		CustomerEmail:      model.CustomerEmail,
		Attribution:        model.Attribution,
		RiskScore:          model.RiskScore,
		RiskDecision:       model.RiskDecision,
		HeldAt:             model.HeldAt,
		HoldReleasedAt:     model.HoldReleasedAt,
		HoldReleasedReason: model.HoldReleasedReason,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}
