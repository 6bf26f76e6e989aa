package models

import (
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
)

type OrderModel struct {
	ID                 string             `gorm:"primaryKey;type:uuid"`
	Provider           domain.Provider    `gorm:"index:idx_provider_txn"`
	ProviderTxnID      string             `gorm:"index:idx_provider_txn"`
	Status             domain.OrderStatus `gorm:"index:idx_status"`
	AmountMinor        int64
	Currency           string
	ProductSKU         string
	CustomerEmail      string
	Attribution        string
	RiskScore          float64
	RiskDecision       domain.RiskDecision
	HeldAt             *time.Time `gorm:"index:idx_held"`
	HoldReleasedAt     *time.Time
	HoldReleasedReason string
	CreatedAt          time.Time `gorm:"index:idx_created_at"`
	UpdatedAt          time.Time
}
