package models

import "time"

// FulfillmentModel is exactly-once by construction: the unique order_id
// index is the sole serialization point for concurrent issuance.
type FulfillmentModel struct {
	ID           string `gorm:"primaryKey;type:uuid"`
	OrderID      string `gorm:"type:uuid;uniqueIndex;not null"`
	ProductSKU   string
	UnlockToken  string `gorm:"uniqueIndex;not null"`
	DeliveredAt  time.Time
	RevokedAt    *time.Time
	RevokeReason string
}
