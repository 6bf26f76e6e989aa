package domain

import "time"

// Fulfillment is the single unlock issuance for an order. The order_id
// uniqueness constraint in storage is what makes issuance exactly-once.
type Fulfillment struct {
	ID           string
	OrderID      string
	ProductSKU   string
	UnlockToken  string
	DeliveredAt  time.Time
	RevokedAt    *time.Time
	RevokeReason string
}

func (f *Fulfillment) Revoked() bool {
	return f.RevokedAt != nil
}
