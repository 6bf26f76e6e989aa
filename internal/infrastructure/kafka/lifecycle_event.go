package publisher

import "time"

// LifecycleEvent mirrors audit-log entries onto the analytics topic.
// Consumers downstream (session/attribution pipeline) are outside this
// service; publish failures never block order processing.
type LifecycleEvent struct {
	OrderID     string    `json:"order_id"`
	Kind        string    `json:"kind"`
	Provider    string    `json:"provider"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	ProductSKU  string    `json:"product_sku"`
	Attribution string    `json:"attribution,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
