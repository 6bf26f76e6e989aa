package models

import (
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
)

// WebhookEventModel is the idempotency ledger. The composite unique index
// is the dedup primitive: concurrent redeliveries race on the insert and
// exactly one wins.
type WebhookEventModel struct {
	ID              string          `gorm:"primaryKey;type:uuid"`
	Provider        domain.Provider `gorm:"uniqueIndex:uidx_provider_event;not null"`
	ProviderEventID string          `gorm:"uniqueIndex:uidx_provider_event;not null"`
	EventType       string
	OrderID         string `gorm:"index"`
	Outcome         domain.CanonicalOutcome
	FirstSeenAt     time.Time
}
