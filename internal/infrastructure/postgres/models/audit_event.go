package models

import (
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
)

// AuditEventModel rows are append-only; nothing updates or deletes them.
type AuditEventModel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	OrderID   string `gorm:"type:uuid;index;not null"`
	Kind      domain.AuditKind
	Detail    string    `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"index"`
}
