package models

import "time"

type ConfirmationModel struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	OrderID     string `gorm:"type:uuid;not null;index"`
	Token       string `gorm:"uniqueIndex;not null"`
	RequestedAt time.Time
	ConfirmedAt *time.Time
	ExpiresAt   time.Time `gorm:"index"`
}
