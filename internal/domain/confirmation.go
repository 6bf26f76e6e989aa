package domain

import "time"

// Confirmation is a single-use secondary-authorization token for a held
// order. At most one active (unconfirmed, unexpired) row per order.
type Confirmation struct {
	ID          string
	OrderID     string
	Token       string
	RequestedAt time.Time
	ConfirmedAt *time.Time
	ExpiresAt   time.Time
}

func (c *Confirmation) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func (c *Confirmation) Consumed() bool {
	return c.ConfirmedAt != nil
}

func (c *Confirmation) Active(now time.Time) bool {
	return !c.Consumed() && !c.Expired(now)
}
