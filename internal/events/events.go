package events

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	EventDonationCreated = "donation.created"
)

// StoreEvent is one outbox row. Rows are written inside the transaction
// that commits the triggering write, and flipped to published once every
// registered handler has seen them.
type StoreEvent struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	EventType string         `gorm:"not null;index:idx_store_events_pending" json:"event_type"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	Published bool           `gorm:"not null;default:false;index:idx_store_events_pending" json:"published"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// DonationCreatedPayload is the wire shape of a donation.created event.
type DonationCreatedPayload struct {
	DonationID string `json:"donation_id"`
	Cause      string `json:"cause"`
	Amount     string `json:"amount"`
	OrderID    string `json:"order_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}
