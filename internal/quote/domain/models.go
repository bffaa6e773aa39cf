package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Mode string

const (
	ModeStub Mode = "stub"
	ModeLive Mode = "live"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

type RequestType string

const (
	TypeQuote RequestType = "quote"
	TypeStory RequestType = "story"
)

// PressmasterRequest is one audit row per automation or user-initiated
// quote attempt. Rows are append-only; only the terminal status fields
// are filled in after the attempt resolves, and never touched again.
type PressmasterRequest struct {
	ID           snowflake.ID   `gorm:"primaryKey" json:"id"`
	UserID       *snowflake.ID  `gorm:"index" json:"user_id,omitempty"`
	DonationID   *snowflake.ID  `gorm:"index" json:"donation_id,omitempty"`
	Type         RequestType    `gorm:"not null;default:quote" json:"type"`
	Mode         Mode           `gorm:"not null" json:"mode"`
	Status       Status         `gorm:"not null;default:pending" json:"status"`
	RequestBody  datatypes.JSON `gorm:"not null" json:"request_body"`
	ResponseBody datatypes.JSON `json:"response_body,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;index;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
