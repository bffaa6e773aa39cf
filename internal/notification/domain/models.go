package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	TypeCheckDrop = "check_drop"
)

type Notification struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID   `gorm:"not null;index" json:"user_id"`
	Type      string         `gorm:"not null" json:"type"`
	Title     string         `gorm:"not null" json:"title"`
	Body      string         `json:"body"`
	Data      datatypes.JSON `json:"data,omitempty"`
	Read      bool           `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time      `gorm:"not null;index;default:CURRENT_TIMESTAMP" json:"created_at"`
}
