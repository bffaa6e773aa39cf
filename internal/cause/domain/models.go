package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Cause struct {
	ID          snowflake.ID            `gorm:"primaryKey" json:"id"`
	Name        string                  `gorm:"not null;uniqueIndex" json:"name"`
	Description string                  `gorm:"not null" json:"description"`
	Tags        datatypes.JSONSlice[string] `gorm:"not null" json:"tags"`
	WebsiteURL  string                  `json:"website_url,omitempty"`
	CreatedBy   *snowflake.ID           `gorm:"index" json:"created_by,omitempty"`
	CreatedAt   time.Time               `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time               `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
