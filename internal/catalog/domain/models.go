package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Product struct {
	ID             snowflake.ID                 `gorm:"primaryKey" json:"id"`
	Name           string                       `gorm:"not null;uniqueIndex" json:"name"`
	Description    string                       `json:"description"`
	Category       string                       `gorm:"index" json:"category"`
	Price          decimal.Decimal              `gorm:"type:numeric(12,2);not null" json:"price"`
	DonationAmount decimal.Decimal              `gorm:"type:numeric(12,2);not null;default:0" json:"donation_amount"`
	ImageURL       string                       `json:"image_url"`
	Sizes          datatypes.JSONSlice[string]  `json:"sizes"`
	Active         bool                         `gorm:"not null;default:true;index" json:"active"`
	CreatedAt      time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
