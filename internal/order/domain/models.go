package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	donationdomain "github.com/printpower/storefront/internal/donation/domain"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID            snowflake.ID                 `gorm:"primaryKey" json:"id"`
	OrderNumber   string                       `gorm:"not null;uniqueIndex" json:"order_number"`
	UserID        snowflake.ID                 `gorm:"not null;index" json:"user_id"`
	Status        OrderStatus                  `gorm:"not null;default:pending" json:"status"`
	PaymentMethod donationdomain.PaymentMethod `gorm:"not null" json:"payment_method"`

	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TotalDonation decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_donation"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	CauseName     string          `json:"cause_name,omitempty"`

	ShippingName       string `gorm:"not null" json:"shipping_name"`
	ShippingLine1      string `gorm:"not null" json:"shipping_line1"`
	ShippingLine2      string `json:"shipping_line2,omitempty"`
	ShippingCity       string `gorm:"not null" json:"shipping_city"`
	ShippingState      string `json:"shipping_state,omitempty"`
	ShippingPostalCode string `gorm:"not null" json:"shipping_postal_code"`
	ShippingCountry    string `gorm:"not null" json:"shipping_country"`

	CreatedAt time.Time   `gorm:"not null;index;default:CURRENT_TIMESTAMP" json:"created_at"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

type OrderItem struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrderID        snowflake.ID    `gorm:"not null;index" json:"order_id"`
	ProductID      snowflake.ID    `gorm:"not null" json:"product_id"`
	ProductName    string          `gorm:"not null" json:"product_name"`
	ProductImage   string          `json:"product_image,omitempty"`
	Size           string          `json:"size,omitempty"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	DonationAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"donation_amount"`
}
