package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentPaypal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentPaypal, PaymentBankTransfer:
		return true
	default:
		return false
	}
}

// Donation is immutable once created. There is no update or delete path;
// corrections are compensating rows.
type Donation struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	DonorName     string          `gorm:"not null" json:"donor_name"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Cause         string          `gorm:"not null;index" json:"cause"`
	PaymentMethod PaymentMethod   `gorm:"not null" json:"payment_method"`
	OrderID       *snowflake.ID   `gorm:"index" json:"order_id,omitempty"`
	UserID        *snowflake.ID   `gorm:"index" json:"user_id,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;index;default:CURRENT_TIMESTAMP" json:"created_at"`
}
