package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/internal/donation/feed"
	"github.com/printpower/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type CreateDonationRequest struct {
	DonorName     string
	Amount        string
	Cause         string
	PaymentMethod string
}

type ListDonationRequest struct {
	PageToken string
	PageSize  int32
	Cause     string
	Mine      bool
}

type ListDonationResponse struct {
	pagination.PageInfo
	Donations []Donation `json:"donations"`
}

type Service interface {
	Create(context.Context, CreateDonationRequest) (Donation, error)
	List(context.Context, ListDonationRequest) (ListDonationResponse, error)

	// ReplaySince returns feed events for donations with id greater
	// than cursor, in id order. The stream handler uses it to repair a
	// client reconnecting with a Last-Event-ID older than the hub's
	// backlog.
	ReplaySince(ctx context.Context, cursor snowflake.ID) ([]feed.DonationEvent, error)
}

// OrderWriter lets checkout create a donation inside the order
// transaction, so the order and its donation commit or roll back as one.
// Announce must be called only after the transaction commits.
type OrderWriter interface {
	CreateForOrder(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, req CreateDonationRequest) (Donation, error)
	Announce(ctx context.Context, donation Donation)
}

var (
	ErrInvalidDonorName     = errors.New("invalid_donor_name")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidCause         = errors.New("invalid_cause")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrUnknownCause         = errors.New("unknown_cause")
	ErrUnauthenticated      = errors.New("unauthenticated")
)
