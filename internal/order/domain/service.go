package domain

import (
	"context"
	"errors"

	"github.com/printpower/storefront/pkg/db/pagination"
)

type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

type ShippingInfo struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type CheckoutRequest struct {
	Items         []CheckoutItem `json:"items"`
	PaymentMethod string         `json:"payment_method"`
	Cause         string         `json:"cause,omitempty"`
	Shipping      ShippingInfo   `json:"shipping"`
}

// CheckoutResponse reports whether the order crossed the check-drop
// threshold so the client can watch for the quote notification.
type CheckoutResponse struct {
	Order             Order `json:"order"`
	CheckDropTriggered bool  `json:"check_drop_triggered"`
}

type ListOrderRequest struct {
	PageToken string
	PageSize  int32
}

type ListOrderResponse struct {
	pagination.PageInfo
	Orders []Order `json:"orders"`
}

type GetOrderRequest struct {
	ID string
}

type Service interface {
	Checkout(context.Context, CheckoutRequest) (CheckoutResponse, error)
	List(context.Context, ListOrderRequest) (ListOrderResponse, error)
	Get(context.Context, GetOrderRequest) (Order, error)
}

var (
	ErrEmptyCart           = errors.New("empty_cart")
	ErrInvalidProduct      = errors.New("invalid_product")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidShipping     = errors.New("invalid_shipping")
	ErrCauseRequired       = errors.New("cause_required")
	ErrInvalidID           = errors.New("invalid_order_id")
	ErrNotFound            = errors.New("order_not_found")
	ErrUnauthenticated     = errors.New("unauthenticated")
)
