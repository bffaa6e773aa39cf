package domain

import (
	"context"
	"errors"
)

type ListRequestsRequest struct {
	Limit int
}

type ListRequestsResponse struct {
	Requests []PressmasterRequest `json:"requests"`
}

type Service interface {
	// RequestQuote runs one quote attempt through the configured
	// provider and records it in the audit log.
	RequestQuote(ctx context.Context, payload QuotePayload) (Quote, error)
	ListRequests(ctx context.Context, req ListRequestsRequest) (ListRequestsResponse, error)
}

// ValidationError carries field-level detail for a rejected payload.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "invalid_quote_payload"
}

var ErrUnauthenticated = errors.New("unauthenticated")
