package domain

import "context"

// QuotePayload is the request sent to the quoting service, from either
// the user-facing endpoint or the check-drop automation.
type QuotePayload struct {
	Project    string `json:"project" validate:"required,max=200"`
	Specs      string `json:"specs" validate:"required,max=1000"`
	Quantity   int    `json:"quantity" validate:"required,gt=0,lte=10000"`
	DonationID string `json:"donation_id,omitempty"`
}

type QuoteAmount struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Quote struct {
	Mock       bool        `json:"mock"`
	Quote      QuoteAmount `json:"quote"`
	Turnaround string      `json:"turnaround"`
	Notes      string      `json:"notes"`
}

// Provider is the stub/live strategy. The implementation is chosen once
// at startup from configuration, never re-evaluated per call.
type Provider interface {
	Mode() Mode
	RequestQuote(ctx context.Context, payload QuotePayload) (Quote, error)
}
