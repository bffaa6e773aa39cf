package provider

import (
	"context"
	"math/rand"

	"github.com/printpower/storefront/internal/quote/domain"
)

const (
	stubMinAmount = 350
	stubMaxAmount = 850
)

// StubProvider fabricates a plausible quote without any network call.
// It is selected when no upstream credential is configured, and doubles
// as the fallback shape when the live provider degrades.
type StubProvider struct{}

func NewStub() *StubProvider {
	return &StubProvider{}
}

func (p *StubProvider) Mode() domain.Mode {
	return domain.ModeStub
}

func (p *StubProvider) RequestQuote(_ context.Context, payload domain.QuotePayload) (domain.Quote, error) {
	return domain.Quote{
		Mock: true,
		Quote: domain.QuoteAmount{
			Amount:   float64(stubMinAmount + rand.Intn(stubMaxAmount-stubMinAmount+1)),
			Currency: "USD",
		},
		Turnaround: "5-7 business days",
		Notes:      "Stub quote for " + payload.Project + ". Configure PRESSMASTER_API_KEY to use the live service.",
	}, nil
}

var _ domain.Provider = (*StubProvider)(nil)
