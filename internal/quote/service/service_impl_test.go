package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/printpower/storefront/internal/clock"
	"github.com/printpower/storefront/internal/migration"
	"github.com/printpower/storefront/internal/quote/domain"
	"github.com/printpower/storefront/internal/quote/provider"
	"github.com/printpower/storefront/internal/quote/repository"
	"github.com/printpower/storefront/internal/usercontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type failingProvider struct {
	mode domain.Mode
	err  error
}

func (p *failingProvider) Mode() domain.Mode { return p.mode }

func (p *failingProvider) RequestQuote(context.Context, domain.QuotePayload) (domain.Quote, error) {
	return domain.Quote{}, p.err
}

func setupQuoteService(t *testing.T, main domain.Provider) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:       db,
		Log:      zaptest.NewLogger(t),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)),
		Repo:     repository.Provide(),
		Provider: main,
		Fallback: provider.NewStub(),
	})
	return svc, db
}

func validPayload() domain.QuotePayload {
	return domain.QuotePayload{
		Project:  "Print Power Purpose",
		Specs:    "Check-drop campaign assets",
		Quantity: 1,
	}
}

func TestRequestQuoteStubSuccessAudited(t *testing.T) {
	svc, db := setupQuoteService(t, provider.NewStub())

	quote, err := svc.RequestQuote(context.Background(), validPayload())
	require.NoError(t, err)
	assert.True(t, quote.Mock)

	var rows []domain.PressmasterRequest
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)

	assert.Equal(t, domain.TypeQuote, rows[0].Type)
	assert.Equal(t, domain.ModeStub, rows[0].Mode)
	assert.Equal(t, domain.StatusSuccess, rows[0].Status)
	assert.Empty(t, rows[0].ErrorMessage)
	assert.NotEmpty(t, rows[0].ResponseBody)
}

func TestRequestQuoteLiveFailureFallsBackToStub(t *testing.T) {
	svc, db := setupQuoteService(t, &failingProvider{
		mode: domain.ModeLive,
		err:  errors.New("upstream timeout"),
	})

	quote, err := svc.RequestQuote(context.Background(), validPayload())
	require.NoError(t, err)
	assert.True(t, quote.Mock)
	assert.Contains(t, quote.Notes, "Live quote unavailable")

	var rows []domain.PressmasterRequest
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)

	assert.Equal(t, domain.ModeLive, rows[0].Mode)
	assert.Equal(t, domain.StatusError, rows[0].Status)
	assert.Contains(t, rows[0].ErrorMessage, "upstream timeout")
	assert.NotEmpty(t, rows[0].ResponseBody)
}

func TestRequestQuoteStubFailureSurfaces(t *testing.T) {
	svc, db := setupQuoteService(t, &failingProvider{
		mode: domain.ModeStub,
		err:  errors.New("broken stub"),
	})

	_, err := svc.RequestQuote(context.Background(), validPayload())
	require.Error(t, err)

	var rows []domain.PressmasterRequest
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.StatusError, rows[0].Status)
}

func TestRequestQuoteValidation(t *testing.T) {
	svc, db := setupQuoteService(t, provider.NewStub())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*domain.QuotePayload)
	}{
		{"missing project", func(p *domain.QuotePayload) { p.Project = "" }},
		{"blank project", func(p *domain.QuotePayload) { p.Project = "   " }},
		{"missing specs", func(p *domain.QuotePayload) { p.Specs = "" }},
		{"zero quantity", func(p *domain.QuotePayload) { p.Quantity = 0 }},
		{"negative quantity", func(p *domain.QuotePayload) { p.Quantity = -1 }},
		{"excessive quantity", func(p *domain.QuotePayload) { p.Quantity = 10001 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := validPayload()
			tc.mutate(&payload)

			_, err := svc.RequestQuote(ctx, payload)
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.NotEmpty(t, vErr.Details)
		})
	}

	// Rejected payloads never reach the audit log.
	var count int64
	require.NoError(t, db.Model(&domain.PressmasterRequest{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRequestQuoteRecordsUserAndDonation(t *testing.T) {
	svc, db := setupQuoteService(t, provider.NewStub())

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	userID := node.Generate()
	donationID := node.Generate()

	payload := validPayload()
	payload.DonationID = donationID.String()

	_, err = svc.RequestQuote(usercontext.WithUserID(context.Background(), userID), payload)
	require.NoError(t, err)

	var rows []domain.PressmasterRequest
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].UserID)
	require.NotNil(t, rows[0].DonationID)
	assert.Equal(t, userID, *rows[0].UserID)
	assert.Equal(t, donationID, *rows[0].DonationID)
}

func TestListRequestsNewestFirst(t *testing.T) {
	svc, _ := setupQuoteService(t, provider.NewStub())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.RequestQuote(ctx, validPayload())
		require.NoError(t, err)
	}

	resp, err := svc.ListRequests(ctx, domain.ListRequestsRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, resp.Requests, 2)
	assert.True(t, resp.Requests[0].ID >= resp.Requests[1].ID)
}
