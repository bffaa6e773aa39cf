package impact

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	causedomain "github.com/printpower/storefront/internal/cause/domain"
	causerepository "github.com/printpower/storefront/internal/cause/repository"
	"github.com/printpower/storefront/internal/clock"
	donationdomain "github.com/printpower/storefront/internal/donation/domain"
	"github.com/printpower/storefront/internal/donation/feed"
	donationrepository "github.com/printpower/storefront/internal/donation/repository"
	donationservice "github.com/printpower/storefront/internal/donation/service"
	"github.com/printpower/storefront/internal/events"
	"github.com/printpower/storefront/internal/impact/aggregate"
	"github.com/printpower/storefront/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type impactFixture struct {
	svc       *Service
	donations donationdomain.Service
	db        *gorm.DB
}

func setupImpact(t *testing.T) *impactFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	fake := clock.NewFakeClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	hub := feed.NewHub()

	donations := donationservice.New(donationservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     fake,
		Repo:      donationrepository.Provide(),
		CauseRepo: causerepository.Provide(),
		Outbox:    events.NewOutbox(node),
		Hub:       hub,
	})

	svc := New(Params{
		DB:        db,
		Log:       log,
		Clock:     fake,
		Repo:      donationrepository.Provide(),
		CauseRepo: causerepository.Provide(),
		Hub:       hub,
	})

	for _, name := range []string{"education", "healthcare"} {
		require.NoError(t, db.Create(&causedomain.Cause{
			ID:          node.Generate(),
			Name:        name,
			Description: name + " programs",
		}).Error)
	}

	return &impactFixture{svc: svc, donations: donations, db: db}
}

func (f *impactFixture) donate(t *testing.T, cause, amount string) donationdomain.Donation {
	t.Helper()
	d, err := f.donations.Create(context.Background(), donationdomain.CreateDonationRequest{
		DonorName:     "Test Donor",
		Amount:        amount,
		Cause:         cause,
		PaymentMethod: "credit_card",
	})
	require.NoError(t, err)
	return d
}

func TestTotalsAcrossCauses(t *testing.T) {
	f := setupImpact(t)
	f.donate(t, "education", "50")
	f.donate(t, "healthcare", "30")
	f.donate(t, "education", "20")

	display, err := f.svc.Totals(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "100.00", display.Total)
	assert.Equal(t, int64(3), display.DonationCount)
	assert.Equal(t, "70.00", display.PerCause["education"])
	assert.Equal(t, "30.00", display.PerCause["healthcare"])
}

func TestTotalsFilteredByCause(t *testing.T) {
	f := setupImpact(t)
	f.donate(t, "education", "50")
	f.donate(t, "healthcare", "30")

	display, err := f.svc.Totals(context.Background(), "Education")
	require.NoError(t, err)

	assert.Equal(t, "50.00", display.Total)
	assert.Equal(t, int64(1), display.DonationCount)
	_, present := display.PerCause["healthcare"]
	assert.False(t, present)
}

func TestCauseStats(t *testing.T) {
	f := setupImpact(t)
	f.donate(t, "education", "40")
	f.donate(t, "education", "20")

	stats, err := f.svc.CauseStats(context.Background(), "education")
	require.NoError(t, err)
	assert.Equal(t, "60.00", stats.TotalRaised)
	assert.Equal(t, int64(2), stats.DonationCount)

	_, err = f.svc.CauseStats(context.Background(), "space travel")
	assert.ErrorIs(t, err, ErrUnknownCause)
}

func TestOpenStreamCountsDonationsExactlyOnce(t *testing.T) {
	f := setupImpact(t)
	f.donate(t, "education", "50")

	ctrl, release, err := f.svc.OpenStream(context.Background())
	require.NoError(t, err)
	defer release()

	// The pre-stream donation is in the snapshot, and its feed backlog
	// replay must have been dropped by the cursor.
	totals := ctrl.Totals()
	assert.Equal(t, "50.00", totals.Overall.StringFixed(2))
	assert.Equal(t, int64(1), totals.Count)

	f.donate(t, "education", "25")

	select {
	case totals := <-ctrl.Updates():
		assert.Equal(t, "75.00", totals.Overall.StringFixed(2))
		assert.Equal(t, int64(2), totals.Count)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for live update")
	}
}

func TestOpenStreamEmptySnapshot(t *testing.T) {
	f := setupImpact(t)

	ctrl, release, err := f.svc.OpenStream(context.Background())
	require.NoError(t, err)
	defer release()

	assert.Equal(t, aggregate.Display{
		GeneratedAt:   ctrl.Totals().Now.Format(time.RFC3339),
		Total:         "0.00",
		DonationCount: 0,
		PerCause:      map[string]string{},
		Today:         "0.00",
		Last7Days:     "0.00",
		Last60Seconds: "0.00",
	}, ctrl.Totals().Display())
}
