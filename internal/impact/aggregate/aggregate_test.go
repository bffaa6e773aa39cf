package aggregate

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/internal/donation/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func donationRow(node *snowflake.Node, cause, amount string, createdAt time.Time) *domain.Donation {
	return &domain.Donation{
		ID:        node.Generate(),
		DonorName: "Test Donor",
		Amount:    decimal.RequireFromString(amount),
		Cause:     cause,
		CreatedAt: createdAt,
	}
}

func TestSnapshotSums(t *testing.T) {
	node := mustNode(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	rows := []*domain.Donation{
		donationRow(node, "education", "50", now.Add(-time.Minute)),
		donationRow(node, "healthcare", "30", now.Add(-time.Hour)),
		donationRow(node, "education", "20", now.Add(-2*time.Hour)),
	}

	totals := Snapshot(rows, now)

	assert.Equal(t, "100.00", totals.Overall.StringFixed(2))
	assert.Equal(t, int64(3), totals.Count)
	assert.Equal(t, "70.00", totals.PerCause["education"].StringFixed(2))
	assert.Equal(t, "30.00", totals.PerCause["healthcare"].StringFixed(2))
}

func TestSnapshotWindows(t *testing.T) {
	node := mustNode(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	rows := []*domain.Donation{
		donationRow(node, "education", "10", now.Add(-30*time.Second)),
		donationRow(node, "education", "20", now.Add(-3*time.Hour)),
		donationRow(node, "education", "40", now.Add(-3*24*time.Hour)),
		donationRow(node, "education", "80", now.Add(-30*24*time.Hour)),
	}

	totals := Snapshot(rows, now)

	assert.Equal(t, "150.00", totals.Overall.StringFixed(2))
	assert.Equal(t, "10.00", totals.Last60Seconds.StringFixed(2))
	assert.Equal(t, "30.00", totals.Today.StringFixed(2))
	assert.Equal(t, "70.00", totals.Last7Days.StringFixed(2))
}

func TestSnapshotIdempotent(t *testing.T) {
	node := mustNode(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	rows := []*domain.Donation{
		donationRow(node, "education", "12.34", now.Add(-time.Minute)),
		donationRow(node, "community", "0.01", now.Add(-time.Minute)),
	}

	first := Snapshot(rows, now)
	second := Snapshot(rows, now)

	assert.Equal(t, first.Display(), second.Display())
}

func TestApplyMatchesRecompute(t *testing.T) {
	node := mustNode(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	rows := []*domain.Donation{
		donationRow(node, "education", "50", now.Add(-time.Minute)),
		donationRow(node, "healthcare", "30", now.Add(-time.Hour)),
	}
	fresh := donationRow(node, "education", "20", now)

	incremental := Apply(Snapshot(rows, now), Event{
		DonationID: int64(fresh.ID),
		Cause:      fresh.Cause,
		Amount:     fresh.Amount,
		CreatedAt:  fresh.CreatedAt,
	})
	recomputed := Snapshot(append(rows, fresh), now)

	assert.Equal(t, recomputed.Display(), incremental.Display())
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	node := mustNode(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	base := Snapshot([]*domain.Donation{
		donationRow(node, "education", "50", now.Add(-time.Minute)),
	}, now)

	_ = Apply(base, Event{
		DonationID: int64(node.Generate()),
		Cause:      "education",
		Amount:     decimal.RequireFromString("25"),
		CreatedAt:  now,
	})

	assert.Equal(t, "50.00", base.Overall.StringFixed(2))
	assert.Equal(t, "50.00", base.PerCause["education"].StringFixed(2))
	assert.Equal(t, int64(1), base.Count)
}

func TestApplyFreshEventLandsInAllWindows(t *testing.T) {
	node := mustNode(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	totals := Apply(Snapshot(nil, now), Event{
		DonationID: int64(node.Generate()),
		Cause:      "environment",
		Amount:     decimal.RequireFromString("5"),
		CreatedAt:  now.Add(2 * time.Second),
	})

	assert.Equal(t, "5.00", totals.Today.StringFixed(2))
	assert.Equal(t, "5.00", totals.Last7Days.StringFixed(2))
	assert.Equal(t, "5.00", totals.Last60Seconds.StringFixed(2))
}

func TestDisplayRoundsWithoutLosingPrecision(t *testing.T) {
	node := mustNode(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	rows := []*domain.Donation{
		donationRow(node, "education", "0.10", now),
		donationRow(node, "education", "0.20", now),
		donationRow(node, "education", "0.30", now),
	}

	totals := Snapshot(rows, now)

	assert.True(t, totals.Overall.Equal(decimal.RequireFromString("0.60")))
	assert.Equal(t, "0.60", totals.Display().Total)
}

func TestStatsFor(t *testing.T) {
	node := mustNode(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	alice := donationRow(node, "education", "40", now)
	alice.DonorName = "Alice"
	bob := donationRow(node, "education", "20", now)
	bob.DonorName = "Bob"
	aliceAgain := donationRow(node, "education", "30", now)
	aliceAgain.DonorName = "Alice"
	other := donationRow(node, "healthcare", "99", now)

	stats := StatsFor("education", []*domain.Donation{alice, bob, aliceAgain, other})

	assert.Equal(t, "education", stats.Cause)
	assert.Equal(t, "90.00", stats.TotalRaised)
	assert.Equal(t, int64(3), stats.DonationCount)
	assert.Equal(t, int64(2), stats.UniqueDonors)
	assert.Equal(t, "30.00", stats.AvgDonation)
}
