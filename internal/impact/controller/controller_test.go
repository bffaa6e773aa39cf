package controller

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/internal/donation/feed"
	"github.com/printpower/storefront/internal/impact/aggregate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func feedEvent(id snowflake.ID, cause, amount string, createdAt time.Time) feed.DonationEvent {
	return feed.DonationEvent{
		DonationID: id.String(),
		DonorName:  "Test Donor",
		Cause:      cause,
		Amount:     amount,
		CreatedAt:  createdAt.Format(time.RFC3339Nano),
	}
}

func waitForUpdate(t *testing.T, c *Controller) aggregate.Totals {
	t.Helper()
	select {
	case totals := <-c.Updates():
		return totals
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for totals update")
		return aggregate.Totals{}
	}
}

func TestControllerAppliesNewEvents(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Now().UTC()

	hub := feed.NewHub()
	sub, backlog, err := hub.Subscribe()
	require.NoError(t, err)
	require.Empty(t, backlog)

	c := New(aggregate.Snapshot(nil, now), 0, sub, backlog, zaptest.NewLogger(t))
	defer c.Close()

	hub.Publish(feedEvent(node.Generate(), "education", "25.00", now))

	totals := waitForUpdate(t, c)
	assert.Equal(t, "25.00", totals.Overall.StringFixed(2))
	assert.Equal(t, int64(1), totals.Count)
	assert.Equal(t, "25.00", totals.PerCause["education"].StringFixed(2))
}

func TestControllerDropsEventsAtOrBelowCursor(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Now().UTC()

	snapshotID := node.Generate()
	freshID := node.Generate()

	hub := feed.NewHub()
	// The snapshot event lands in the backlog before the stream opens,
	// simulating the race between reading rows and subscribing.
	hub.Publish(feedEvent(snapshotID, "education", "50.00", now))

	sub, backlog, err := hub.Subscribe()
	require.NoError(t, err)
	require.Len(t, backlog, 1)

	seeded := aggregate.Snapshot(nil, now)
	seeded = aggregate.Apply(seeded, aggregate.Event{
		DonationID: int64(snapshotID),
		Cause:      "education",
		Amount:     decimal.RequireFromString("50.00"),
		CreatedAt:  now,
	})

	c := New(seeded, snapshotID, sub, backlog, zaptest.NewLogger(t))
	defer c.Close()

	// Replayed backlog event must not be double counted.
	totals := c.Totals()
	assert.Equal(t, "50.00", totals.Overall.StringFixed(2))
	assert.Equal(t, int64(1), totals.Count)

	hub.Publish(feedEvent(freshID, "education", "10.00", now))
	totals = waitForUpdate(t, c)
	assert.Equal(t, "60.00", totals.Overall.StringFixed(2))
	assert.Equal(t, int64(2), totals.Count)
}

func TestControllerCountsOutOfOrderDelivery(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Now().UTC()

	// Ids are generated inside the request, but commit and publish
	// order between concurrent requests is not: the lower id can reach
	// the feed after the higher one.
	lowID := node.Generate()
	highID := node.Generate()
	require.Less(t, int64(lowID), int64(highID))

	hub := feed.NewHub()
	sub, backlog, err := hub.Subscribe()
	require.NoError(t, err)

	c := New(aggregate.Snapshot(nil, now), 0, sub, backlog, zaptest.NewLogger(t))
	defer c.Close()

	hub.Publish(feedEvent(highID, "education", "10.00", now))
	hub.Publish(feedEvent(lowID, "education", "5.00", now))

	var totals aggregate.Totals
	for totals.Count < 2 {
		totals = waitForUpdate(t, c)
	}
	assert.Equal(t, "15.00", totals.Overall.StringFixed(2))
	assert.Equal(t, int64(2), totals.Count)
	assert.Equal(t, "15.00", totals.PerCause["education"].StringFixed(2))
}

func TestControllerDropsMalformedEvents(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Now().UTC()

	hub := feed.NewHub()
	sub, backlog, err := hub.Subscribe()
	require.NoError(t, err)

	c := New(aggregate.Snapshot(nil, now), 0, sub, backlog, zaptest.NewLogger(t))
	defer c.Close()

	hub.Publish(feed.DonationEvent{
		DonationID: "not-a-number",
		Cause:      "education",
		Amount:     "25.00",
		CreatedAt:  now.Format(time.RFC3339Nano),
	})
	hub.Publish(feedEvent(node.Generate(), "education", "5.00", now))

	totals := waitForUpdate(t, c)
	assert.Equal(t, "5.00", totals.Overall.StringFixed(2))
	assert.Equal(t, int64(1), totals.Count)
}
