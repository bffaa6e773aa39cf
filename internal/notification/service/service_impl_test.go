package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/printpower/storefront/internal/clock"
	"github.com/printpower/storefront/internal/migration"
	"github.com/printpower/storefront/internal/notification/domain"
	"github.com/printpower/storefront/internal/notification/repository"
	"github.com/printpower/storefront/internal/usercontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupNotifications(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, node
}

func TestNotificationLifecycle(t *testing.T) {
	svc, node := setupNotifications(t)
	userID := node.Generate()
	ctx := usercontext.WithUserID(context.Background(), userID)

	created, err := svc.Create(context.Background(), domain.CreateNotificationRequest{
		UserID: userID,
		Type:   domain.TypeCheckDrop,
		Title:  "$777 Check Drop triggered!",
		Body:   "Your donation unlocked a Pressmaster print quote.",
		Data:   map[string]any{"donation_id": "42"},
	})
	require.NoError(t, err)
	assert.False(t, created.Read)
	assert.NotEmpty(t, created.Data)

	resp, err := svc.List(ctx, domain.ListNotificationRequest{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 1)

	require.NoError(t, svc.MarkRead(ctx, created.ID.String()))

	resp, err = svc.List(ctx, domain.ListNotificationRequest{UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, resp.Notifications)

	resp, err = svc.List(ctx, domain.ListNotificationRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 1)
	assert.True(t, resp.Notifications[0].Read)
}

func TestListIsUserScoped(t *testing.T) {
	svc, node := setupNotifications(t)
	alice := node.Generate()
	bob := node.Generate()

	_, err := svc.Create(context.Background(), domain.CreateNotificationRequest{
		UserID: alice,
		Type:   domain.TypeCheckDrop,
		Title:  "for alice",
	})
	require.NoError(t, err)

	resp, err := svc.List(usercontext.WithUserID(context.Background(), bob), domain.ListNotificationRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Notifications)

	_, err = svc.List(context.Background(), domain.ListNotificationRequest{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestMarkReadIsOwnerScoped(t *testing.T) {
	svc, node := setupNotifications(t)
	alice := node.Generate()
	bob := node.Generate()

	created, err := svc.Create(context.Background(), domain.CreateNotificationRequest{
		UserID: alice,
		Type:   domain.TypeCheckDrop,
		Title:  "for alice",
	})
	require.NoError(t, err)

	err = svc.MarkRead(usercontext.WithUserID(context.Background(), bob), created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.MarkRead(usercontext.WithUserID(context.Background(), alice), "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
