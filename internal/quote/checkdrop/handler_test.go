package checkdrop

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/internal/config"
	"github.com/printpower/storefront/internal/events"
	notificationdomain "github.com/printpower/storefront/internal/notification/domain"
	quotedomain "github.com/printpower/storefront/internal/quote/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type quoteStub struct {
	mu       sync.Mutex
	payloads []quotedomain.QuotePayload
	err      error
}

func (q *quoteStub) RequestQuote(_ context.Context, payload quotedomain.QuotePayload) (quotedomain.Quote, error) {
	q.mu.Lock()
	q.payloads = append(q.payloads, payload)
	q.mu.Unlock()
	if q.err != nil {
		return quotedomain.Quote{}, q.err
	}
	return quotedomain.Quote{
		Mock:       true,
		Quote:      quotedomain.QuoteAmount{Amount: 500, Currency: "USD"},
		Turnaround: "5-7 business days",
	}, nil
}

func (q *quoteStub) ListRequests(context.Context, quotedomain.ListRequestsRequest) (quotedomain.ListRequestsResponse, error) {
	return quotedomain.ListRequestsResponse{}, nil
}

func (q *quoteStub) calls() []quotedomain.QuotePayload {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]quotedomain.QuotePayload(nil), q.payloads...)
}

type notificationStub struct {
	mu       sync.Mutex
	requests []notificationdomain.CreateNotificationRequest
	err      error
}

func (n *notificationStub) Create(_ context.Context, req notificationdomain.CreateNotificationRequest) (notificationdomain.Notification, error) {
	n.mu.Lock()
	n.requests = append(n.requests, req)
	n.mu.Unlock()
	return notificationdomain.Notification{}, n.err
}

func (n *notificationStub) List(context.Context, notificationdomain.ListNotificationRequest) (notificationdomain.ListNotificationResponse, error) {
	return notificationdomain.ListNotificationResponse{}, nil
}

func (n *notificationStub) MarkRead(context.Context, string) error { return nil }

func (n *notificationStub) created() []notificationdomain.CreateNotificationRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notificationdomain.CreateNotificationRequest(nil), n.requests...)
}

func newHandler(t *testing.T, quotes *quoteStub, notifications *notificationStub) *Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.CheckDrop.Threshold = decimal.NewFromInt(777)
	return New(Params{
		Config:        cfg,
		Log:           zaptest.NewLogger(t),
		Quotes:        quotes,
		Notifications: notifications,
	})
}

func donationPayload(t *testing.T, node *snowflake.Node, amount string, userID string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(events.DonationCreatedPayload{
		DonationID: node.Generate().String(),
		Cause:      "education",
		Amount:     amount,
		UserID:     userID,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339Nano),
	})
	require.NoError(t, err)
	return raw
}

func TestHandleTriggersAtThreshold(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	quotes := &quoteStub{}
	notifications := &notificationStub{}
	h := newHandler(t, quotes, notifications)

	userID := node.Generate()
	err = h.Handle(context.Background(), donationPayload(t, node, "777.00", userID.String()))
	require.NoError(t, err)

	calls := quotes.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Print Power Purpose", calls[0].Project)
	assert.Equal(t, "Check-drop campaign assets", calls[0].Specs)
	assert.Equal(t, 1, calls[0].Quantity)
	assert.NotEmpty(t, calls[0].DonationID)

	created := notifications.created()
	require.Len(t, created, 1)
	assert.Equal(t, userID, created[0].UserID)
	assert.Equal(t, notificationdomain.TypeCheckDrop, created[0].Type)
}

func TestHandleIgnoresBelowThreshold(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	quotes := &quoteStub{}
	notifications := &notificationStub{}
	h := newHandler(t, quotes, notifications)

	err = h.Handle(context.Background(), donationPayload(t, node, "776.99", ""))
	require.NoError(t, err)

	assert.Empty(t, quotes.calls())
	assert.Empty(t, notifications.created())
}

func TestHandleTriggersAboveThreshold(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	quotes := &quoteStub{}
	h := newHandler(t, quotes, &notificationStub{})

	err = h.Handle(context.Background(), donationPayload(t, node, "1000", ""))
	require.NoError(t, err)
	assert.Len(t, quotes.calls(), 1)
}

func TestHandleSwallowsQuoteFailure(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	quotes := &quoteStub{err: errors.New("upstream down")}
	notifications := &notificationStub{}
	h := newHandler(t, quotes, notifications)

	// A failed quote never propagates: the donation is already
	// committed and must not be retried or rolled back over this.
	err = h.Handle(context.Background(), donationPayload(t, node, "800", node.Generate().String()))
	require.NoError(t, err)
	assert.Empty(t, notifications.created())
}

func TestHandleSwallowsMalformedPayload(t *testing.T) {
	quotes := &quoteStub{}
	h := newHandler(t, quotes, &notificationStub{})

	require.NoError(t, h.Handle(context.Background(), json.RawMessage(`{not json`)))
	require.NoError(t, h.Handle(context.Background(), json.RawMessage(`{"amount":"NaNaNa"}`)))
	assert.Empty(t, quotes.calls())
}

func TestHandleSkipsNotificationWithoutUser(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	quotes := &quoteStub{}
	notifications := &notificationStub{}
	h := newHandler(t, quotes, notifications)

	err = h.Handle(context.Background(), donationPayload(t, node, "900", ""))
	require.NoError(t, err)
	assert.Len(t, quotes.calls(), 1)
	assert.Empty(t, notifications.created())
}
