package checkdrop

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/internal/config"
	"github.com/printpower/storefront/internal/events"
	notificationdomain "github.com/printpower/storefront/internal/notification/domain"
	"github.com/printpower/storefront/internal/observability/metrics"
	quotedomain "github.com/printpower/storefront/internal/quote/domain"
	"github.com/printpower/storefront/internal/usercontext"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	checkDropProject = "Print Power Purpose"
	checkDropSpecs   = "Check-drop campaign assets"
)

type Params struct {
	fx.In

	Config        *config.Config
	Log           *zap.Logger
	Quotes        quotedomain.Service
	Notifications notificationdomain.Service
	Metrics       *metrics.Metrics
}

// Handler evaluates the check-drop rule against each committed donation.
// It runs after the donation transaction, so nothing here can block or
// roll back the donation itself; every failure is logged and swallowed.
type Handler struct {
	threshold     decimal.Decimal
	log           *zap.Logger
	quotes        quotedomain.Service
	notifications notificationdomain.Service
	metrics       *metrics.Metrics
}

func New(p Params) *Handler {
	return &Handler{
		threshold:     p.Config.CheckDrop.Threshold,
		log:           p.Log.Named("quote.checkdrop"),
		quotes:        p.Quotes,
		notifications: p.Notifications,
		metrics:       p.Metrics,
	}
}

func (h *Handler) EventType() string {
	return events.EventDonationCreated
}

func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) error {
	var payload events.DonationCreatedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.log.Error("malformed donation.created payload", zap.Error(err))
		return nil
	}

	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		h.log.Error("malformed donation amount in event",
			zap.String("donation_id", payload.DonationID),
			zap.Error(err),
		)
		return nil
	}
	if amount.LessThan(h.threshold) {
		return nil
	}

	h.metrics.RecordCheckDrop(ctx, "triggered")
	h.log.Info("check-drop triggered",
		zap.String("donation_id", payload.DonationID),
		zap.String("amount", payload.Amount),
	)

	var userID snowflake.ID
	if payload.UserID != "" {
		if id, err := snowflake.ParseString(payload.UserID); err == nil {
			userID = id
			ctx = usercontext.WithUserID(ctx, id)
		}
	}

	quote, err := h.quotes.RequestQuote(ctx, quotedomain.QuotePayload{
		Project:    checkDropProject,
		Specs:      checkDropSpecs,
		Quantity:   1,
		DonationID: payload.DonationID,
	})
	if err != nil {
		h.metrics.RecordCheckDrop(ctx, "failed")
		h.log.Error("check-drop quote failed",
			zap.String("donation_id", payload.DonationID),
			zap.Error(err),
		)
		return nil
	}

	h.metrics.RecordCheckDrop(ctx, "quoted")
	if userID == 0 {
		return nil
	}

	_, err = h.notifications.Create(ctx, notificationdomain.CreateNotificationRequest{
		UserID: userID,
		Type:   notificationdomain.TypeCheckDrop,
		Title:  "$777 Check Drop triggered!",
		Body:   "Your donation unlocked a Pressmaster print quote.",
		Data: map[string]any{
			"donation_id": payload.DonationID,
			"quote":       quote,
		},
	})
	if err != nil {
		h.log.Error("check-drop notification failed",
			zap.String("donation_id", payload.DonationID),
			zap.Error(err),
		)
	}
	return nil
}
