package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	causedomain "github.com/printpower/storefront/internal/cause/domain"
	"github.com/printpower/storefront/internal/clock"
	"github.com/printpower/storefront/internal/donation/domain"
	"github.com/printpower/storefront/internal/donation/feed"
	"github.com/printpower/storefront/internal/events"
	"github.com/printpower/storefront/internal/observability/metrics"
	"github.com/printpower/storefront/internal/usercontext"
	"github.com/printpower/storefront/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxDonorNameLen = 120

var (
	_ domain.Service     = (*Service)(nil)
	_ domain.OrderWriter = (*Service)(nil)
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	CauseRepo causedomain.Repository
	Outbox    events.Publisher
	Hub       *feed.Hub
	Metrics   *metrics.Metrics
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	causeRepo causedomain.Repository
	outbox    events.Publisher
	hub       *feed.Hub
	metrics   *metrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("donation.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		causeRepo: p.CauseRepo,
		outbox:    p.Outbox,
		hub:       p.Hub,
		metrics:   p.Metrics,
	}
}

// Create validates and persists a standalone donation. The donation row
// and its donation.created outbox row commit in one transaction; the live
// feed publish happens only after the commit succeeds, so subscribers
// never see a donation that was rolled back.
func (s *Service) Create(ctx context.Context, req domain.CreateDonationRequest) (domain.Donation, error) {
	donation, err := s.build(ctx, req)
	if err != nil {
		return domain.Donation{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &donation); err != nil {
			return err
		}
		return s.outbox.Publish(ctx, tx, events.EventDonationCreated, events.DonationCreatedPayload{
			DonationID: donation.ID.String(),
			Cause:      donation.Cause,
			Amount:     donation.Amount.StringFixed(2),
			UserID:     idString(donation.UserID),
			CreatedAt:  donation.CreatedAt.Format(time.RFC3339Nano),
		})
	})
	if err != nil {
		return domain.Donation{}, err
	}

	s.Announce(ctx, donation)
	return donation, nil
}

// CreateForOrder validates and inserts a donation, plus its outbox row,
// using the checkout transaction handle.
func (s *Service) CreateForOrder(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, req domain.CreateDonationRequest) (domain.Donation, error) {
	donation, err := s.build(ctx, req)
	if err != nil {
		return domain.Donation{}, err
	}
	donation.OrderID = &orderID

	if err := s.repo.Insert(ctx, tx, &donation); err != nil {
		return domain.Donation{}, err
	}
	err = s.outbox.Publish(ctx, tx, events.EventDonationCreated, events.DonationCreatedPayload{
		DonationID: donation.ID.String(),
		Cause:      donation.Cause,
		Amount:     donation.Amount.StringFixed(2),
		OrderID:    orderID.String(),
		UserID:     idString(donation.UserID),
		CreatedAt:  donation.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return domain.Donation{}, err
	}
	return donation, nil
}

// build validates the request into a donation row without persisting it.
// Checkout reuses it to attach the donation to an order transaction.
func (s *Service) build(ctx context.Context, req domain.CreateDonationRequest) (domain.Donation, error) {
	donorName := strings.TrimSpace(req.DonorName)
	if donorName == "" || len(donorName) > maxDonorNameLen {
		return domain.Donation{}, domain.ErrInvalidDonorName
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		return domain.Donation{}, domain.ErrInvalidAmount
	}
	// Sub-cent amounts are rejected, never rounded: "10.005" is not a
	// chargeable value. Round(2) below only canonicalizes the exponent.
	if !amount.Equal(amount.Round(2)) {
		return domain.Donation{}, domain.ErrInvalidAmount
	}
	amount = amount.Round(2)

	method := domain.PaymentMethod(strings.TrimSpace(req.PaymentMethod))
	if !method.Valid() {
		return domain.Donation{}, domain.ErrInvalidPaymentMethod
	}

	causeName := strings.ToLower(strings.TrimSpace(req.Cause))
	if causeName == "" {
		return domain.Donation{}, domain.ErrInvalidCause
	}
	cause, err := s.causeRepo.FindByName(ctx, s.db, causeName)
	if err != nil {
		return domain.Donation{}, err
	}
	if cause == nil {
		return domain.Donation{}, domain.ErrUnknownCause
	}

	donation := domain.Donation{
		ID:            s.genID.Generate(),
		DonorName:     donorName,
		Amount:        amount,
		Cause:         causeName,
		PaymentMethod: method,
		CreatedAt:     s.clock.Now(),
	}
	if userID, ok := usercontext.UserIDFromContext(ctx); ok && userID != 0 {
		donation.UserID = &userID
	}
	return donation, nil
}

// Announce pushes a committed donation to the live feed and records it.
func (s *Service) Announce(ctx context.Context, donation domain.Donation) {
	s.hub.Publish(feedEvent(donation))

	amount, _ := donation.Amount.Float64()
	s.metrics.RecordDonation(ctx, donation.Cause, amount)

	s.log.Info("donation created",
		zap.String("donation_id", donation.ID.String()),
		zap.String("cause", donation.Cause),
		zap.String("amount", donation.Amount.StringFixed(2)),
	)
}

// ReplaySince reads donations the hub backlog may no longer cover, so a
// reconnecting stream client recovers events dropped while it was away.
func (s *Service) ReplaySince(ctx context.Context, cursor snowflake.ID) ([]feed.DonationEvent, error) {
	rows, err := s.repo.ListSince(ctx, s.db, cursor)
	if err != nil {
		return nil, err
	}
	replay := make([]feed.DonationEvent, 0, len(rows))
	for _, row := range rows {
		replay = append(replay, feedEvent(*row))
	}
	return replay, nil
}

func feedEvent(donation domain.Donation) feed.DonationEvent {
	return feed.DonationEvent{
		DonationID: donation.ID.String(),
		DonorName:  donation.DonorName,
		Cause:      donation.Cause,
		Amount:     donation.Amount.StringFixed(2),
		CreatedAt:  donation.CreatedAt.Format(time.RFC3339Nano),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListDonationRequest) (domain.ListDonationResponse, error) {
	size := req.PageSize
	if size <= 0 {
		size = 50
	}

	filter := domain.ListDonationFilter{Cause: strings.ToLower(strings.TrimSpace(req.Cause))}
	if req.Mine {
		userID, ok := usercontext.UserIDFromContext(ctx)
		if !ok || userID == 0 {
			return domain.ListDonationResponse{}, domain.ErrUnauthenticated
		}
		filter.UserID = &userID
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(size),
	})
	if err != nil {
		return domain.ListDonationResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, size, func(d *domain.Donation) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        d.ID.String(),
			CreatedAt: d.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > int(size) {
		items = items[:size]
	}

	donations := make([]domain.Donation, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		donations = append(donations, *item)
	}

	return domain.ListDonationResponse{
		PageInfo:  *pageInfo,
		Donations: donations,
	}, nil
}

func idString(id *snowflake.ID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
