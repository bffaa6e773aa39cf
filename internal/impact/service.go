package impact

import (
	"context"
	"errors"
	"strings"

	causedomain "github.com/printpower/storefront/internal/cause/domain"
	"github.com/printpower/storefront/internal/clock"
	donationdomain "github.com/printpower/storefront/internal/donation/domain"
	"github.com/printpower/storefront/internal/donation/feed"
	"github.com/printpower/storefront/internal/impact/aggregate"
	"github.com/printpower/storefront/internal/impact/controller"
	"github.com/printpower/storefront/internal/observability/metrics"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrUnknownCause = errors.New("unknown_cause")

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Repo      donationdomain.Repository
	CauseRepo causedomain.Repository
	Hub       *feed.Hub
	Metrics   *metrics.Metrics
}

// Service builds donation aggregates: one-shot snapshots for the impact
// dashboard and live controllers for streaming sessions.
type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      donationdomain.Repository
	causeRepo causedomain.Repository
	hub       *feed.Hub
	metrics   *metrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("impact.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		causeRepo: p.CauseRepo,
		hub:       p.Hub,
		metrics:   p.Metrics,
	}
}

// Totals computes a point-in-time aggregate, optionally restricted to
// one cause.
func (s *Service) Totals(ctx context.Context, cause string) (aggregate.Display, error) {
	filter := donationdomain.ListDonationFilter{Cause: strings.ToLower(strings.TrimSpace(cause))}
	rows, err := s.repo.ListAll(ctx, s.db, filter)
	if err != nil {
		return aggregate.Display{}, err
	}
	return aggregate.Snapshot(rows, s.clock.Now()).Display(), nil
}

// CauseStats summarizes one cause's donation history.
func (s *Service) CauseStats(ctx context.Context, name string) (aggregate.CauseStats, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	cause, err := s.causeRepo.FindByName(ctx, s.db, name)
	if err != nil {
		return aggregate.CauseStats{}, err
	}
	if cause == nil {
		return aggregate.CauseStats{}, ErrUnknownCause
	}

	rows, err := s.repo.ListAll(ctx, s.db, donationdomain.ListDonationFilter{Cause: name})
	if err != nil {
		return aggregate.CauseStats{}, err
	}
	return aggregate.StatsFor(name, rows), nil
}

// OpenStream starts a live aggregate session. The subscription is taken
// before the snapshot is read, so every donation committed after the
// snapshot arrives through the feed; the snapshot cursor drops the ones
// already counted. The returned release func must be called when the
// session ends.
func (s *Service) OpenStream(ctx context.Context) (*controller.Controller, func(), error) {
	sub, backlog, err := s.hub.Subscribe()
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.repo.ListAll(ctx, s.db, donationdomain.ListDonationFilter{})
	if err != nil {
		sub.Close()
		return nil, nil, err
	}

	var cursor snowflake.ID
	for _, row := range rows {
		if row != nil && row.ID > cursor {
			cursor = row.ID
		}
	}

	ctrl := controller.New(aggregate.Snapshot(rows, s.clock.Now()), cursor, sub, backlog, s.log)
	s.metrics.FeedSubscriberChange(ctx, 1)

	release := func() {
		ctrl.Close()
		s.metrics.FeedSubscriberChange(context.Background(), -1)
	}
	return ctrl, release, nil
}

var Module = fx.Module("impact.service",
	fx.Provide(New),
)
