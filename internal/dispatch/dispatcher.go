package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/printpower/storefront/internal/clock"
	"github.com/printpower/storefront/internal/config"
	"github.com/printpower/storefront/internal/events"
	"github.com/printpower/storefront/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultBatchSize = 50

type Params struct {
	fx.In

	Config   *config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Handlers []events.Handler `group:"event_handlers"`
	Metrics  *metrics.Metrics
}

// Dispatcher drains the outbox table: each pending row is locked and
// re-checked in its own transaction, handed to every handler registered
// for its event type, and flipped to published. A handler error leaves
// the row pending for the next cycle.
type Dispatcher struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	handlers map[string][]events.Handler
	metrics  *metrics.Metrics
	batch    int
}

func New(p Params) *Dispatcher {
	handlers := make(map[string][]events.Handler)
	for _, h := range p.Handlers {
		if h == nil {
			continue
		}
		handlers[h.EventType()] = append(handlers[h.EventType()], h)
	}

	batch := p.Config.Dispatch.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	return &Dispatcher{
		db:       p.DB,
		log:      p.Log.Named("dispatch"),
		clock:    p.Clock,
		handlers: handlers,
		metrics:  p.Metrics,
		batch:    batch,
	}
}

// ProcessPending handles up to one batch of unpublished events in
// created order.
func (d *Dispatcher) ProcessPending(ctx context.Context) error {
	var rows []events.StoreEvent
	err := d.db.WithContext(ctx).
		Where("published = ?", false).
		Order("created_at asc, id asc").
		Limit(d.batch).
		Find(&rows).Error
	if err != nil {
		return err
	}

	var jobErr error
	for _, row := range rows {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := d.processEvent(ctx, row); err != nil {
			jobErr = errors.Join(jobErr, err)
			d.log.Warn("failed to dispatch event",
				zap.String("event_id", row.ID.String()),
				zap.String("event_type", row.EventType),
				zap.Error(err),
			)
		}
	}
	return jobErr
}

func (d *Dispatcher) processEvent(ctx context.Context, row events.StoreEvent) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stmt := tx.WithContext(ctx)
		if name := tx.Dialector.Name(); name == "postgres" || name == "mysql" {
			stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var locked events.StoreEvent
		if err := stmt.Where("id = ?", row.ID).Limit(1).Find(&locked).Error; err != nil {
			return err
		}
		if locked.ID == 0 || locked.Published {
			return nil
		}

		for _, handler := range d.handlers[locked.EventType] {
			if err := handler.Handle(ctx, json.RawMessage(locked.Payload)); err != nil {
				d.metrics.RecordOutboxDispatch(ctx, locked.EventType, "error")
				return err
			}
		}

		if err := tx.WithContext(ctx).
			Model(&events.StoreEvent{}).
			Where("id = ?", locked.ID).
			Update("published", true).Error; err != nil {
			return err
		}
		d.metrics.RecordOutboxDispatch(ctx, locked.EventType, "published")
		return nil
	})
}

// RunForever polls the outbox until the context is cancelled.
func (d *Dispatcher) RunForever(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := d.ProcessPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.log.Warn("dispatch cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

var Module = fx.Module("dispatch",
	fx.Provide(New),
	fx.Invoke(Register),
)

func Register(lc fx.Lifecycle, cfg *config.Config, d *Dispatcher) {
	interval := cfg.Dispatch.Interval
	if interval <= 0 {
		interval = time.Second
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			go d.RunForever(ctx, interval)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
			return nil
		},
	})
}
