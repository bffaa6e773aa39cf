package controller

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/internal/donation/feed"
	"github.com/printpower/storefront/internal/impact/aggregate"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const updateBuffer = 16

// Controller owns one session's live aggregate. It is seeded with a
// snapshot and its cursor (the highest donation id the snapshot saw),
// then folds change-feed events into the totals. Events at or below the
// cursor are already in the snapshot and are dropped, so a donation is
// never counted twice even when the feed replays it. The cursor never
// moves: feed delivery order can invert id order when concurrent
// requests commit out of id sequence, and an event above the snapshot
// cursor is countable no matter when it arrives.
type Controller struct {
	mu      sync.Mutex
	totals  aggregate.Totals
	cursor  snowflake.ID
	sub     *feed.Subscription
	updates chan aggregate.Totals
	done    chan struct{}
	once    sync.Once
	log     *zap.Logger
}

func New(totals aggregate.Totals, cursor snowflake.ID, sub *feed.Subscription, backlog []feed.DonationEvent, log *zap.Logger) *Controller {
	c := &Controller{
		totals:  totals,
		cursor:  cursor,
		sub:     sub,
		updates: make(chan aggregate.Totals, updateBuffer),
		done:    make(chan struct{}),
		log:     log.Named("impact.controller"),
	}
	for _, event := range backlog {
		c.apply(event)
	}
	go c.run()
	return c
}

// Totals returns the current aggregate value.
func (c *Controller) Totals() aggregate.Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals
}

// Updates delivers a totals value after each applied event. Slow readers
// miss intermediate values, never final ones: the channel is drained to
// its latest element before each send.
func (c *Controller) Updates() <-chan aggregate.Totals {
	return c.updates
}

func (c *Controller) Close() {
	c.once.Do(func() {
		c.sub.Close()
		close(c.done)
	})
}

func (c *Controller) run() {
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.sub.Events():
			if !ok {
				return
			}
			if !c.apply(event) {
				continue
			}
			c.publish(c.Totals())
		}
	}
}

func (c *Controller) apply(event feed.DonationEvent) bool {
	parsed, err := parseEvent(event)
	if err != nil {
		c.log.Warn("dropping malformed feed event",
			zap.String("donation_id", event.DonationID),
			zap.Error(err),
		)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if snowflake.ID(parsed.DonationID) <= c.cursor {
		return false
	}
	c.totals = aggregate.Apply(c.totals, parsed)
	return true
}

func (c *Controller) publish(totals aggregate.Totals) {
	for {
		select {
		case c.updates <- totals:
			return
		default:
		}
		select {
		case <-c.updates:
		default:
		}
	}
}

func parseEvent(event feed.DonationEvent) (aggregate.Event, error) {
	id, err := snowflake.ParseString(event.DonationID)
	if err != nil {
		return aggregate.Event{}, err
	}
	amount, err := decimal.NewFromString(event.Amount)
	if err != nil {
		return aggregate.Event{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, event.CreatedAt)
	if err != nil {
		return aggregate.Event{}, err
	}
	return aggregate.Event{
		DonationID: int64(id),
		Cause:      event.Cause,
		Amount:     amount,
		CreatedAt:  createdAt,
	}, nil
}
