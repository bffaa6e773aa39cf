package feed

import (
	"errors"
	"sync"

	"go.uber.org/fx"
)

const (
	DefaultBacklogSize      = 50
	DefaultSubscriberBuffer = 16
)

// DonationEvent is the wire shape pushed to live feed subscribers.
type DonationEvent struct {
	DonationID string `json:"donation_id"`
	DonorName  string `json:"donor_name"`
	Cause      string `json:"cause"`
	Amount     string `json:"amount"`
	CreatedAt  string `json:"created_at"`
}

// Hub fans donation events out to an arbitrary number of subscribers.
// A bounded backlog of recent events is replayed to new subscribers so
// a client connecting just after a donation still sees it. Slow
// subscribers are never blocked on; events they cannot drain are
// dropped and recovered through the id cursor on reconnect.
type Hub struct {
	mu               sync.Mutex
	backlog          []DonationEvent
	subs             map[uint64]chan DonationEvent
	nextID           uint64
	backlogSize      int
	subscriberBuffer int
}

type Subscription struct {
	hub  *Hub
	id   uint64
	ch   chan DonationEvent
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{
		subs:             make(map[uint64]chan DonationEvent),
		backlogSize:      DefaultBacklogSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

func (h *Hub) Publish(event DonationEvent) {
	if h == nil {
		return
	}

	h.mu.Lock()
	h.backlog = append(h.backlog, event)
	if len(h.backlog) > h.backlogSize {
		h.backlog = h.backlog[len(h.backlog)-h.backlogSize:]
	}
	subs := make([]chan DonationEvent, 0, len(h.subs))
	for _, ch := range h.subs {
		subs = append(subs, ch)
	}
	h.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns a copy of the
// current backlog captured atomically with the registration, so no
// event can fall between the backlog and the channel.
func (h *Hub) Subscribe() (*Subscription, []DonationEvent, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	ch := make(chan DonationEvent, h.subscriberBuffer)
	h.subs[id] = ch
	backlog := append([]DonationEvent(nil), h.backlog...)
	h.mu.Unlock()

	return &Subscription{hub: h, id: id, ch: ch}, backlog, nil
}

// SubscriberCount reports the number of attached subscribers.
func (h *Hub) SubscriberCount() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) unsubscribe(id uint64) {
	if h == nil {
		return
	}
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

func (s *Subscription) Events() <-chan DonationEvent {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.id)
	})
}

var Module = fx.Module("donation.feed",
	fx.Provide(NewHub),
)
