package events

import (
	"context"
	"encoding/json"
)

// Handler consumes one event type from the outbox dispatcher. Returning
// an error leaves the row unpublished so the next dispatch cycle retries
// it; handlers whose effects must never retry swallow their own errors.
type Handler interface {
	EventType() string
	Handle(ctx context.Context, payload json.RawMessage) error
}
