package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Publisher appends an event row in the caller's transaction so the event
// commits or rolls back together with the primary write.
type Publisher interface {
	Publish(ctx context.Context, tx *gorm.DB, eventType string, payload any) error
}

type Outbox struct {
	genID *snowflake.Node
}

func NewOutbox(genID *snowflake.Node) *Outbox {
	return &Outbox{genID: genID}
}

func (o *Outbox) Publish(ctx context.Context, tx *gorm.DB, eventType string, payload any) error {
	if tx == nil {
		return errors.New("outbox requires a transaction handle")
	}
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return errors.New("missing event type")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return tx.WithContext(ctx).Create(&StoreEvent{
		ID:        o.genID.Generate(),
		EventType: eventType,
		Payload:   datatypes.JSON(body),
		Published: false,
		CreatedAt: time.Now().UTC(),
	}).Error
}

var _ Publisher = (*Outbox)(nil)
