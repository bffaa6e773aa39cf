package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (bool, error)
}
