package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cause *Cause) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Cause, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Cause, error)
	List(ctx context.Context, db *gorm.DB) ([]*Cause, error)
}
