package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*Product, error)
	ListActive(ctx context.Context, db *gorm.DB, category string) ([]*Product, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
