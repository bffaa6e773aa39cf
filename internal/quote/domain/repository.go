package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, request *PressmasterRequest) error
	Finalize(ctx context.Context, db *gorm.DB, request *PressmasterRequest) error
	ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]*PressmasterRequest, error)
}
