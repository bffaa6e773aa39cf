package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListDonationFilter struct {
	Cause  string
	UserID *snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, donation *Donation) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Donation, error)
	List(ctx context.Context, db *gorm.DB, filter ListDonationFilter, page pagination.Pagination) ([]*Donation, error)
	// ListAll returns every row matching the filter in insert (id) order.
	// The aggregation snapshot depends on this ordering to capture a
	// consistent cursor.
	ListAll(ctx context.Context, db *gorm.DB, filter ListDonationFilter) ([]*Donation, error)
	// ListSince returns rows with id > cursor in id order, used to repair
	// a live feed after reconnect.
	ListSince(ctx context.Context, db *gorm.DB, cursor snowflake.ID) ([]*Donation, error)
}
