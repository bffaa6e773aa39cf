package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/internal/donation/domain"
	"github.com/printpower/storefront/pkg/db/option"
	"github.com/printpower/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, donation *domain.Donation) error {
	return db.WithContext(ctx).Create(donation).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Donation, error) {
	var donation domain.Donation
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&donation).Error
	if err != nil {
		return nil, err
	}
	if donation.ID == 0 {
		return nil, nil
	}
	return &donation, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListDonationFilter, page pagination.Pagination) ([]*domain.Donation, error) {
	var donations []*domain.Donation
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Donation{}), filter)
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&donations).Error
	if err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, filter domain.ListDonationFilter) ([]*domain.Donation, error) {
	var donations []*domain.Donation
	err := applyFilter(db.WithContext(ctx).Model(&domain.Donation{}), filter).
		Order("id asc").
		Find(&donations).Error
	if err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *repo) ListSince(ctx context.Context, db *gorm.DB, cursor snowflake.ID) ([]*domain.Donation, error) {
	var donations []*domain.Donation
	err := db.WithContext(ctx).
		Model(&domain.Donation{}).
		Where("id > ?", cursor).
		Order("id asc").
		Find(&donations).Error
	if err != nil {
		return nil, err
	}
	return donations, nil
}

func applyFilter(stmt *gorm.DB, filter domain.ListDonationFilter) *gorm.DB {
	if filter.Cause != "" {
		stmt = stmt.Where("cause = ?", filter.Cause)
	}
	if filter.UserID != nil {
		stmt = stmt.Where("user_id = ?", *filter.UserID)
	}
	return stmt
}
