package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/internal/cause/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cause *domain.Cause) error {
	return db.WithContext(ctx).Create(cause).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Cause, error) {
	var cause domain.Cause
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&cause).Error
	if err != nil {
		return nil, err
	}
	if cause.ID == 0 {
		return nil, nil
	}
	return &cause, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Cause, error) {
	var cause domain.Cause
	err := db.WithContext(ctx).
		Where("name = ?", strings.ToLower(strings.TrimSpace(name))).
		Limit(1).
		Find(&cause).Error
	if err != nil {
		return nil, err
	}
	if cause.ID == 0 {
		return nil, nil
	}
	return &cause, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Cause, error) {
	var causes []*domain.Cause
	err := db.WithContext(ctx).
		Model(&domain.Cause{}).
		Order("name asc").
		Find(&causes).Error
	if err != nil {
		return nil, err
	}
	return causes, nil
}
