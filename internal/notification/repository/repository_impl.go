package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notification *domain.Notification) error {
	return db.WithContext(ctx).Create(notification).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, unreadOnly bool) ([]*domain.Notification, error) {
	stmt := db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		stmt = stmt.Where("read = ?", false)
	}

	var notifications []*domain.Notification
	err := stmt.Order("created_at desc, id desc").Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
