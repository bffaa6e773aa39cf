package repository

import (
	"context"

	"github.com/printpower/storefront/internal/quote/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, request *domain.PressmasterRequest) error {
	return db.WithContext(ctx).Create(request).Error
}

func (r *repo) Finalize(ctx context.Context, db *gorm.DB, request *domain.PressmasterRequest) error {
	return db.WithContext(ctx).
		Model(&domain.PressmasterRequest{}).
		Where("id = ? AND status = ?", request.ID, domain.StatusPending).
		Updates(map[string]any{
			"status":        request.Status,
			"response_body": request.ResponseBody,
			"error_message": request.ErrorMessage,
			"updated_at":    request.UpdatedAt,
		}).Error
}

func (r *repo) ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]*domain.PressmasterRequest, error) {
	var requests []*domain.PressmasterRequest
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
