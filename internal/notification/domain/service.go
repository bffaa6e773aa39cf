package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateNotificationRequest struct {
	UserID snowflake.ID
	Type   string
	Title  string
	Body   string
	Data   any
}

type ListNotificationRequest struct {
	UnreadOnly bool
}

type ListNotificationResponse struct {
	Notifications []Notification `json:"notifications"`
}

type Service interface {
	Create(context.Context, CreateNotificationRequest) (Notification, error)
	List(context.Context, ListNotificationRequest) (ListNotificationResponse, error)
	MarkRead(ctx context.Context, id string) error
}

var (
	ErrInvalidID       = errors.New("invalid_notification_id")
	ErrNotFound        = errors.New("notification_not_found")
	ErrUnauthenticated = errors.New("unauthenticated")
)
