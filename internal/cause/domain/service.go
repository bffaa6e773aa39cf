package domain

import (
	"context"
	"errors"
)

type CreateCauseRequest struct {
	Name        string
	Description string
	Tags        []string
	WebsiteURL  string
}

type GetCauseRequest struct {
	ID   string
	Name string
}

type ListCauseResponse struct {
	Causes []Cause `json:"causes"`
}

type Service interface {
	Create(context.Context, CreateCauseRequest) (Cause, error)
	List(context.Context) (ListCauseResponse, error)
	Get(context.Context, GetCauseRequest) (Cause, error)
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidID       = errors.New("invalid_id")
	ErrDuplicateCause  = errors.New("duplicate_cause")
	ErrNotFound        = errors.New("not_found")
)
