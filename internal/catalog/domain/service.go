package domain

import (
	"context"
	"errors"
)

type ListProductRequest struct {
	Category string
}

type ListProductResponse struct {
	Products []Product `json:"products"`
}

type GetProductRequest struct {
	ID string
}

type Service interface {
	List(context.Context, ListProductRequest) (ListProductResponse, error)
	Get(context.Context, GetProductRequest) (Product, error)
}

var (
	ErrInvalidID = errors.New("invalid_product_id")
	ErrNotFound  = errors.New("product_not_found")
)
