package product

import (
	"context"

	"vendebot/internal/domain"
)

// Repository persists catalog products per business.
type Repository interface {
	ListActive(ctx context.Context, businessID string) ([]domain.Product, error)
	List(ctx context.Context, businessID string) ([]domain.Product, error)
	GetByRef(ctx context.Context, businessID string, ref int) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, businessID string, ref int) error
}
