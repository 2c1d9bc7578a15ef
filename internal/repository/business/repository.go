package business

import (
	"context"

	"vendebot/internal/domain"
)

// Repository persists businesses and the customer→business assignment map.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Business, error)
	ListActive(ctx context.Context) ([]domain.Business, error)
	AssignmentFor(ctx context.Context, phone string) (string, error)
	Assign(ctx context.Context, phone, businessID string) error
}
