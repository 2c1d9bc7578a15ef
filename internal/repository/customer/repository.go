package customer

import (
	"context"

	"vendebot/internal/domain"
)

// Repository persists and fetches customers.
type Repository interface {
	Get(ctx context.Context, phone string) (*domain.Customer, error)
	Upsert(ctx context.Context, c domain.Customer) error
	List(ctx context.Context) ([]domain.Customer, error)
}
