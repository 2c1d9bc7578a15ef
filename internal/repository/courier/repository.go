package courier

import (
	"context"

	"vendebot/internal/domain"
)

// Repository persists couriers per business.
type Repository interface {
	ListActiveAvailable(ctx context.Context, businessID string) ([]domain.Courier, error)
	List(ctx context.Context, businessID string) ([]domain.Courier, error)
	Upsert(ctx context.Context, c domain.Courier) (*domain.Courier, error)
	Delete(ctx context.Context, businessID, id string) error
}
