package promotion

import (
	"context"

	"vendebot/internal/domain"
)

// Repository persists promotions per business.
type Repository interface {
	ListActive(ctx context.Context, businessID string) ([]domain.Promotion, error)
	List(ctx context.Context, businessID string) ([]domain.Promotion, error)
	Upsert(ctx context.Context, p domain.Promotion) (*domain.Promotion, error)
	Delete(ctx context.Context, businessID, id string) error
}
