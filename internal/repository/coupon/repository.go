package coupon

import (
	"context"

	"vendebot/internal/domain"
)

// Repository persists coupons per business.
type Repository interface {
	Get(ctx context.Context, businessID, code string) (*domain.Coupon, error)
	List(ctx context.Context, businessID string) ([]domain.Coupon, error)
	Upsert(ctx context.Context, c domain.Coupon) error
	IncrementUse(ctx context.Context, businessID, code string) error
	Delete(ctx context.Context, businessID, code string) error
}
