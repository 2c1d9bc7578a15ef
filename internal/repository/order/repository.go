package order

import (
	"context"

	"vendebot/internal/domain"
)

// Repository persists the pending-orders ledger written at confirmation.
// Ledger entries outlive the conversation and feed the reconciliation jobs.
type Repository interface {
	Insert(ctx context.Context, po domain.PendingOrder) error
	LatestByCustomer(ctx context.Context, phone string) (*domain.PendingOrder, error)
	ListByDeliveryDate(ctx context.Context, date string) ([]domain.PendingOrder, error)
	ListUnfollowed(ctx context.Context) ([]domain.PendingOrder, error)
	MarkDeliveryReminded(ctx context.Context, id string) error
	MarkDeliveryConfirmed(ctx context.Context, id string) error
	MarkFollowedUp(ctx context.Context, id string) error
}
