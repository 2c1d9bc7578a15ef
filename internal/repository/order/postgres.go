package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"vendebot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const ledgerColumns = `id::text, business_id::text, business_name, customer_phone, COALESCE(customer_name, ''), order_snapshot, confirmed_at, delivery_reminder_sent, delivery_confirmed, followup_sent`

func (r *postgresRepo) Insert(ctx context.Context, po domain.PendingOrder) error {
	snapshot, err := json.Marshal(po.Order)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO pending_orders (id, business_id, business_name, customer_phone, customer_name, order_snapshot, confirmed_at)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
`
	_, err = r.pool.Exec(ctx, q,
		po.ID, po.BusinessID, po.BusinessName,
		po.CustomerPhone, po.CustomerName, snapshot, po.ConfirmedAt,
	)
	if err != nil {
		r.logger.Printf("order repo: insert id=%s error=%v", po.ID, err)
	}
	return err
}

func (r *postgresRepo) LatestByCustomer(ctx context.Context, phone string) (*domain.PendingOrder, error) {
	const q = `
SELECT ` + ledgerColumns + `
FROM pending_orders
WHERE customer_phone = $1
ORDER BY confirmed_at DESC
LIMIT 1
`
	po, err := r.scanOrder(r.pool.QueryRow(ctx, q, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return po, nil
}

func (r *postgresRepo) ListByDeliveryDate(ctx context.Context, date string) ([]domain.PendingOrder, error) {
	const q = `
SELECT ` + ledgerColumns + `
FROM pending_orders
WHERE order_snapshot->>'fecha_entrega' = $1
  AND NOT delivery_reminder_sent
  AND NOT delivery_confirmed
`
	return r.queryOrders(ctx, q, date)
}

func (r *postgresRepo) ListUnfollowed(ctx context.Context) ([]domain.PendingOrder, error) {
	const q = `
SELECT ` + ledgerColumns + `
FROM pending_orders
WHERE NOT followup_sent
`
	return r.queryOrders(ctx, q)
}

func (r *postgresRepo) MarkDeliveryReminded(ctx context.Context, id string) error {
	return r.setFlag(ctx, "delivery_reminder_sent", id)
}

func (r *postgresRepo) MarkDeliveryConfirmed(ctx context.Context, id string) error {
	return r.setFlag(ctx, "delivery_confirmed", id)
}

func (r *postgresRepo) MarkFollowedUp(ctx context.Context, id string) error {
	return r.setFlag(ctx, "followup_sent", id)
}

func (r *postgresRepo) setFlag(ctx context.Context, column, id string) error {
	q := `UPDATE pending_orders SET ` + column + ` = TRUE WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		r.logger.Printf("order repo: set %s id=%s error=%v", column, id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, q string, args ...any) ([]domain.PendingOrder, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: query error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.PendingOrder
	for rows.Next() {
		po, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *po)
	}
	return result, rows.Err()
}

func (r *postgresRepo) scanOrder(row pgx.Row) (*domain.PendingOrder, error) {
	var po domain.PendingOrder
	var snapshot []byte
	err := row.Scan(
		&po.ID, &po.BusinessID, &po.BusinessName,
		&po.CustomerPhone, &po.CustomerName, &snapshot, &po.ConfirmedAt,
		&po.DeliveryReminderSent, &po.DeliveryConfirmed, &po.FollowupSent,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &po.Order); err != nil {
		r.logger.Printf("order repo: decode snapshot id=%s err=%v", po.ID, err)
		return nil, err
	}
	return &po, nil
}
