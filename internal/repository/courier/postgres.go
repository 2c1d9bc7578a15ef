package courier

import (
	"context"
	"io"
	"log"

	"vendebot/internal/domain"
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

const courierColumns = `id::text, business_id::text, name, phone, active, available, created_at`

func (r *postgresRepo) ListActiveAvailable(ctx context.Context, businessID string) ([]domain.Courier, error) {
	const q = `SELECT ` + courierColumns + ` FROM couriers WHERE business_id = $1 AND active AND available`
	return r.query(ctx, q, businessID)
}

func (r *postgresRepo) List(ctx context.Context, businessID string) ([]domain.Courier, error) {
	const q = `SELECT ` + courierColumns + ` FROM couriers WHERE business_id = $1 ORDER BY created_at`
	return r.query(ctx, q, businessID)
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Courier) (*domain.Courier, error) {
	const q = `
INSERT INTO couriers (id, business_id, name, phone, active, available)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    phone = EXCLUDED.phone,
    active = EXCLUDED.active,
    available = EXCLUDED.available
RETURNING id::text, created_at
`
	res := c
	err := r.pool.QueryRow(ctx, q, c.ID, c.BusinessID, c.Name, c.Phone, c.Active, c.Available).
		Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("courier repo: upsert name=%s error=%v", c.Name, err)
		return nil, err
	}
	return &res, nil
}

func (r *postgresRepo) Delete(ctx context.Context, businessID, id string) error {
	const q = `DELETE FROM couriers WHERE business_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, q, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Courier, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("courier repo: query error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Courier
	for rows.Next() {
		var c domain.Courier
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &c.Phone, &c.Active, &c.Available, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
