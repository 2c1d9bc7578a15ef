package promotion

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

const promotionColumns = `id::text, business_id::text, title, COALESCE(description, ''), active, COALESCE(starts_on, ''), COALESCE(ends_on, ''), created_at`

func (r *postgresRepo) ListActive(ctx context.Context, businessID string) ([]domain.Promotion, error) {
	const q = `SELECT ` + promotionColumns + ` FROM promotions WHERE business_id = $1 AND active ORDER BY created_at DESC`
	return r.query(ctx, q, businessID)
}

func (r *postgresRepo) List(ctx context.Context, businessID string) ([]domain.Promotion, error) {
	const q = `SELECT ` + promotionColumns + ` FROM promotions WHERE business_id = $1 ORDER BY created_at DESC`
	return r.query(ctx, q, businessID)
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Promotion) (*domain.Promotion, error) {
	const q = `
INSERT INTO promotions (id, business_id, title, description, active, starts_on, ends_on)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, ''))
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    active = EXCLUDED.active,
    starts_on = EXCLUDED.starts_on,
    ends_on = EXCLUDED.ends_on
RETURNING id::text, created_at
`
	res := p
	err := r.pool.QueryRow(ctx, q, p.ID, p.BusinessID, p.Title, p.Description, p.Active, p.StartsOn, p.EndsOn).
		Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("promotion repo: upsert title=%s error=%v", p.Title, err)
		return nil, err
	}
	return &res, nil
}

func (r *postgresRepo) Delete(ctx context.Context, businessID, id string) error {
	const q = `DELETE FROM promotions WHERE business_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, q, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Promotion, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("promotion repo: query error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Promotion
	for rows.Next() {
		var p domain.Promotion
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.Title, &p.Description, &p.Active, &p.StartsOn, &p.EndsOn, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
