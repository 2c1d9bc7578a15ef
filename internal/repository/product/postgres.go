package product

import (
	"context"
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

const productColumns = `id::text, business_id::text, ref, name, COALESCE(description, ''), price_cents, stock, COALESCE(emoji, ''), COALESCE(image_url, ''), active, created_at`

func (r *postgresRepo) ListActive(ctx context.Context, businessID string) ([]domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE business_id = $1 AND active ORDER BY ref`
	return r.query(ctx, q, businessID)
}

func (r *postgresRepo) List(ctx context.Context, businessID string) ([]domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE business_id = $1 ORDER BY ref`
	return r.query(ctx, q, businessID)
}

func (r *postgresRepo) GetByRef(ctx context.Context, businessID string, ref int) (*domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE business_id = $1 AND ref = $2`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, businessID, ref).Scan(
		&p.ID, &p.BusinessID, &p.Ref, &p.Name, &p.Description,
		&p.PriceCents, &p.Stock, &p.Emoji, &p.ImageURL, &p.Active, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get business_id=%s ref=%d error=%v", businessID, ref, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, business_id, ref, name, description, price_cents, stock, emoji, image_url, active)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10)
ON CONFLICT (business_id, ref) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    stock = EXCLUDED.stock,
    emoji = EXCLUDED.emoji,
    image_url = EXCLUDED.image_url,
    active = EXCLUDED.active
RETURNING id::text, created_at
`
	res := p
	err := r.pool.QueryRow(ctx, q,
		p.ID, p.BusinessID, p.Ref, p.Name, p.Description,
		p.PriceCents, p.Stock, p.Emoji, p.ImageURL, p.Active,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert business_id=%s ref=%d error=%v", p.BusinessID, p.Ref, err)
		return nil, err
	}
	return &res, nil
}

func (r *postgresRepo) Delete(ctx context.Context, businessID string, ref int) error {
	const q = `DELETE FROM products WHERE business_id = $1 AND ref = $2`
	tag, err := r.pool.Exec(ctx, q, businessID, ref)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: query error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.BusinessID, &p.Ref, &p.Name, &p.Description,
			&p.PriceCents, &p.Stock, &p.Emoji, &p.ImageURL, &p.Active, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
