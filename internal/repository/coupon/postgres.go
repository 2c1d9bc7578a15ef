package coupon

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

const couponColumns = `code, business_id::text, kind, value, active, COALESCE(expires_on, ''), min_subtotal_cents, max_uses, uses, COALESCE(customer_phone, ''), created_at`

func (r *postgresRepo) Get(ctx context.Context, businessID, code string) (*domain.Coupon, error) {
	const q = `SELECT ` + couponColumns + ` FROM coupons WHERE business_id = $1 AND code = $2`
	var c domain.Coupon
	err := r.pool.QueryRow(ctx, q, businessID, domain.NormalizeCouponCode(code)).Scan(
		&c.Code, &c.BusinessID, &c.Kind, &c.Value, &c.Active,
		&c.ExpiresOn, &c.MinSubtotal, &c.MaxUses, &c.Uses,
		&c.CustomerPhone, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("coupon repo: get code=%s error=%v", code, err)
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) List(ctx context.Context, businessID string) ([]domain.Coupon, error) {
	const q = `SELECT ` + couponColumns + ` FROM coupons WHERE business_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, businessID)
	if err != nil {
		r.logger.Printf("coupon repo: list business_id=%s error=%v", businessID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Coupon
	for rows.Next() {
		var c domain.Coupon
		if err := rows.Scan(
			&c.Code, &c.BusinessID, &c.Kind, &c.Value, &c.Active,
			&c.ExpiresOn, &c.MinSubtotal, &c.MaxUses, &c.Uses,
			&c.CustomerPhone, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Coupon) error {
	const q = `
INSERT INTO coupons (code, business_id, kind, value, active, expires_on, min_subtotal_cents, max_uses, uses, customer_phone)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, NULLIF($10, ''))
ON CONFLICT (business_id, code) DO UPDATE SET
    kind = EXCLUDED.kind,
    value = EXCLUDED.value,
    active = EXCLUDED.active,
    expires_on = EXCLUDED.expires_on,
    min_subtotal_cents = EXCLUDED.min_subtotal_cents,
    max_uses = EXCLUDED.max_uses,
    customer_phone = EXCLUDED.customer_phone
`
	_, err := r.pool.Exec(ctx, q,
		domain.NormalizeCouponCode(c.Code), c.BusinessID, c.Kind, c.Value, c.Active,
		c.ExpiresOn, c.MinSubtotal, c.MaxUses, c.Uses, c.CustomerPhone,
	)
	if err != nil {
		r.logger.Printf("coupon repo: upsert code=%s error=%v", c.Code, err)
	}
	return err
}

func (r *postgresRepo) IncrementUse(ctx context.Context, businessID, code string) error {
	const q = `UPDATE coupons SET uses = uses + 1 WHERE business_id = $1 AND code = $2`
	tag, err := r.pool.Exec(ctx, q, businessID, domain.NormalizeCouponCode(code))
	if err != nil {
		r.logger.Printf("coupon repo: increment code=%s error=%v", code, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, businessID, code string) error {
	const q = `DELETE FROM coupons WHERE business_id = $1 AND code = $2`
	tag, err := r.pool.Exec(ctx, q, businessID, domain.NormalizeCouponCode(code))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
