package customer

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

const customerColumns = `phone, COALESCE(name, ''), first_contact, last_contact, order_count, total_spent_cents, history, points_balance, points_redeemed, COALESCE(referral_code, ''), reengaged`

func (r *postgresRepo) Get(ctx context.Context, phone string) (*domain.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, phone))
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Customer) error {
	histJSON, err := json.Marshal(c.History)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO customers (phone, name, first_contact, last_contact, order_count, total_spent_cents, history, points_balance, points_redeemed, referral_code, reengaged)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11)
ON CONFLICT (phone) DO UPDATE SET
    name = EXCLUDED.name,
    last_contact = EXCLUDED.last_contact,
    order_count = EXCLUDED.order_count,
    total_spent_cents = EXCLUDED.total_spent_cents,
    history = EXCLUDED.history,
    points_balance = EXCLUDED.points_balance,
    points_redeemed = EXCLUDED.points_redeemed,
    referral_code = EXCLUDED.referral_code,
    reengaged = EXCLUDED.reengaged
`
	_, err = r.pool.Exec(ctx, q,
		c.Phone, c.Name, c.FirstContact, c.LastContact,
		c.OrderCount, c.TotalSpentCents, histJSON,
		c.PointsBalance, c.PointsRedeemed, c.ReferralCode, c.Reengaged,
	)
	if err != nil {
		r.logger.Printf("customer repo: upsert phone=%s error=%v", c.Phone, err)
	}
	return err
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers ORDER BY last_contact DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("customer repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		c, err := r.scanCustomerRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	c, err := r.scanCustomerRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresRepo) scanCustomerRow(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	var histJSON []byte
	err := row.Scan(
		&c.Phone, &c.Name, &c.FirstContact, &c.LastContact,
		&c.OrderCount, &c.TotalSpentCents, &histJSON,
		&c.PointsBalance, &c.PointsRedeemed, &c.ReferralCode, &c.Reengaged,
	)
	if err != nil {
		return nil, err
	}
	if len(histJSON) > 0 {
		if err := json.Unmarshal(histJSON, &c.History); err != nil {
			r.logger.Printf("customer repo: decode history phone=%s err=%v", c.Phone, err)
			return nil, err
		}
	}
	return &c, nil
}
