package business

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

const businessColumns = `id::text, name, kind, owner_phone, bank_name, bank_account, bank_holder, COALESCE(welcome_message, ''), active, created_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	const q = `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`
	var b domain.Business
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&b.ID, &b.Name, &b.Kind, &b.OwnerPhone,
		&b.BankName, &b.BankAccount, &b.BankHolder,
		&b.WelcomeMessage, &b.Active, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("business repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepo) ListActive(ctx context.Context) ([]domain.Business, error) {
	const q = `SELECT ` + businessColumns + ` FROM businesses WHERE active ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("business repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Business
	for rows.Next() {
		var b domain.Business
		if err := rows.Scan(
			&b.ID, &b.Name, &b.Kind, &b.OwnerPhone,
			&b.BankName, &b.BankAccount, &b.BankHolder,
			&b.WelcomeMessage, &b.Active, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *postgresRepo) AssignmentFor(ctx context.Context, phone string) (string, error) {
	const q = `SELECT business_id::text FROM customer_business WHERE phone = $1`
	var id string
	err := r.pool.QueryRow(ctx, q, phone).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		r.logger.Printf("business repo: assignment phone=%s error=%v", phone, err)
		return "", err
	}
	return id, nil
}

func (r *postgresRepo) Assign(ctx context.Context, phone, businessID string) error {
	const q = `
INSERT INTO customer_business (phone, business_id)
VALUES ($1, $2)
ON CONFLICT (phone) DO UPDATE SET business_id = EXCLUDED.business_id
`
	_, err := r.pool.Exec(ctx, q, phone, businessID)
	if err != nil {
		r.logger.Printf("business repo: assign phone=%s business_id=%s error=%v", phone, businessID, err)
	}
	return err
}
