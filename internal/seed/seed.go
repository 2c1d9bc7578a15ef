package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Ref         int
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	Emoji       string
	ImageURL    string
}

type couponSeed struct {
	Code        string
	Kind        string
	Value       int64
	MinSubtotal int64
	MaxUses     int
}

// Apply inserts a demo business with a small catalog, coupons and a courier
// for manual testing. It is idempotent: reruns update rather than duplicate.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	businessID, err := ensureBusiness(ctx, pool, "Dulce Tentación", "593990000001")
	if err != nil {
		return fmt.Errorf("ensure business: %w", err)
	}

	products := []productSeed{
		{Ref: 1, Name: "Torta de chocolate", Description: "Torta húmeda de chocolate, 8 porciones", PriceCents: 1850, Stock: 10, Emoji: "🍫"},
		{Ref: 2, Name: "Cheesecake de frutos rojos", Description: "Cheesecake artesanal con salsa de frutos rojos", PriceCents: 2200, Stock: 6, Emoji: "🍰"},
		{Ref: 3, Name: "Caja de cupcakes x6", Description: "Seis cupcakes surtidos", PriceCents: 1200, Stock: 15, Emoji: "🧁"},
		{Ref: 4, Name: "Galletas decoradas x12", Description: "Docena de galletas de mantequilla decoradas", PriceCents: 900, Stock: 20, Emoji: "🍪"},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, businessID, p); err != nil {
			return fmt.Errorf("upsert product %d: %w", p.Ref, err)
		}
	}

	coupons := []couponSeed{
		{Code: "BIENVENIDO10", Kind: "porcentaje", Value: 10, MinSubtotal: 1000},
		{Code: "DULCE5", Kind: "fijo", Value: 500, MinSubtotal: 2000, MaxUses: 50},
	}
	for _, c := range coupons {
		if err := upsertCoupon(ctx, pool, businessID, c); err != nil {
			return fmt.Errorf("upsert coupon %s: %w", c.Code, err)
		}
	}

	if err := ensureCourier(ctx, pool, businessID, "Carlos", "593990000002"); err != nil {
		return fmt.Errorf("ensure courier: %w", err)
	}

	return nil
}

func ensureBusiness(ctx context.Context, pool *pgxpool.Pool, name, ownerPhone string) (string, error) {
	const sel = `SELECT id::text FROM businesses WHERE name = $1`
	var id string
	if err := pool.QueryRow(ctx, sel, name).Scan(&id); err == nil {
		return id, nil
	}

	const ins = `
INSERT INTO businesses (name, kind, owner_phone, bank_name, bank_account, bank_holder, welcome_message)
VALUES ($1, 'pasteleria', $2, 'Banco Pichincha', '2203456789', 'Dulce Tentación S.A.',
        '¡Hola! 👋 Bienvenido a *Dulce Tentación* 🍰 ¿Qué antojo te traemos hoy?')
RETURNING id::text
`
	if err := pool.QueryRow(ctx, ins, name, ownerPhone).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, businessID string, p productSeed) error {
	const q = `
INSERT INTO products (business_id, ref, name, description, price_cents, stock, emoji, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
ON CONFLICT (business_id, ref) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    stock = EXCLUDED.stock,
    emoji = EXCLUDED.emoji,
    image_url = EXCLUDED.image_url
`
	_, err := pool.Exec(ctx, q, businessID, p.Ref, p.Name, p.Description, p.PriceCents, p.Stock, p.Emoji, p.ImageURL)
	return err
}

func upsertCoupon(ctx context.Context, pool *pgxpool.Pool, businessID string, c couponSeed) error {
	const q = `
INSERT INTO coupons (code, business_id, kind, value, min_subtotal_cents, max_uses)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (business_id, code) DO UPDATE
SET kind = EXCLUDED.kind,
    value = EXCLUDED.value,
    min_subtotal_cents = EXCLUDED.min_subtotal_cents,
    max_uses = EXCLUDED.max_uses
`
	_, err := pool.Exec(ctx, q, c.Code, businessID, c.Kind, c.Value, c.MinSubtotal, c.MaxUses)
	return err
}

func ensureCourier(ctx context.Context, pool *pgxpool.Pool, businessID, name, phone string) error {
	const sel = `SELECT 1 FROM couriers WHERE business_id = $1 AND phone = $2`
	var one int
	if err := pool.QueryRow(ctx, sel, businessID, phone).Scan(&one); err == nil {
		return nil
	}
	const ins = `INSERT INTO couriers (business_id, name, phone) VALUES ($1, $2, $3)`
	_, err := pool.Exec(ctx, ins, businessID, name, phone)
	return err
}
