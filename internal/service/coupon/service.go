// Package coupon holds the coupon validation and discount rules. Validation
// never mutates a coupon; usage is counted only at order confirmation.
package coupon

import (
	"errors"

	"vendebot/internal/domain"
)

// Structured validation failures, reported to the customer as the matching
// Spanish reason. A failed coupon attempt never corrupts the order totals.
var (
	ErrInactive      = errors.New("coupon inactive")
	ErrExpired       = errors.New("coupon expired")
	ErrExhausted     = errors.New("coupon exhausted")
	ErrBelowMinimum  = errors.New("subtotal below coupon minimum")
	ErrWrongCustomer = errors.New("coupon bound to another customer")
)

// Validate checks every acceptance rule for a coupon against the current
// subtotal, customer and local date (YYYY-MM-DD).
func Validate(c domain.Coupon, subtotalCents int64, phone, today string) error {
	if !c.Active {
		return ErrInactive
	}
	if c.ExpiresOn != "" && today > c.ExpiresOn {
		return ErrExpired
	}
	if c.MaxUses > 0 && c.Uses >= c.MaxUses {
		return ErrExhausted
	}
	if c.MinSubtotal > 0 && subtotalCents < c.MinSubtotal {
		return ErrBelowMinimum
	}
	if c.CustomerPhone != "" && c.CustomerPhone != phone {
		return ErrWrongCustomer
	}
	return nil
}

// Reason translates a validation failure into the customer-facing message.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInactive):
		return "el cupón ya no está activo"
	case errors.Is(err, ErrExpired):
		return "el cupón está vencido"
	case errors.Is(err, ErrExhausted):
		return "el cupón alcanzó su límite de usos"
	case errors.Is(err, ErrBelowMinimum):
		return "el pedido no alcanza el mínimo del cupón"
	case errors.Is(err, ErrWrongCustomer):
		return "el cupón pertenece a otro cliente"
	default:
		return "el cupón no es válido"
	}
}
