package domain

import (
	"strings"
	"time"
)

// Coupon discount kinds.
const (
	CouponPercent = "porcentaje"
	CouponFixed   = "fijo"
)

// Coupon is a discount code. Usage is counted at order confirmation, never
// at validation time.
type Coupon struct {
	Code          string    `json:"codigo"`
	BusinessID    string    `json:"-"`
	Kind          string    `json:"tipo"`
	Value         int64     `json:"valor"` // percent for porcentaje, cents for fijo
	Active        bool      `json:"activo"`
	ExpiresOn     string    `json:"expira,omitempty"` // YYYY-MM-DD, empty = never
	MinSubtotal   int64     `json:"minimo_centavos,omitempty"`
	MaxUses       int       `json:"usos_maximos,omitempty"` // 0 = unlimited
	Uses          int       `json:"usos_actuales"`
	CustomerPhone string    `json:"cliente,omitempty"` // bound customer, empty = anyone
	CreatedAt     time.Time `json:"createdAt"`
}

// NormalizeCouponCode folds a code to its canonical form.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DiscountCents computes the discount this coupon grants on a subtotal,
// clamped to the subtotal.
func (c Coupon) DiscountCents(subtotal int64) int64 {
	var d int64
	switch c.Kind {
	case CouponPercent:
		d = subtotal * c.Value / 100
	case CouponFixed:
		d = c.Value
	}
	if d < 0 {
		d = 0
	}
	if d > subtotal {
		d = subtotal
	}
	return d
}
