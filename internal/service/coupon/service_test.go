package coupon

import (
	"errors"
	"testing"

	"vendebot/internal/domain"
)

func validCoupon() domain.Coupon {
	return domain.Coupon{
		Code:        "DULCE5",
		Kind:        domain.CouponFixed,
		Value:       500,
		Active:      true,
		ExpiresOn:   "2026-12-31",
		MinSubtotal: 2000,
		MaxUses:     50,
		Uses:        10,
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := Validate(validCoupon(), 2500, "593990000009", "2026-06-01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.Coupon)
		sub    int64
		phone  string
		today  string
		want   error
	}{
		{"inactive", func(c *domain.Coupon) { c.Active = false }, 2500, "p", "2026-06-01", ErrInactive},
		{"expired", nil, 2500, "p", "2027-01-01", ErrExpired},
		{"expires today still valid", nil, 2500, "p", "2026-12-31", nil},
		{"exhausted", func(c *domain.Coupon) { c.Uses = 50 }, 2500, "p", "2026-06-01", ErrExhausted},
		{"unlimited uses", func(c *domain.Coupon) { c.MaxUses = 0; c.Uses = 9999 }, 2500, "p", "2026-06-01", nil},
		{"below minimum", nil, 1999, "p", "2026-06-01", ErrBelowMinimum},
		{"at minimum", nil, 2000, "p", "2026-06-01", nil},
		{"wrong customer", func(c *domain.Coupon) { c.CustomerPhone = "other" }, 2500, "p", "2026-06-01", ErrWrongCustomer},
		{"bound customer matches", func(c *domain.Coupon) { c.CustomerPhone = "p" }, 2500, "p", "2026-06-01", nil},
	}
	for _, tc := range cases {
		c := validCoupon()
		if tc.mutate != nil {
			tc.mutate(&c)
		}
		err := Validate(c, tc.sub, tc.phone, tc.today)
		if !errors.Is(err, tc.want) && !(err == nil && tc.want == nil) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestValidateNeverMutates(t *testing.T) {
	c := validCoupon()
	before := c
	_ = Validate(c, 2500, "p", "2026-06-01")
	if c != before {
		t.Fatal("validation must not mutate the coupon")
	}
}

func TestReasonCoversEveryError(t *testing.T) {
	for _, err := range []error{ErrInactive, ErrExpired, ErrExhausted, ErrBelowMinimum, ErrWrongCustomer} {
		if Reason(err) == "el cupón no es válido" {
			t.Errorf("no specific reason for %v", err)
		}
	}
	if Reason(errors.New("other")) != "el cupón no es válido" {
		t.Fatal("unknown error must get the generic reason")
	}
}
