// Package loyalty implements points accrual, redemption and referral codes.
// The balance only moves through these operations and never goes negative.
package loyalty

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"vendebot/internal/domain"
)

// ErrInsufficientPoints rejects a redemption below the required balance.
var ErrInsufficientPoints = errors.New("insufficient points")

// PointsForTotal computes the accrual for a confirmed order:
// floor(total dollars × rate). Never negative.
func PointsForTotal(totalCents, perDollar int64) int64 {
	if totalCents <= 0 || perDollar <= 0 {
		return 0
	}
	return totalCents * perDollar / 100
}

// Accrue credits points to the customer balance.
func Accrue(c *domain.Customer, points int64) {
	if points <= 0 {
		return
	}
	c.PointsBalance += points
}

// Redeem deducts cost points from the balance. Redemption below the cost is
// rejected and the balance is unchanged.
func Redeem(c *domain.Customer, cost int64) error {
	if cost <= 0 || c.PointsBalance < cost {
		return ErrInsufficientPoints
	}
	c.PointsBalance -= cost
	c.PointsRedeemed += cost
	return nil
}

const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// EnsureReferralCode lazily generates the customer's referral code; once
// created it is stable.
func EnsureReferralCode(c *domain.Customer) string {
	if c.ReferralCode != "" {
		return c.ReferralCode
	}
	code := make([]byte, 6)
	max := big.NewInt(int64(len(referralAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand never fails on supported platforms; fall back to a
			// positional pick so the code is still non-empty.
			code[i] = referralAlphabet[i%len(referralAlphabet)]
			continue
		}
		code[i] = referralAlphabet[n.Int64()]
	}
	c.ReferralCode = "REF-" + string(code)
	return c.ReferralCode
}

// RewardHint names how close the customer is to the next reward.
func RewardHint(balance, cost int64) string {
	if cost <= 0 {
		return ""
	}
	if balance >= cost {
		return fmt.Sprintf("¡Ya puedes canjear %d puntos por un descuento! Escribe \"canjear puntos\" 🎁", cost)
	}
	return fmt.Sprintf("Te faltan %d puntos para tu próximo descuento 🎁", cost-balance)
}
