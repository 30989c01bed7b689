// Package pricing holds the discount rules of the storefront. Everything in
// here is pure: loaders hand in already-fetched promotions, tiers and codes.
package pricing

import "github.com/shopspring/decimal"

// Money is an amount in rupiah. Percentage markdowns can leave fractions, so
// amounts are decimals rather than integer minor units.
type Money = decimal.Decimal

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// RoundToNearestHundred rounds half up to a multiple of 100. Amounts handled
// here are never negative, where half up and half away from zero agree.
func RoundToNearestHundred(x Money) Money {
	return x.Round(-2)
}

// ClampPercent bounds p to [0, 100].
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// ApplyPercent returns price reduced by pct percent.
func ApplyPercent(price Money, pct decimal.Decimal) Money {
	pct = ClampPercent(pct)
	if pct.IsZero() {
		return price
	}
	return price.Mul(hundred.Sub(pct)).Div(hundred)
}

// PercentOf returns pct percent of amount.
func PercentOf(amount Money, pct decimal.Decimal) Money {
	return amount.Mul(ClampPercent(pct)).Div(hundred)
}
