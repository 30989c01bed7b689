package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Tier is a spend bracket. MaxSpend nil means unbounded.
type Tier struct {
	ID              int64           `json:"id"`
	MinSpend        Money           `json:"minSpend"`
	MaxSpend        *Money          `json:"maxSpend"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	FreeShipping    bool            `json:"freeShipping"`
	Active          bool            `json:"isActive"`
	Description     string          `json:"description"`
}

// Contains reports whether total falls in [MinSpend, MaxSpend).
func (t Tier) Contains(total Money) bool {
	if total.LessThan(t.MinSpend) {
		return false
	}
	return t.MaxSpend == nil || total.LessThan(*t.MaxSpend)
}

// TierConfig is the tier set plus the storefront feature flag.
type TierConfig struct {
	Enabled bool   `json:"enabled"`
	Tiers   []Tier `json:"tiers"`
}

// SortTiers returns a copy ordered by ascending MinSpend. Equal minimums keep
// their input order.
func SortTiers(tiers []Tier) []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinSpend.LessThan(out[j].MinSpend) })
	return out
}

// SelectTier picks the first active tier, by ascending minimum spend, whose
// bracket contains total.
func SelectTier(total Money, tiers []Tier) (Tier, bool) {
	for _, t := range SortTiers(tiers) {
		if !t.Active {
			continue
		}
		if t.Contains(total) {
			return t, true
		}
	}
	return Tier{}, false
}

// BannerTiers orders the tiers shown on the storefront banner. Only active
// tiers that grant something are kept; discounting tiers come first by
// descending percentage, free-shipping-only tiers follow by minimum spend.
func BannerTiers(tiers []Tier) []Tier {
	var discounted, shippingOnly []Tier
	for _, t := range tiers {
		if !t.Active {
			continue
		}
		switch {
		case t.DiscountPercent.IsPositive():
			discounted = append(discounted, t)
		case t.FreeShipping:
			shippingOnly = append(shippingOnly, t)
		}
	}
	sort.SliceStable(discounted, func(i, j int) bool {
		return discounted[i].DiscountPercent.GreaterThan(discounted[j].DiscountPercent)
	})
	shippingOnly = SortTiers(shippingOnly)
	return append(discounted, shippingOnly...)
}
