package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Source names what produced an order discount.
type Source string

const (
	SourceNone      Source = "none"
	SourcePromoCode Source = "promo_code"
	SourceTier      Source = "tier"
)

// AppliedCode is a promo code that already passed validation.
type AppliedCode struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// OrderDiscount is the order-level outcome of the discount rules.
type OrderDiscount struct {
	OrderTotal     Money           `json:"orderTotal"`
	Percentage     decimal.Decimal `json:"percentage"`
	Amount         Money           `json:"amount"`
	Rounding       Money           `json:"rounding"`
	FinalTotal     Money           `json:"finalTotal"`
	IsFreeShipping bool            `json:"isFreeShipping"`
	Message        string          `json:"message"`
	Source         Source          `json:"source"`
	Code           string          `json:"code,omitempty"`
	TierID         int64           `json:"tierId,omitempty"`
}

// ResolveOrderDiscount applies either the validated promo code or the tier
// set to orderTotal. A code overrides tiers entirely; the two never stack.
// Negative totals are treated as zero.
func ResolveOrderDiscount(orderTotal Money, tiers TierConfig, code *AppliedCode) OrderDiscount {
	if orderTotal.IsNegative() {
		orderTotal = decimal.Zero
	}
	out := OrderDiscount{
		OrderTotal: orderTotal,
		Percentage: decimal.Zero,
		Source:     SourceNone,
	}
	switch {
	case code != nil:
		out.Percentage = ClampPercent(code.DiscountPercent)
		out.Source = SourcePromoCode
		out.Code = code.Code
		out.Message = fmt.Sprintf("Kode promo %s (%s%%)", code.Code, out.Percentage.String())
	case tiers.Enabled:
		if tier, ok := SelectTier(orderTotal, tiers.Tiers); ok {
			out.Percentage = ClampPercent(tier.DiscountPercent)
			out.IsFreeShipping = tier.FreeShipping
			out.Message = tier.Description
			out.Source = SourceTier
			out.TierID = tier.ID
		}
	}
	out.Amount = PercentOf(orderTotal, out.Percentage)
	net := orderTotal.Sub(out.Amount)
	out.FinalTotal = RoundToNearestHundred(net)
	out.Rounding = out.FinalTotal.Sub(net)
	return out
}
