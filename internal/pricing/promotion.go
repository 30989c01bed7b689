package pricing

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PromotionType is the stored discriminator of a promotion.
type PromotionType string

const (
	TypeSitewide        PromotionType = "sitewide"
	TypeProductSpecific PromotionType = "product_specific"
)

// Gimmick is the visual emphasis of the promotion banner. It has no pricing effect.
type Gimmick string

const (
	GimmickPulse     Gimmick = "pulse"
	GimmickGlow      Gimmick = "glow"
	GimmickShake     Gimmick = "shake"
	GimmickCountdown Gimmick = "countdown"
)

// Scope decides which products a promotion covers.
type Scope interface {
	Type() PromotionType
	Covers(productID int64) bool
}

// Sitewide covers every product.
type Sitewide struct{}

func (Sitewide) Type() PromotionType { return TypeSitewide }
func (Sitewide) Covers(int64) bool   { return true }

// ProductSpecific covers an enumerated set of products.
type ProductSpecific struct {
	ProductIDs map[int64]struct{}
}

// NewProductSpecific builds the scope from a list of ids. Duplicates collapse.
func NewProductSpecific(ids []int64) ProductSpecific {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return ProductSpecific{ProductIDs: set}
}

func (ProductSpecific) Type() PromotionType { return TypeProductSpecific }

func (p ProductSpecific) Covers(productID int64) bool {
	_, ok := p.ProductIDs[productID]
	return ok
}

// IDs returns the covered ids in ascending order.
func (p ProductSpecific) IDs() []int64 {
	out := make([]int64, 0, len(p.ProductIDs))
	for id := range p.ProductIDs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseScope maps the stored discriminator onto a Scope.
func ParseScope(kind string, productIDs []int64) (Scope, error) {
	switch PromotionType(kind) {
	case TypeSitewide:
		return Sitewide{}, nil
	case TypeProductSpecific:
		return NewProductSpecific(productIDs), nil
	default:
		return nil, fmt.Errorf("unknown promotion type %q", kind)
	}
}

// Promotion is a running storefront promotion.
type Promotion struct {
	ID              int64
	Title           string
	Subtitle        string
	CTAText         string
	DiscountPercent decimal.Decimal
	EndDate         time.Time
	Gimmick         Gimmick
	Scope           Scope
}

type promotionJSON struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Subtitle        string          `json:"subtitle,omitempty"`
	CTAText         string          `json:"ctaText,omitempty"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	EndDate         time.Time       `json:"endsAt"`
	Gimmick         Gimmick         `json:"gimmick"`
	Type            PromotionType   `json:"type"`
	ProductIDs      []int64         `json:"productIds,omitempty"`
}

// MarshalJSON flattens the scope into type and productIds.
func (p Promotion) MarshalJSON() ([]byte, error) {
	out := promotionJSON{
		ID:              p.ID,
		Title:           p.Title,
		Subtitle:        p.Subtitle,
		CTAText:         p.CTAText,
		DiscountPercent: p.DiscountPercent,
		EndDate:         p.EndDate,
		Gimmick:         p.Gimmick,
		Type:            TypeSitewide,
	}
	switch s := p.Scope.(type) {
	case ProductSpecific:
		out.Type = TypeProductSpecific
		out.ProductIDs = s.IDs()
	case nil:
	default:
		out.Type = s.Type()
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the scope from type and productIds.
func (p *Promotion) UnmarshalJSON(data []byte) error {
	var in promotionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	scope, err := ParseScope(string(in.Type), in.ProductIDs)
	if err != nil {
		return err
	}
	*p = Promotion{
		ID:              in.ID,
		Title:           in.Title,
		Subtitle:        in.Subtitle,
		CTAText:         in.CTAText,
		DiscountPercent: in.DiscountPercent,
		EndDate:         in.EndDate,
		Gimmick:         in.Gimmick,
		Scope:           scope,
	}
	return nil
}

// ResolveProductDiscount returns the percentage markdown the active promotion
// grants productID. A nil promotion or an uncovered product yields zero.
func ResolveProductDiscount(productID int64, active *Promotion) decimal.Decimal {
	if active == nil || active.Scope == nil {
		return decimal.Zero
	}
	if !active.Scope.Covers(productID) {
		return decimal.Zero
	}
	return ClampPercent(active.DiscountPercent)
}
