package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-material/internal/pricing"
)

const (
	LabelNoProducts = "Belum ada produk"
	LabelNoPrice    = "Harga belum tersedia"
)

// Range summarises the prices of a category.
type Range struct {
	Label       string           `json:"label"`
	Min         *decimal.Decimal `json:"min,omitempty"`
	Max         *decimal.Decimal `json:"max,omitempty"`
	HasProducts bool             `json:"hasProducts"`
	HasPrice    bool             `json:"hasPrice"`
}

// PriceRange scans the category's direct and subcategory brands. Products
// without a numeric price count as products but not as prices.
func PriceRange(c Category) Range {
	var (
		r      Range
		lo, hi decimal.Decimal
	)
	visit := func(p Product) {
		r.HasProducts = true
		if !p.Price.Valid {
			return
		}
		if !r.HasPrice || p.Price.Decimal.LessThan(lo) {
			lo = p.Price.Decimal
		}
		if !r.HasPrice || p.Price.Decimal.GreaterThan(hi) {
			hi = p.Price.Decimal
		}
		r.HasPrice = true
	}
	for _, b := range DirectBrands(c) {
		for _, p := range b.Products {
			visit(p)
		}
	}
	for _, sub := range c.SubCategories {
		for _, b := range sub.Brands {
			for _, p := range b.Products {
				visit(p)
			}
		}
	}
	switch {
	case !r.HasProducts:
		r.Label = LabelNoProducts
	case !r.HasPrice:
		r.Label = LabelNoPrice
	default:
		r.Min, r.Max = &lo, &hi
		r.Label = pricing.RangeLabel(lo, hi)
	}
	return r
}

// WithPriceRanges returns a copy of categories with PriceRange filled in.
func WithPriceRanges(categories []Category) []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		r := PriceRange(c)
		c.PriceRange = &r
		out[i] = c
	}
	return out
}
