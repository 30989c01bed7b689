package catalog

import (
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOption selects listing order.
type SortOption string

const (
	SortDefault   SortOption = "default"
	SortNameAsc   SortOption = "name-asc"
	SortNameDesc  SortOption = "name-desc"
	SortPriceAsc  SortOption = "price-asc"
	SortPriceDesc SortOption = "price-desc"
)

// ParseSortOption maps a query value to a SortOption. Empty means default.
func ParseSortOption(raw string) (SortOption, bool) {
	switch opt := SortOption(strings.ToLower(strings.TrimSpace(raw))); opt {
	case "":
		return SortDefault, true
	case SortDefault, SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc:
		return opt, true
	default:
		return SortDefault, false
	}
}

// collate.Collator keeps internal buffers and is not safe for concurrent use.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Indonesian, collate.Numeric, collate.IgnoreCase)
)

// compareNames orders "Semen 2kg" before "Semen 10kg".
func compareNames(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// comparePrices puts missing prices last regardless of direction.
func comparePrices(a, b decimal.NullDecimal, desc bool) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return 1
	case !b.Valid:
		return -1
	}
	c := a.Decimal.Cmp(b.Decimal)
	if desc {
		return -c
	}
	return c
}

// SortProducts returns a sorted copy. Default keeps catalog order; price
// ties fall back to natural name order.
func SortProducts(items []Listing, opt SortOption) []Listing {
	out := slices.Clone(items)
	switch opt {
	case SortNameAsc:
		slices.SortStableFunc(out, func(a, b Listing) int { return compareNames(a.Name, b.Name) })
	case SortNameDesc:
		slices.SortStableFunc(out, func(a, b Listing) int { return compareNames(b.Name, a.Name) })
	case SortPriceAsc, SortPriceDesc:
		desc := opt == SortPriceDesc
		slices.SortStableFunc(out, func(a, b Listing) int {
			if c := comparePrices(a.Price, b.Price, desc); c != 0 {
				return c
			}
			return compareNames(a.Name, b.Name)
		})
	}
	return out
}

// SortBrands returns a sorted copy. Price options order brands by their
// cheapest priced product; products inside each brand are sorted too.
func SortBrands(brands []Brand, opt SortOption) []Brand {
	out := make([]Brand, len(brands))
	for i, b := range brands {
		b.Products = sortBrandProducts(b.Products, opt)
		out[i] = b
	}
	switch opt {
	case SortNameAsc:
		slices.SortStableFunc(out, func(a, b Brand) int { return compareNames(a.Name, b.Name) })
	case SortNameDesc:
		slices.SortStableFunc(out, func(a, b Brand) int { return compareNames(b.Name, a.Name) })
	case SortPriceAsc, SortPriceDesc:
		desc := opt == SortPriceDesc
		slices.SortStableFunc(out, func(a, b Brand) int {
			if c := comparePrices(brandFloor(a), brandFloor(b), desc); c != 0 {
				return c
			}
			return compareNames(a.Name, b.Name)
		})
	}
	return out
}

func sortBrandProducts(products []Product, opt SortOption) []Product {
	out := slices.Clone(products)
	switch opt {
	case SortNameAsc:
		slices.SortStableFunc(out, func(a, b Product) int { return compareNames(a.Name, b.Name) })
	case SortNameDesc:
		slices.SortStableFunc(out, func(a, b Product) int { return compareNames(b.Name, a.Name) })
	case SortPriceAsc, SortPriceDesc:
		desc := opt == SortPriceDesc
		slices.SortStableFunc(out, func(a, b Product) int {
			if c := comparePrices(a.Price, b.Price, desc); c != 0 {
				return c
			}
			return compareNames(a.Name, b.Name)
		})
	}
	return out
}

func brandFloor(b Brand) decimal.NullDecimal {
	var floor decimal.NullDecimal
	for _, p := range b.Products {
		if !p.Price.Valid {
			continue
		}
		if !floor.Valid || p.Price.Decimal.LessThan(floor.Decimal) {
			floor = p.Price
		}
	}
	return floor
}
