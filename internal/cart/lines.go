package cart

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-material/internal/catalog"
	"github.com/noah-isme/backend-material/internal/pricing"
)

// Line is one priced product in the cart.
type Line struct {
	ProductID       int64           `json:"productId"`
	Name            string          `json:"name"`
	BrandName       string          `json:"brandName"`
	Unit            string          `json:"unit,omitempty"`
	Requested       int             `json:"requestedQuantity"`
	Quantity        int             `json:"quantity"`
	UnitPrice       pricing.Money   `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	FinalUnitPrice  pricing.Money   `json:"finalUnitPrice"`
	Subtotal        pricing.Money   `json:"subtotal"`
}

// NoticeKind classifies a Notice.
type NoticeKind string

const (
	NoticeMinOrder    NoticeKind = "min_order"
	NoticeUnavailable NoticeKind = "unavailable"
)

// Notice tells the shopper their cart was adjusted.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	ProductID int64      `json:"productId"`
	Requested int        `json:"requestedQuantity"`
	Quantity  int        `json:"quantity"`
	Message   string     `json:"message"`
}

// BuildLines prices every product with a positive quantity. Lines follow
// catalog order; a product reachable through several brands yields one line.
// Quantities below a product's minimum order are raised to it and reported.
func BuildLines(quantities map[int64]int, categories []catalog.Category, promotion *pricing.Promotion) ([]Line, []Notice) {
	lines := []Line{}
	var notices []Notice
	seen := make(map[int64]struct{}, len(quantities))

	for _, l := range catalog.Flatten(categories) {
		requested := quantities[l.ID]
		if requested <= 0 {
			continue
		}
		seen[l.ID] = struct{}{}

		billed := requested
		if minimum := l.MinOrder.Threshold(); billed < minimum {
			billed = minimum
			notices = append(notices, Notice{
				Kind:      NoticeMinOrder,
				ProductID: l.ID,
				Requested: requested,
				Quantity:  billed,
				Message:   minOrderMessage(l.Product, billed),
			})
		}

		pct := pricing.ResolveProductDiscount(l.ID, promotion)
		final := pricing.ApplyPercent(l.UnitPrice(), pct)
		lines = append(lines, Line{
			ProductID:       l.ID,
			Name:            l.Name,
			BrandName:       l.BrandName,
			Unit:            l.Unit,
			Requested:       requested,
			Quantity:        billed,
			UnitPrice:       l.UnitPrice(),
			DiscountPercent: pct,
			FinalUnitPrice:  final,
			Subtotal:        final.Mul(decimal.NewFromInt(int64(billed))),
		})
	}

	var missing []int64
	for id, qty := range quantities {
		if _, ok := seen[id]; !ok && qty > 0 {
			missing = append(missing, id)
		}
	}
	slices.Sort(missing)
	for _, id := range missing {
		notices = append(notices, Notice{
			Kind:      NoticeUnavailable,
			ProductID: id,
			Requested: quantities[id],
			Message:   "Produk tidak lagi tersedia dan dihapus dari keranjang",
		})
	}
	return lines, notices
}

// TotalGross sums line subtotals without rounding.
func TotalGross(lines []Line) pricing.Money {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return total
}

func minOrderMessage(p catalog.Product, billed int) string {
	unit := p.MinOrder.Unit
	if unit == "" {
		unit = p.Unit
	}
	if p.MinOrder.UnitEquivalent > 1 {
		return fmt.Sprintf("Minimal pembelian %s adalah %d %s (%d %s), jumlah disesuaikan", p.Name, p.MinOrder.Qty, unit, billed, p.Unit)
	}
	return fmt.Sprintf("Minimal pembelian %s adalah %d %s, jumlah disesuaikan", p.Name, billed, unit)
}
