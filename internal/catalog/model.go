package catalog

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/noah-isme/backend-material/internal/db"
)

// Category is the root of the storefront tree. Brands holds brands attached
// directly to the category; brands reachable through a subcategory are
// filtered out of direct listings by DirectBrands.
type Category struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	SubCategories []SubCategory `json:"subCategories"`
	Brands        []Brand       `json:"brands"`
	PriceRange    *Range        `json:"priceRange,omitempty"`
}

// SubCategory groups brands inside a category.
type SubCategory struct {
	ID         int64   `json:"id"`
	CategoryID int64   `json:"categoryId"`
	Name       string  `json:"name"`
	Brands     []Brand `json:"brands"`
}

// Brand owns products.
type Brand struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

// Product is a sellable item. A null Price means the item has no numeric
// price and is treated as zero when billed.
type Product struct {
	ID         int64               `json:"id"`
	Name       string              `json:"name"`
	Price      decimal.NullDecimal `json:"price"`
	BrandID    int64               `json:"brandId"`
	Unit       string              `json:"unit,omitempty"`
	ImageURL   string              `json:"imageUrl,omitempty"`
	Attributes Attributes          `json:"attributes,omitempty"`
	MinOrder   *MinOrder           `json:"minOrder,omitempty"`
}

// UnitPrice returns the price, or zero when none is set.
func (p Product) UnitPrice() decimal.Decimal {
	if !p.Price.Valid {
		return decimal.Zero
	}
	return p.Price.Decimal
}

// MinOrder is the minimum purchasable quantity, expressed in Unit where one
// Unit equals UnitEquivalent base units.
type MinOrder struct {
	Qty            int    `json:"qty"`
	Unit           string `json:"unit,omitempty"`
	UnitEquivalent int    `json:"unitEquivalent"`
}

// Threshold is the minimum billable quantity in base units. Zero means no
// minimum.
func (m *MinOrder) Threshold() int {
	if m == nil || m.Qty <= 0 {
		return 0
	}
	return m.Qty * max(m.UnitEquivalent, 1)
}

// Attribute is one display-safe metadata entry.
type Attribute struct {
	Key   string
	Value string
}

// Attributes keeps product metadata in document order.
type Attributes []Attribute

// ParseAttributes reads a JSON object into ordered key/value pairs. Scalars
// are rendered as strings, nested values as compact JSON and nulls are
// dropped. Anything that is not an object yields nil.
func ParseAttributes(raw []byte) Attributes {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil
	}
	var out Attributes
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		key, ok := tok.(string)
		if !ok {
			return out
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return out
		}
		if s, ok := displayValue(value); ok {
			out = append(out, Attribute{Key: key, Value: s})
		}
	}
	return out
}

func displayValue(raw json.RawMessage) (string, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return "", false
	}
	switch v.(type) {
	case map[string]any, []any:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", false
		}
		return buf.String(), true
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// Get returns the value for key.
func (a Attributes) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// MarshalJSON writes the pairs as an object in order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(attr.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the pairs keeping document order.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = nil
		return nil
	}
	if !json.Valid(data) {
		return errors.New("catalog: invalid attributes document")
	}
	*a = ParseAttributes(data)
	return nil
}

// BuildTree assembles the storefront tree from flat rows. Input order is
// preserved at every level. Brands listing both a category and a subcategory
// appear in both places; readers use DirectBrands to honour the subcategory.
func BuildTree(categories []db.Category, subs []db.SubCategory, brands []db.Brand, products []db.CatalogProduct) []Category {
	byBrand := make(map[int64][]Product, len(brands))
	for _, row := range products {
		byBrand[row.BrandID] = append(byBrand[row.BrandID], productFromRow(row))
	}
	subBrands := make(map[int64][]Brand)
	directBrands := make(map[int64][]Brand)
	for _, b := range brands {
		brand := Brand{ID: b.ID, Name: b.Name, Products: byBrand[b.ID]}
		if brand.Products == nil {
			brand.Products = []Product{}
		}
		if b.SubCategoryID != nil {
			subBrands[*b.SubCategoryID] = append(subBrands[*b.SubCategoryID], brand)
		}
		if b.CategoryID != nil {
			directBrands[*b.CategoryID] = append(directBrands[*b.CategoryID], brand)
		}
	}
	subsByCategory := make(map[int64][]SubCategory)
	for _, s := range subs {
		sub := SubCategory{ID: s.ID, CategoryID: s.CategoryID, Name: s.Name, Brands: subBrands[s.ID]}
		if sub.Brands == nil {
			sub.Brands = []Brand{}
		}
		subsByCategory[s.CategoryID] = append(subsByCategory[s.CategoryID], sub)
	}
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		cat := Category{
			ID:            c.ID,
			Name:          c.Name,
			SubCategories: subsByCategory[c.ID],
			Brands:        directBrands[c.ID],
		}
		if c.Description != nil {
			cat.Description = *c.Description
		}
		if cat.SubCategories == nil {
			cat.SubCategories = []SubCategory{}
		}
		if cat.Brands == nil {
			cat.Brands = []Brand{}
		}
		out = append(out, cat)
	}
	return out
}

func productFromRow(row db.CatalogProduct) Product {
	p := Product{
		ID:         row.ID,
		Name:       row.Name,
		Price:      row.Price,
		BrandID:    row.BrandID,
		Attributes: ParseAttributes(row.Metadata),
	}
	if row.UnitName != nil {
		p.Unit = *row.UnitName
	}
	if row.ImageURL != nil {
		p.ImageURL = *row.ImageURL
	}
	if row.MinOrderQty != nil && *row.MinOrderQty > 0 {
		p.MinOrder = &MinOrder{Qty: int(*row.MinOrderQty), UnitEquivalent: 1}
		if row.MinOrderUnit != nil {
			p.MinOrder.Unit = *row.MinOrderUnit
		}
		if row.MinOrderUnitEquivalent != nil && *row.MinOrderUnitEquivalent > 0 {
			p.MinOrder.UnitEquivalent = int(*row.MinOrderUnitEquivalent)
		}
	}
	return p
}
