package catalog_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-material/internal/catalog"
)

func price(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func product(id int64, name string, p decimal.NullDecimal) catalog.Product {
	return catalog.Product{ID: id, Name: name, Price: p}
}

func names(items []catalog.Listing) []string {
	out := make([]string, len(items))
	for i, l := range items {
		out[i] = l.Name
	}
	return out
}

func TestFlattenDedupKeepsFirstPositionLastData(t *testing.T) {
	tree := []catalog.Category{{
		ID: 1,
		Brands: []catalog.Brand{
			{ID: 10, Name: "Tiga Roda", Products: []catalog.Product{
				product(1, "Semen 40kg", price(60000)),
				product(2, "Semen 50kg", price(70000)),
			}},
		},
		SubCategories: []catalog.SubCategory{{
			ID: 5,
			Brands: []catalog.Brand{{ID: 11, Name: "Holcim", Products: []catalog.Product{
				product(3, "Semen Putih", price(90000)),
				product(1, "Semen 40kg Promo", price(55000)),
			}}},
		}},
	}}

	flat := catalog.Flatten(tree)
	require.Equal(t, []string{"Semen 40kg Promo", "Semen 50kg", "Semen Putih"}, names(flat))
	require.True(t, decimal.NewFromInt(55000).Equal(flat[0].Price.Decimal))
	require.Equal(t, "Holcim", flat[0].BrandName)
	require.Equal(t, int64(5), flat[0].SubCategoryID)
}

func TestDirectBrandsExcludeSubcategoryBrands(t *testing.T) {
	shared := catalog.Brand{ID: 20, Name: "Dulux", Products: []catalog.Product{product(7, "Cat Tembok", price(150000))}}
	c := catalog.Category{
		ID:     2,
		Brands: []catalog.Brand{{ID: 21, Name: "Avian"}, shared},
		SubCategories: []catalog.SubCategory{{
			ID:     6,
			Brands: []catalog.Brand{shared},
		}},
	}
	direct := catalog.DirectBrands(c)
	require.Len(t, direct, 1)
	require.Equal(t, "Avian", direct[0].Name)

	flat := catalog.Flatten([]catalog.Category{c})
	require.Len(t, flat, 1)
	require.Equal(t, int64(6), flat[0].SubCategoryID)
}

func TestPriceRangeLabels(t *testing.T) {
	c := catalog.Category{Brands: []catalog.Brand{{ID: 1, Products: []catalog.Product{
		product(1, "Paku", price(10000)),
		product(2, "Baja Ringan", price(1250000)),
		product(3, "Konsultasi", decimal.NullDecimal{}),
	}}}}
	r := catalog.PriceRange(c)
	require.Equal(t, "Rp 10k - 1.2jt", r.Label)
	require.True(t, r.HasProducts)
	require.True(t, r.HasPrice)
	require.True(t, decimal.NewFromInt(10000).Equal(*r.Min))

	mixed := catalog.Category{
		Brands: []catalog.Brand{{ID: 1, Products: []catalog.Product{product(1, "Paku", price(25500))}}},
		SubCategories: []catalog.SubCategory{{Brands: []catalog.Brand{{ID: 2, Products: []catalog.Product{
			product(2, "Kawat", price(10000)),
			product(3, "Genteng", price(1200000)),
		}}}}},
	}
	require.Equal(t, "Rp 10k - 1.2jt", catalog.PriceRange(mixed).Label)

	single := catalog.Category{Brands: []catalog.Brand{{ID: 1, Products: []catalog.Product{product(1, "Pasir", price(50000))}}}}
	require.Equal(t, "Rp 50k", catalog.PriceRange(single).Label)

	empty := catalog.PriceRange(catalog.Category{})
	require.Equal(t, catalog.LabelNoProducts, empty.Label)
	require.False(t, empty.HasProducts)

	unpriced := catalog.Category{SubCategories: []catalog.SubCategory{{Brands: []catalog.Brand{{Products: []catalog.Product{
		product(9, "Jasa Potong", decimal.NullDecimal{}),
	}}}}}}
	r = catalog.PriceRange(unpriced)
	require.Equal(t, catalog.LabelNoPrice, r.Label)
	require.True(t, r.HasProducts)
	require.Nil(t, r.Min)
}

func TestSortProducts(t *testing.T) {
	items := []catalog.Listing{
		{Product: product(1, "Semen 10kg", price(30000))},
		{Product: product(2, "Semen 2kg", price(8000))},
		{Product: product(3, "Besi 8mm", decimal.NullDecimal{})},
		{Product: product(4, "Besi 10mm", price(30000))},
	}

	require.Equal(t, []string{"Semen 10kg", "Semen 2kg", "Besi 8mm", "Besi 10mm"},
		names(catalog.SortProducts(items, catalog.SortDefault)))
	require.Equal(t, []string{"Besi 8mm", "Besi 10mm", "Semen 2kg", "Semen 10kg"},
		names(catalog.SortProducts(items, catalog.SortNameAsc)))
	require.Equal(t, []string{"Semen 10kg", "Semen 2kg", "Besi 10mm", "Besi 8mm"},
		names(catalog.SortProducts(items, catalog.SortNameDesc)))
	require.Equal(t, []string{"Semen 2kg", "Besi 10mm", "Semen 10kg", "Besi 8mm"},
		names(catalog.SortProducts(items, catalog.SortPriceAsc)))
	require.Equal(t, []string{"Besi 10mm", "Semen 10kg", "Semen 2kg", "Besi 8mm"},
		names(catalog.SortProducts(items, catalog.SortPriceDesc)))

	// input untouched
	require.Equal(t, "Semen 10kg", items[0].Name)
}

func TestSortBrandsByCheapestProduct(t *testing.T) {
	brands := []catalog.Brand{
		{ID: 1, Name: "Brand 10", Products: []catalog.Product{product(1, "B", price(500)), product(2, "A", price(100))}},
		{ID: 2, Name: "Brand 9", Products: []catalog.Product{product(3, "C", price(200))}},
		{ID: 3, Name: "Brand 1"},
	}
	sorted := catalog.SortBrands(brands, catalog.SortPriceAsc)
	require.Equal(t, int64(1), sorted[0].ID)
	require.Equal(t, "A", sorted[0].Products[0].Name)
	require.Equal(t, int64(2), sorted[1].ID)
	require.Equal(t, int64(3), sorted[2].ID)

	sorted = catalog.SortBrands(brands, catalog.SortNameAsc)
	require.Equal(t, []int64{3, 2, 1}, []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID})
}

func TestParseSortOption(t *testing.T) {
	opt, ok := catalog.ParseSortOption("")
	require.True(t, ok)
	require.Equal(t, catalog.SortDefault, opt)

	opt, ok = catalog.ParseSortOption(" Price-Desc ")
	require.True(t, ok)
	require.Equal(t, catalog.SortPriceDesc, opt)

	_, ok = catalog.ParseSortOption("popular")
	require.False(t, ok)
}

func TestParseAttributesKeepsDocumentOrder(t *testing.T) {
	attrs := catalog.ParseAttributes([]byte(`{"ukuran":"40kg","tebal":12,"sni":true,"warna":null,"dimensi":{"p": 2, "l": 1}}`))
	require.Equal(t, catalog.Attributes{
		{Key: "ukuran", Value: "40kg"},
		{Key: "tebal", Value: "12"},
		{Key: "sni", Value: "true"},
		{Key: "dimensi", Value: `{"p":2,"l":1}`},
	}, attrs)

	v, ok := attrs.Get("tebal")
	require.True(t, ok)
	require.Equal(t, "12", v)

	require.Nil(t, catalog.ParseAttributes([]byte(`["a"]`)))
	require.Nil(t, catalog.ParseAttributes([]byte(`not json`)))
	require.Nil(t, catalog.ParseAttributes(nil))

	data, err := json.Marshal(attrs)
	require.NoError(t, err)
	require.Equal(t, `{"ukuran":"40kg","tebal":"12","sni":"true","dimensi":"{\"p\":2,\"l\":1}"}`, string(data))

	var back catalog.Attributes
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, attrs, back)
}

func TestMinOrderThreshold(t *testing.T) {
	var none *catalog.MinOrder
	require.Zero(t, none.Threshold())
	require.Equal(t, 5, (&catalog.MinOrder{Qty: 5}).Threshold())
	require.Equal(t, 24, (&catalog.MinOrder{Qty: 2, Unit: "dus", UnitEquivalent: 12}).Threshold())
}
