package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCatalog = `{
  "units": ["sak", "batang"],
  "categories": [{
    "name": "Semen",
    "description": "Semen dan mortar",
    "brands": [{
      "name": "Tiga Roda",
      "products": [
        {"name": "Semen 50kg", "price": "65000", "unit": "sak", "minOrderQty": 10, "minOrderUnit": "sak"},
        {"name": "Semen Putih", "price": null, "metadata": {"warna": "putih"}}
      ]
    }],
    "subCategories": [{
      "name": "Mortar",
      "brands": [{"name": "MU", "products": [{"name": "MU-380", "price": 98500.5}]}]
    }]
  }]
}`

func TestDecodeCatalog(t *testing.T) {
	f, err := decodeCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, f.Categories, 1)

	products := f.Categories[0].Brands[0].Products
	require.True(t, products[0].Price.Valid)
	require.Equal(t, "65000", products[0].Price.Decimal.String())
	require.False(t, products[1].Price.Valid)
	require.Equal(t, `{"warna": "putih"}`, products[1].metadata())
	require.Equal(t, "{}", products[0].metadata())

	sub := f.Categories[0].SubCategories[0].Brands[0].Products[0]
	require.Equal(t, "98500.5", sub.Price.Decimal.String())
}

func TestDecodeCatalogRejectsUnknownFields(t *testing.T) {
	_, err := decodeCatalog(strings.NewReader(`{"categories": [], "tenants": []}`))
	require.Error(t, err)
}

func TestDecodeCatalogCollectsAllProblems(t *testing.T) {
	doc := `{
	  "units": ["sak"],
	  "categories": [{
	    "name": " ",
	    "brands": [{"name": "A", "products": [
	      {"name": "", "price": "-1"},
	      {"name": "Pipa", "unit": "meter", "minOrderQty": 0}
	    ]}]
	  }]
	}`
	_, err := decodeCatalog(strings.NewReader(doc))
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, "categories[0]: name is required")
	require.Contains(t, msg, "products[0]: name is required")
	require.Contains(t, msg, "price must not be negative")
	require.Contains(t, msg, `unit "meter" is not declared`)
	require.Contains(t, msg, "minOrderQty must be positive")
}
