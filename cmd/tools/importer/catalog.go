package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// catalogFile is the import document. Brands hang off a category directly or
// off one of its sub-categories.
type catalogFile struct {
	Units      []string         `json:"units"`
	Categories []categoryRecord `json:"categories"`
}

type categoryRecord struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Brands        []brandRecord       `json:"brands"`
	SubCategories []subCategoryRecord `json:"subCategories"`
}

type subCategoryRecord struct {
	Name   string        `json:"name"`
	Brands []brandRecord `json:"brands"`
}

type brandRecord struct {
	Name     string          `json:"name"`
	Products []productRecord `json:"products"`
}

type productRecord struct {
	Name                   string              `json:"name"`
	Price                  decimal.NullDecimal `json:"price"`
	Unit                   string              `json:"unit"`
	ImageURL               string              `json:"imageUrl"`
	Metadata               json.RawMessage     `json:"metadata"`
	MinOrderQty            *int                `json:"minOrderQty"`
	MinOrderUnit           string              `json:"minOrderUnit"`
	MinOrderUnitEquivalent *int                `json:"minOrderUnitEquivalent"`
}

type summary struct {
	Categories    int
	SubCategories int
	Brands        int
	Products      int
	Units         int
}

func decodeCatalog(r io.Reader) (catalogFile, error) {
	var f catalogFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return catalogFile{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := f.validate(); err != nil {
		return catalogFile{}, err
	}
	return f, nil
}

// validate reports every problem at once so a bad file can be fixed in one
// pass.
func (f catalogFile) validate() error {
	var errs []error
	units := make(map[string]bool, len(f.Units))
	for _, u := range f.Units {
		units[strings.TrimSpace(u)] = true
	}
	for ci, c := range f.Categories {
		where := fmt.Sprintf("categories[%d]", ci)
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", where))
		}
		errs = append(errs, validateBrands(where, c.Brands, units)...)
		for si, s := range c.SubCategories {
			sw := fmt.Sprintf("%s.subCategories[%d]", where, si)
			if strings.TrimSpace(s.Name) == "" {
				errs = append(errs, fmt.Errorf("%s: name is required", sw))
			}
			errs = append(errs, validateBrands(sw, s.Brands, units)...)
		}
	}
	return errors.Join(errs...)
}

func validateBrands(where string, brands []brandRecord, units map[string]bool) []error {
	var errs []error
	for bi, b := range brands {
		bw := fmt.Sprintf("%s.brands[%d]", where, bi)
		if strings.TrimSpace(b.Name) == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", bw))
		}
		for pi, p := range b.Products {
			pw := fmt.Sprintf("%s.products[%d]", bw, pi)
			if strings.TrimSpace(p.Name) == "" {
				errs = append(errs, fmt.Errorf("%s: name is required", pw))
			}
			if p.Price.Valid && p.Price.Decimal.IsNegative() {
				errs = append(errs, fmt.Errorf("%s: price must not be negative", pw))
			}
			if p.Unit != "" && !units[strings.TrimSpace(p.Unit)] {
				errs = append(errs, fmt.Errorf("%s: unit %q is not declared", pw, p.Unit))
			}
			if p.MinOrderQty != nil && *p.MinOrderQty < 1 {
				errs = append(errs, fmt.Errorf("%s: minOrderQty must be positive", pw))
			}
			if p.MinOrderUnitEquivalent != nil && *p.MinOrderUnitEquivalent < 1 {
				errs = append(errs, fmt.Errorf("%s: minOrderUnitEquivalent must be positive", pw))
			}
			if len(p.Metadata) > 0 && !json.Valid(p.Metadata) {
				errs = append(errs, fmt.Errorf("%s: metadata is not valid JSON", pw))
			}
		}
	}
	return errs
}

func (p productRecord) metadata() string {
	if len(p.Metadata) == 0 || string(p.Metadata) == "null" {
		return "{}"
	}
	return string(p.Metadata)
}
