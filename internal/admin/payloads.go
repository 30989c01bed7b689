package admin

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-material/internal/db"
)

var hundred = decimal.NewFromInt(100)

type activePayload struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type categoryPayload struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type subCategoryPayload struct {
	CategoryID int64  `json:"categoryId" validate:"required,gt=0"`
	Name       string `json:"name" validate:"required,max=120"`
}

type brandPayload struct {
	Name          string `json:"name" validate:"required,max=120"`
	CategoryID    *int64 `json:"categoryId" validate:"required_without=SubCategoryID,omitempty,gt=0"`
	SubCategoryID *int64 `json:"subCategoryId" validate:"omitempty,gt=0"`
}

type unitPayload struct {
	Name string `json:"name" validate:"required,max=40"`
}

type minOrderPayload struct {
	Qty            int32   `json:"qty" validate:"required,gte=1"`
	Unit           *string `json:"unit" validate:"omitempty,max=40"`
	UnitEquivalent *int32  `json:"unitEquivalent" validate:"omitempty,gte=1"`
}

type productPayload struct {
	Name     string           `json:"name" validate:"required,max=200"`
	Price    *decimal.Decimal `json:"price" validate:"-"`
	BrandID  int64            `json:"brandId" validate:"required,gt=0"`
	UnitID   *int64           `json:"unitId" validate:"omitempty,gt=0"`
	ImageURL *string          `json:"imageUrl" validate:"omitempty,url,max=2048"`
	Metadata json.RawMessage  `json:"metadata" validate:"-"`
	MinOrder *minOrderPayload `json:"minOrder"`
}

func (p productPayload) params() (db.ProductParams, error) {
	out := db.ProductParams{
		Name:     p.Name,
		BrandID:  p.BrandID,
		UnitID:   p.UnitID,
		ImageURL: p.ImageURL,
	}
	if p.Price != nil {
		if p.Price.IsNegative() {
			return db.ProductParams{}, invalid("price", "gte")
		}
		out.Price = decimal.NewNullDecimal(*p.Price)
	}
	if trimmed := bytes.TrimSpace(p.Metadata); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if trimmed[0] != '{' || !json.Valid(trimmed) {
			return db.ProductParams{}, invalid("metadata", "object")
		}
		out.Metadata = json.RawMessage(trimmed)
	}
	if p.MinOrder != nil {
		qty := p.MinOrder.Qty
		out.MinOrderQty = &qty
		out.MinOrderUnit = p.MinOrder.Unit
		out.MinOrderUnitEquivalent = p.MinOrder.UnitEquivalent
	}
	return out, nil
}

type promotionPayload struct {
	Title           string          `json:"title" validate:"required,max=200"`
	Subtitle        *string         `json:"subtitle" validate:"omitempty,max=500"`
	CTAText         *string         `json:"ctaText" validate:"omitempty,max=80"`
	DiscountPercent decimal.Decimal `json:"discountPercent" validate:"-"`
	EndDate         time.Time       `json:"endDate" validate:"required"`
	Gimmick         string          `json:"gimmick" validate:"required,oneof=pulse glow shake countdown"`
	Type            string          `json:"type" validate:"required,oneof=sitewide product_specific"`
	ProductIDs      []int64         `json:"productIds" validate:"required_if=Type product_specific,omitempty,max=5000,dive,gt=0"`
}

func (p promotionPayload) params() (db.PromotionParams, []int64, error) {
	if err := checkPercent("discountPercent", p.DiscountPercent); err != nil {
		return db.PromotionParams{}, nil, err
	}
	var ids []int64
	if p.Type == "product_specific" {
		ids = slices.Clone(p.ProductIDs)
		slices.Sort(ids)
		ids = slices.Compact(ids)
	}
	return db.PromotionParams{
		Title:           p.Title,
		Subtitle:        p.Subtitle,
		CTAText:         p.CTAText,
		DiscountPercent: p.DiscountPercent,
		EndDate:         p.EndDate,
		GimmickType:     p.Gimmick,
		Type:            p.Type,
	}, ids, nil
}

type tierPayload struct {
	MinSpend        decimal.Decimal  `json:"minSpend" validate:"-"`
	MaxSpend        *decimal.Decimal `json:"maxSpend" validate:"-"`
	DiscountPercent decimal.Decimal  `json:"discountPercent" validate:"-"`
	FreeShipping    bool             `json:"freeShipping"`
	IsActive        *bool            `json:"isActive"`
	Description     *string          `json:"description" validate:"omitempty,max=500"`
}

func (p tierPayload) params() (db.TieredDiscountParams, error) {
	if p.MinSpend.IsNegative() {
		return db.TieredDiscountParams{}, invalid("minSpend", "gte")
	}
	if p.MaxSpend != nil && !p.MaxSpend.GreaterThan(p.MinSpend) {
		return db.TieredDiscountParams{}, invalid("maxSpend", "gtfield")
	}
	if err := checkPercent("discountPercent", p.DiscountPercent); err != nil {
		return db.TieredDiscountParams{}, err
	}
	out := db.TieredDiscountParams{
		MinSpend:        p.MinSpend,
		DiscountPercent: p.DiscountPercent,
		FreeShipping:    p.FreeShipping,
		IsActive:        p.IsActive == nil || *p.IsActive,
		Description:     p.Description,
	}
	if p.MaxSpend != nil {
		out.MaxSpend = decimal.NewNullDecimal(*p.MaxSpend)
	}
	return out, nil
}

type promoCodePayload struct {
	Code            string          `json:"code" validate:"required,max=64,printascii"`
	DiscountPercent decimal.Decimal `json:"discountPercent" validate:"-"`
	StartDate       string          `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate         string          `json:"endDate" validate:"required,datetime=2006-01-02"`
	IsActive        *bool           `json:"isActive"`
}

func (p promoCodePayload) params() (db.PromoCodeParams, error) {
	if strings.ContainsFunc(p.Code, unicode.IsSpace) {
		return db.PromoCodeParams{}, invalid("code", "nospace")
	}
	if err := checkPercent("discountPercent", p.DiscountPercent); err != nil {
		return db.PromoCodeParams{}, err
	}
	start, _ := time.Parse(time.DateOnly, p.StartDate)
	end, _ := time.Parse(time.DateOnly, p.EndDate)
	if end.Before(start) {
		return db.PromoCodeParams{}, invalid("endDate", "gtefield")
	}
	return db.PromoCodeParams{
		Code:            p.Code,
		DiscountPercent: p.DiscountPercent,
		StartDate:       start,
		EndDate:         end,
		IsActive:        p.IsActive == nil || *p.IsActive,
	}, nil
}

func checkPercent(field string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return invalid(field, "between=0,100")
	}
	return nil
}
