package db

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SubCategory struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"categoryId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Brand struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	CategoryID    *int64    `json:"categoryId"`
	SubCategoryID *int64    `json:"subCategoryId"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Unit struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Product struct {
	ID                     int64               `json:"id"`
	Name                   string              `json:"name"`
	Price                  decimal.NullDecimal `json:"price"`
	BrandID                int64               `json:"brandId"`
	UnitID                 *int64              `json:"unitId"`
	ImageURL               *string             `json:"imageUrl"`
	Metadata               json.RawMessage     `json:"metadata"`
	MinOrderQty            *int32              `json:"minOrderQty"`
	MinOrderUnit           *string             `json:"minOrderUnit"`
	MinOrderUnitEquivalent *int32              `json:"minOrderUnitEquivalent"`
	CreatedAt              time.Time           `json:"createdAt"`
}

// CatalogProduct is a product row joined with its unit label.
type CatalogProduct struct {
	Product
	UnitName *string `json:"unitName"`
}

type Promotion struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Subtitle        *string         `json:"subtitle"`
	CTAText         *string         `json:"ctaText"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	EndDate         time.Time       `json:"endDate"`
	IsActive        bool            `json:"isActive"`
	GimmickType     string          `json:"gimmickType"`
	Type            string          `json:"type"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type TieredDiscount struct {
	ID              int64               `json:"id"`
	MinSpend        decimal.Decimal     `json:"minSpend"`
	MaxSpend        decimal.NullDecimal `json:"maxSpend"`
	DiscountPercent decimal.Decimal     `json:"discountPercent"`
	FreeShipping    bool                `json:"freeShipping"`
	IsActive        bool                `json:"isActive"`
	Description     *string             `json:"description"`
	CreatedAt       time.Time           `json:"createdAt"`
}

type PromoCode struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type AppSetting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type DomainEvent struct {
	ID          int64           `json:"id"`
	Topic       string          `json:"topic"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// CatalogCounts backs the admin analytics overview.
type CatalogCounts struct {
	Products   int64 `json:"products"`
	Categories int64 `json:"categories"`
	Brands     int64 `json:"brands"`
}
