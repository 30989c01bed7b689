package db

import (
	"context"
	"encoding/json"
	"time"
)

type Querier interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error)
	UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error)
	DeleteCategory(ctx context.Context, id int64) (int64, error)

	ListSubCategories(ctx context.Context) ([]SubCategory, error)
	CreateSubCategory(ctx context.Context, arg CreateSubCategoryParams) (SubCategory, error)
	UpdateSubCategory(ctx context.Context, arg UpdateSubCategoryParams) (SubCategory, error)
	DeleteSubCategory(ctx context.Context, id int64) (int64, error)

	ListBrands(ctx context.Context) ([]Brand, error)
	CreateBrand(ctx context.Context, arg CreateBrandParams) (Brand, error)
	UpdateBrand(ctx context.Context, arg UpdateBrandParams) (Brand, error)
	DeleteBrand(ctx context.Context, id int64) (int64, error)

	ListUnits(ctx context.Context) ([]Unit, error)
	CreateUnit(ctx context.Context, name string) (Unit, error)
	UpdateUnit(ctx context.Context, arg UpdateUnitParams) (Unit, error)
	DeleteUnit(ctx context.Context, id int64) (int64, error)

	ListCatalogProducts(ctx context.Context) ([]CatalogProduct, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	CreateProduct(ctx context.Context, arg ProductParams) (Product, error)
	UpdateProduct(ctx context.Context, id int64, arg ProductParams) (Product, error)
	DeleteProduct(ctx context.Context, id int64) (int64, error)
	CountCatalog(ctx context.Context) (CatalogCounts, error)

	ListPromotions(ctx context.Context) ([]Promotion, error)
	GetPromotion(ctx context.Context, id int64) (Promotion, error)
	GetActivePromotion(ctx context.Context, now time.Time) (Promotion, error)
	CreatePromotion(ctx context.Context, arg PromotionParams) (Promotion, error)
	UpdatePromotion(ctx context.Context, id int64, arg PromotionParams) (Promotion, error)
	DeletePromotion(ctx context.Context, id int64) (int64, error)
	ListPromotionProductIDs(ctx context.Context, promotionID int64) ([]int64, error)
	DeletePromotionProducts(ctx context.Context, promotionID int64) error
	InsertPromotionProducts(ctx context.Context, promotionID int64, productIDs []int64) error
	SetPromotionActive(ctx context.Context, id int64, active bool) (int64, error)
	DeactivateOtherPromotions(ctx context.Context, id int64) error
	ExpirePromotions(ctx context.Context, now time.Time) ([]int64, error)
	CountActivePromotions(ctx context.Context, now time.Time) (int64, error)

	ListTieredDiscounts(ctx context.Context) ([]TieredDiscount, error)
	ListActiveTieredDiscounts(ctx context.Context) ([]TieredDiscount, error)
	CreateTieredDiscount(ctx context.Context, arg TieredDiscountParams) (TieredDiscount, error)
	UpdateTieredDiscount(ctx context.Context, id int64, arg TieredDiscountParams) (TieredDiscount, error)
	DeleteTieredDiscount(ctx context.Context, id int64) (int64, error)
	SetTieredDiscountActive(ctx context.Context, id int64, active bool) (int64, error)

	ListPromoCodes(ctx context.Context) ([]PromoCode, error)
	GetPromoCodeByCode(ctx context.Context, code string) (PromoCode, error)
	CreatePromoCode(ctx context.Context, arg PromoCodeParams) (PromoCode, error)
	UpdatePromoCode(ctx context.Context, id int64, arg PromoCodeParams) (PromoCode, error)
	DeletePromoCode(ctx context.Context, id int64) (int64, error)
	SetPromoCodeActive(ctx context.Context, id int64, active bool) (int64, error)

	ListAppSettings(ctx context.Context) ([]AppSetting, error)
	UpsertAppSetting(ctx context.Context, key string, value json.RawMessage) (AppSetting, error)
	GetUserRole(ctx context.Context, userID string) (string, error)
	InsertDomainEvent(ctx context.Context, arg InsertDomainEventParams) (DomainEvent, error)
}

var _ Querier = (*Queries)(nil)
