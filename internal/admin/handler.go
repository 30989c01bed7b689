// Package admin exposes the CMS endpoints used to maintain the catalog and
// the discount configuration.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-material/internal/common"
	"github.com/noah-isme/backend-material/internal/db"
)

// Store is the subset of db.Querier the CMS writes through.
type Store interface {
	ListCategories(ctx context.Context) ([]db.Category, error)
	CreateCategory(ctx context.Context, arg db.CreateCategoryParams) (db.Category, error)
	UpdateCategory(ctx context.Context, arg db.UpdateCategoryParams) (db.Category, error)
	DeleteCategory(ctx context.Context, id int64) (int64, error)

	ListSubCategories(ctx context.Context) ([]db.SubCategory, error)
	CreateSubCategory(ctx context.Context, arg db.CreateSubCategoryParams) (db.SubCategory, error)
	UpdateSubCategory(ctx context.Context, arg db.UpdateSubCategoryParams) (db.SubCategory, error)
	DeleteSubCategory(ctx context.Context, id int64) (int64, error)

	ListBrands(ctx context.Context) ([]db.Brand, error)
	CreateBrand(ctx context.Context, arg db.CreateBrandParams) (db.Brand, error)
	UpdateBrand(ctx context.Context, arg db.UpdateBrandParams) (db.Brand, error)
	DeleteBrand(ctx context.Context, id int64) (int64, error)

	ListUnits(ctx context.Context) ([]db.Unit, error)
	CreateUnit(ctx context.Context, name string) (db.Unit, error)
	UpdateUnit(ctx context.Context, arg db.UpdateUnitParams) (db.Unit, error)
	DeleteUnit(ctx context.Context, id int64) (int64, error)

	ListCatalogProducts(ctx context.Context) ([]db.CatalogProduct, error)
	GetProduct(ctx context.Context, id int64) (db.Product, error)
	CreateProduct(ctx context.Context, arg db.ProductParams) (db.Product, error)
	UpdateProduct(ctx context.Context, id int64, arg db.ProductParams) (db.Product, error)
	DeleteProduct(ctx context.Context, id int64) (int64, error)

	ListPromotions(ctx context.Context) ([]db.Promotion, error)
	GetPromotion(ctx context.Context, id int64) (db.Promotion, error)
	CreatePromotion(ctx context.Context, arg db.PromotionParams) (db.Promotion, error)
	UpdatePromotion(ctx context.Context, id int64, arg db.PromotionParams) (db.Promotion, error)
	DeletePromotion(ctx context.Context, id int64) (int64, error)
	ListPromotionProductIDs(ctx context.Context, promotionID int64) ([]int64, error)
	DeletePromotionProducts(ctx context.Context, promotionID int64) error
	InsertPromotionProducts(ctx context.Context, promotionID int64, productIDs []int64) error

	ListTieredDiscounts(ctx context.Context) ([]db.TieredDiscount, error)
	CreateTieredDiscount(ctx context.Context, arg db.TieredDiscountParams) (db.TieredDiscount, error)
	UpdateTieredDiscount(ctx context.Context, id int64, arg db.TieredDiscountParams) (db.TieredDiscount, error)
	DeleteTieredDiscount(ctx context.Context, id int64) (int64, error)
	SetTieredDiscountActive(ctx context.Context, id int64, active bool) (int64, error)

	ListPromoCodes(ctx context.Context) ([]db.PromoCode, error)
	CreatePromoCode(ctx context.Context, arg db.PromoCodeParams) (db.PromoCode, error)
	UpdatePromoCode(ctx context.Context, id int64, arg db.PromoCodeParams) (db.PromoCode, error)
	DeletePromoCode(ctx context.Context, id int64) (int64, error)
	SetPromoCodeActive(ctx context.Context, id int64, active bool) (int64, error)

	ListAppSettings(ctx context.Context) ([]db.AppSetting, error)
	UpsertAppSetting(ctx context.Context, key string, value json.RawMessage) (db.AppSetting, error)
}

// TxFunc runs fn against a transactional Store.
type TxFunc func(ctx context.Context, fn func(Store) error) error

// Emitter records domain events.
type Emitter interface {
	Emit(ctx context.Context, topic, aggregateID string, payload any) (db.DomainEvent, error)
}

// Activator switches the single active promotion.
type Activator interface {
	Activate(ctx context.Context, id int64) error
}

// Handler serves /api/v1/admin. Authentication and the admin role check are
// applied by the router.
type Handler struct {
	Store      Store
	Tx         TxFunc
	Events     Emitter
	Promotions Activator
	Logger     zerolog.Logger
	Now        func() time.Time
}

// Routes mounts the CMS endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Put("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})
	r.Route("/sub-categories", func(r chi.Router) {
		r.Get("/", h.ListSubCategories)
		r.Post("/", h.CreateSubCategory)
		r.Put("/{id}", h.UpdateSubCategory)
		r.Delete("/{id}", h.DeleteSubCategory)
	})
	r.Route("/brands", func(r chi.Router) {
		r.Get("/", h.ListBrands)
		r.Post("/", h.CreateBrand)
		r.Put("/{id}", h.UpdateBrand)
		r.Delete("/{id}", h.DeleteBrand)
	})
	r.Route("/units", func(r chi.Router) {
		r.Get("/", h.ListUnits)
		r.Post("/", h.CreateUnit)
		r.Put("/{id}", h.UpdateUnit)
		r.Delete("/{id}", h.DeleteUnit)
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
		r.Post("/", h.CreateProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
	r.Route("/promotions", func(r chi.Router) {
		r.Get("/", h.ListPromotions)
		r.Post("/", h.CreatePromotion)
		r.Put("/{id}", h.UpdatePromotion)
		r.Delete("/{id}", h.DeletePromotion)
		r.Post("/{id}/activate", h.ActivatePromotion)
	})
	r.Route("/tiered-discounts", func(r chi.Router) {
		r.Get("/", h.ListTiers)
		r.Post("/", h.CreateTier)
		r.Put("/{id}", h.UpdateTier)
		r.Delete("/{id}", h.DeleteTier)
		r.Patch("/{id}/active", h.SetTierActive)
	})
	r.Route("/promo-codes", func(r chi.Router) {
		r.Get("/", h.ListPromoCodes)
		r.Post("/", h.CreatePromoCode)
		r.Put("/{id}", h.UpdatePromoCode)
		r.Delete("/{id}", h.DeletePromoCode)
		r.Patch("/{id}/active", h.SetPromoCodeActive)
	})
	r.Get("/settings", h.ListSettings)
	r.Put("/settings/{key}", h.PutSetting)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewAppError("BAD_REQUEST", "invalid id", http.StatusBadRequest, err)
	}
	return id, nil
}

// decode parses the id path parameter (when withID) and the JSON body.
func decode(r *http.Request, withID bool, dst any) (int64, error) {
	var id int64
	if withID {
		var err error
		if id, err = pathID(r); err != nil {
			return 0, err
		}
	}
	return id, common.DecodeJSON(r, dst)
}

// changed records a mutation. Event failures are logged; the write already
// happened.
func (h *Handler) changed(ctx context.Context, topic, entity string, id any, action string) {
	if h.Events == nil {
		return
	}
	aggregate := fmt.Sprintf("%s:%v", entity, id)
	payload := map[string]any{"entity": entity, "id": id, "action": action}
	if actor, ok := common.UserID(ctx); ok {
		payload["actor"] = actor
	}
	if _, err := h.Events.Emit(ctx, topic, aggregate, payload); err != nil {
		h.Logger.Warn().Err(err).Str("topic", topic).Str("aggregate", aggregate).Msg("emit admin change failed")
	}
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request, entity, topic string, del func(context.Context, int64) (int64, error)) {
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	n, err := del(r.Context(), id)
	if err != nil {
		common.WriteError(w, storeError(entity, err))
		return
	}
	if n == 0 {
		common.WriteError(w, notFound(entity))
		return
	}
	h.changed(r.Context(), topic, entity, id, "deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, entity, topic string, set func(context.Context, int64, bool) (int64, error)) {
	var in activePayload
	id, err := decode(r, true, &in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	n, err := set(r.Context(), id, *in.IsActive)
	if err != nil {
		common.WriteError(w, storeError(entity, err))
		return
	}
	if n == 0 {
		common.WriteError(w, notFound(entity))
		return
	}
	action := "deactivated"
	if *in.IsActive {
		action = "activated"
	}
	h.changed(r.Context(), topic, entity, id, action)
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": id, "isActive": *in.IsActive}})
}

func writeList[T any](w http.ResponseWriter, items []T, err error, entity string) {
	if err != nil {
		common.WriteError(w, storeError(entity, err))
		return
	}
	if items == nil {
		items = []T{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
