package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-material/internal/common"
	"github.com/noah-isme/backend-material/internal/db"
	"github.com/noah-isme/backend-material/internal/discount"
	"github.com/noah-isme/backend-material/internal/events"
)

type promotionView struct {
	db.Promotion
	ProductIDs []int64 `json:"productIds"`
}

func (h *Handler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.ListPromotions(r.Context())
	if err != nil {
		writeList[promotionView](w, nil, err, "promotion")
		return
	}
	items := make([]promotionView, 0, len(rows))
	for _, row := range rows {
		ids, err := h.Store.ListPromotionProductIDs(r.Context(), row.ID)
		if err != nil {
			writeList[promotionView](w, nil, err, "promotion")
			return
		}
		if ids == nil {
			ids = []int64{}
		}
		items = append(items, promotionView{Promotion: row, ProductIDs: ids})
	}
	writeList(w, items, nil, "promotion")
}

func (h *Handler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	h.savePromotion(w, r, false)
}

func (h *Handler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	h.savePromotion(w, r, true)
}

// savePromotion writes the promotion and replaces its product set in one
// transaction.
func (h *Handler) savePromotion(w http.ResponseWriter, r *http.Request, update bool) {
	var in promotionPayload
	id, err := decode(r, update, &in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	params, productIDs, err := in.params()
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if !update && !params.EndDate.After(h.now()) {
		common.WriteError(w, invalid("endDate", "future"))
		return
	}

	var view promotionView
	err = h.inTx(r.Context(), func(s Store) error {
		var row db.Promotion
		var err error
		if update {
			row, err = s.UpdatePromotion(r.Context(), id, params)
		} else {
			row, err = s.CreatePromotion(r.Context(), params)
		}
		if err != nil {
			return err
		}
		if update {
			if err := s.DeletePromotionProducts(r.Context(), row.ID); err != nil {
				return err
			}
		}
		if err := s.InsertPromotionProducts(r.Context(), row.ID, productIDs); err != nil {
			return err
		}
		view = promotionView{Promotion: row, ProductIDs: productIDs}
		return nil
	})
	if err != nil {
		common.WriteError(w, storeError("promotion", err))
		return
	}
	if view.ProductIDs == nil {
		view.ProductIDs = []int64{}
	}

	status, action := http.StatusCreated, "created"
	if update {
		status, action = http.StatusOK, "updated"
	}
	h.changed(r.Context(), events.TopicPromotionChanged, "promotion", view.ID, action)
	common.JSON(w, status, map[string]any{"data": view})
}

func (h *Handler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "promotion", events.TopicPromotionChanged, h.Store.DeletePromotion)
}

// ActivatePromotion makes the promotion the only active one.
func (h *Handler) ActivatePromotion(w http.ResponseWriter, r *http.Request) {
	if h.Promotions == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "promotion service not configured", nil)
		return
	}
	id, err := pathID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Promotions.Activate(r.Context(), id); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": id, "isActive": true}})
}

func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListTieredDiscounts(r.Context())
	writeList(w, items, err, "tiered discount")
}

func (h *Handler) CreateTier(w http.ResponseWriter, r *http.Request) {
	var in tierPayload
	if _, err := decode(r, false, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	params, err := in.params()
	if err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.CreateTieredDiscount(r.Context(), params)
	if err != nil {
		common.WriteError(w, storeError("tiered discount", err))
		return
	}
	h.changed(r.Context(), events.TopicPromotionChanged, "tiered_discount", row.ID, "created")
	common.JSON(w, http.StatusCreated, map[string]any{"data": row})
}

func (h *Handler) UpdateTier(w http.ResponseWriter, r *http.Request) {
	var in tierPayload
	id, err := decode(r, true, &in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	params, err := in.params()
	if err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.UpdateTieredDiscount(r.Context(), id, params)
	if err != nil {
		common.WriteError(w, storeError("tiered discount", err))
		return
	}
	h.changed(r.Context(), events.TopicPromotionChanged, "tiered_discount", id, "updated")
	common.JSON(w, http.StatusOK, map[string]any{"data": row})
}

func (h *Handler) DeleteTier(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "tiered_discount", events.TopicPromotionChanged, h.Store.DeleteTieredDiscount)
}

func (h *Handler) SetTierActive(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "tiered_discount", events.TopicPromotionChanged, h.Store.SetTieredDiscountActive)
}

func (h *Handler) ListPromoCodes(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListPromoCodes(r.Context())
	writeList(w, items, err, "promo code")
}

func (h *Handler) CreatePromoCode(w http.ResponseWriter, r *http.Request) {
	var in promoCodePayload
	if _, err := decode(r, false, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	params, err := in.params()
	if err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.CreatePromoCode(r.Context(), params)
	if err != nil {
		common.WriteError(w, storeError("promo code", err))
		return
	}
	h.changed(r.Context(), events.TopicPromotionChanged, "promo_code", row.ID, "created")
	common.JSON(w, http.StatusCreated, map[string]any{"data": row})
}

func (h *Handler) UpdatePromoCode(w http.ResponseWriter, r *http.Request) {
	var in promoCodePayload
	id, err := decode(r, true, &in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	params, err := in.params()
	if err != nil {
		common.WriteError(w, err)
		return
	}
	row, err := h.Store.UpdatePromoCode(r.Context(), id, params)
	if err != nil {
		common.WriteError(w, storeError("promo code", err))
		return
	}
	h.changed(r.Context(), events.TopicPromotionChanged, "promo_code", id, "updated")
	common.JSON(w, http.StatusOK, map[string]any{"data": row})
}

func (h *Handler) DeletePromoCode(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "promo_code", events.TopicPromotionChanged, h.Store.DeletePromoCode)
}

func (h *Handler) SetPromoCodeActive(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "promo_code", events.TopicPromotionChanged, h.Store.SetPromoCodeActive)
}

func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListAppSettings(r.Context())
	writeList(w, items, err, "setting")
}

// PutSetting stores the raw JSON body under a known settings key.
func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !discount.KnownSetting(key) {
		common.WriteError(w, notFound("setting"))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if _, err := discount.DecodeSettings(map[string]json.RawMessage{key: body}); err != nil {
		common.WriteError(w, invalid(key, "setting"))
		return
	}
	row, err := h.Store.UpsertAppSetting(r.Context(), key, body)
	if err != nil {
		common.WriteError(w, storeError("setting", err))
		return
	}
	h.changed(r.Context(), events.TopicPromotionChanged, "setting", key, "updated")
	common.JSON(w, http.StatusOK, map[string]any{"data": row})
}

func (h *Handler) inTx(ctx context.Context, fn func(Store) error) error {
	if h.Tx == nil {
		return fn(h.Store)
	}
	return h.Tx(ctx, fn)
}
