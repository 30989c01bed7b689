package discount

import (
	"net/http"

	"github.com/noah-isme/backend-material/internal/common"
	"github.com/noah-isme/backend-material/internal/pricing"
)

// Handler serves the storefront promotion banner data.
type Handler struct {
	Svc *Service
}

type storefrontPayload struct {
	Promotion             *pricing.Promotion `json:"promotion"`
	Tiers                 []pricing.Tier     `json:"tiers"`
	TieredDiscountEnabled bool               `json:"tieredDiscountEnabled"`
}

// Storefront handles GET /api/v1/storefront/promotions.
func (h *Handler) Storefront(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount service not configured", nil)
		return
	}
	cfg, err := h.Svc.Config(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	out := storefrontPayload{
		Promotion:             cfg.Promotion,
		Tiers:                 []pricing.Tier{},
		TieredDiscountEnabled: cfg.Settings.TieredDiscount.Enabled,
	}
	if out.TieredDiscountEnabled {
		if banner := pricing.BannerTiers(cfg.Tiers); banner != nil {
			out.Tiers = banner
		}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
