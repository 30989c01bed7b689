package promo

import (
	"errors"
	"net/http"

	"github.com/noah-isme/backend-material/internal/common"
)

// Handler exposes promo code validation to the storefront.
type Handler struct {
	Svc *Service
}

type validateRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// Validate checks a submitted code. Failures are answered with 422 and a
// user-facing message; storage trouble is a 503 the client may retry.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "promo service not configured", nil)
		return
	}
	var req validateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	code, err := h.Svc.Validate(r.Context(), req.Code)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ErrLookupFailed) {
			status = http.StatusServiceUnavailable
		}
		common.JSONError(w, status, ErrorCode(err), UserMessage(err), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"code":            code.Code,
		"discountPercent": code.DiscountPercent,
		"message":         "Kode promo berhasil digunakan",
	}})
}
