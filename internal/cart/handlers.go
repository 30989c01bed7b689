package cart

import (
	"errors"
	"net/http"

	"github.com/noah-isme/backend-material/internal/common"
)

// Handler wires cart services to HTTP.
type Handler struct {
	Svc *Service
}

// Quote handles POST /api/v1/cart/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var req QuoteRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	quote, err := h.Svc.Quote(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidInput) {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	common.WriteError(w, err)
}
