package checkout

import (
	"errors"
	"net/http"

	"github.com/noah-isme/backend-material/internal/cart"
	"github.com/noah-isme/backend-material/internal/common"
)

// Handler turns a cart into a WhatsApp order summary.
type Handler struct {
	Svc *Service
}

// WhatsApp handles POST /api/v1/checkout/whatsapp.
func (h *Handler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var payload Input
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	out, err := h.Svc.Create(r.Context(), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": out})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_CART", "Keranjang masih kosong", nil)
	case errors.Is(err, ErrInvalidShipping), errors.Is(err, cart.ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		common.WriteError(w, err)
	}
}
