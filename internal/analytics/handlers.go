package analytics

import (
	"net/http"

	"github.com/noah-isme/backend-material/internal/common"
)

// Handler exposes analytics read endpoints.
type Handler struct {
	Svc *Service
}

// Overview aggregates key analytics metrics for dashboards.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	out, err := h.Svc.Overview(r.Context())
	if err != nil {
		common.WriteError(w, common.DataUnavailable(err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
