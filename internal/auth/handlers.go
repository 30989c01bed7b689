package auth

import (
	"net/http"

	"github.com/noah-isme/backend-material/internal/common"
)

// Handler exposes the account endpoint used by the CMS to check access.
type Handler struct{}

// Me returns the authenticated user id and role.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	role, _ := RoleFrom(r.Context())
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"id": userID, "role": role}})
}
