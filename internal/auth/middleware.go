package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-material/internal/common"
)

var errNoToken = errors.New("auth: token missing")

type roleKey struct{}

// RoleFrom returns the role RequireRole resolved for the request.
func RoleFrom(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey{}).(string)
	return role, ok
}

// Middleware wires authentication context into HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  zerolog.Logger
}

// RequireAuth enforces that a valid token is present before executing the next handler.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := m.authenticateRequest(r)
		if err != nil {
			var appErr *common.AppError
			if errors.As(err, &appErr) {
				common.WriteError(w, appErr)
				return
			}
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows the request through when the authenticated user holds
// one of roles. It must run after RequireAuth.
func (m Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := common.UserID(r.Context())
			if !ok {
				common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
				return
			}
			role, err := m.Service.Role(r.Context(), userID)
			if errors.Is(err, ErrUnknownUser) {
				common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role", nil)
				return
			}
			if err != nil {
				m.Logger.Error().Err(err).Str("user_id", userID).Msg("role lookup failed")
				common.JSONError(w, http.StatusServiceUnavailable, "DATA_UNAVAILABLE", "data is temporarily unavailable", nil)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), roleKey{}, role)))
					return
				}
			}
			common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role", nil)
		})
	}
}

func (m Middleware) authenticateRequest(r *http.Request) (context.Context, error) {
	if m.Service == nil {
		return r.Context(), errors.New("auth: service not configured")
	}
	token := extractToken(r)
	if token == "" {
		return r.Context(), errNoToken
	}
	userID, err := m.Service.ParseAccessToken(token)
	if err != nil {
		return r.Context(), err
	}
	return common.WithUserID(r.Context(), userID), nil
}

func extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
