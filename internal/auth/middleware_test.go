package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-material/internal/auth"
)

const (
	adminID    = "8d4c3c1e-7d0e-4b8a-9b1f-2a6f3b9d1c01"
	customerID = "1f0e2d3c-4b5a-4968-8776-a5b4c3d2e1f0"
	secret     = "test-secret"
)

type roleStore struct {
	roles map[string]string
	err   error
}

func (s roleStore) GetUserRole(_ context.Context, userID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	role, ok := s.roles[userID]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return role, nil
}

func newService(t *testing.T, store roleStore, now time.Time) *auth.Service {
	t.Helper()
	svc, err := auth.NewService(auth.Config{Roles: store, Secret: secret, Issuer: "hosted-auth", Audience: "material"})
	require.NoError(t, err)
	svc.WithNow(func() time.Time { return now })
	return svc
}

func newRouter(svc *auth.Service) http.Handler {
	mw := auth.Middleware{Service: svc, Logger: zerolog.Nop()}
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth, mw.RequireRole(auth.RoleAdmin))
		r.Get("/admin/me", (&auth.Handler{}).Me)
	})
	return r
}

func call(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAdminAccess(t *testing.T) {
	now := time.Now()
	store := roleStore{roles: map[string]string{adminID: auth.RoleAdmin, customerID: auth.RoleCustomer}}
	svc := newService(t, store, now)
	h := newRouter(svc)

	token, err := svc.SignAccessToken(adminID, time.Hour)
	require.NoError(t, err)
	rr := call(h, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, adminID, body.Data["id"])
	require.Equal(t, auth.RoleAdmin, body.Data["role"])

	token, err = svc.SignAccessToken(customerID, time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, call(h, token).Code)

	token, err = svc.SignAccessToken("2b8e1c55-6a4d-4f7e-9c3b-0d1e2f3a4b5c", time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, call(h, token).Code)
}

func TestRejectsBadTokens(t *testing.T) {
	now := time.Now()
	store := roleStore{roles: map[string]string{adminID: auth.RoleAdmin}}
	svc := newService(t, store, now)
	h := newRouter(svc)

	require.Equal(t, http.StatusUnauthorized, call(h, "").Code)
	require.Equal(t, http.StatusUnauthorized, call(h, "not-a-jwt").Code)

	expired, err := newService(t, store, now.Add(-2*time.Hour)).SignAccessToken(adminID, time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, call(h, expired).Code)

	other, err := auth.NewService(auth.Config{Roles: store, Secret: "other-secret", Issuer: "hosted-auth", Audience: "material"})
	require.NoError(t, err)
	forged, err := other.SignAccessToken(adminID, time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, call(h, forged).Code)

	notUUID, err := svc.SignAccessToken("admin", time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, call(h, notUUID).Code)

	tok, err := jwt.NewBuilder().Subject(adminID).Issuer("hosted-auth").Audience([]string{"material"}).
		IssuedAt(now).Expiration(now.Add(time.Hour)).Build()
	require.NoError(t, err)
	hs512, err := jwt.Sign(tok, jwt.WithKey(jwa.HS512, []byte(secret)))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, call(h, string(hs512)).Code)
}

func TestRoleLookupFailure(t *testing.T) {
	now := time.Now()
	svc := newService(t, roleStore{err: errors.New("db down")}, now)
	token, err := svc.SignAccessToken(adminID, time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, call(newRouter(svc), token).Code)
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := auth.NewService(auth.Config{Roles: roleStore{}})
	require.Error(t, err)
	_, err = auth.NewService(auth.Config{Secret: "x"})
	require.Error(t, err)
}
