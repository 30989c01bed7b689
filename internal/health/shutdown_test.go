package health_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-material/internal/health"
)

func TestReadinessDrainsOnShutdown(t *testing.T) {
	t.Cleanup(func() { health.SetReady(true) })
	handler := health.Handler{Checker: &stubChecker{}}
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)

	health.SetReady(true)
	rr := httptest.NewRecorder()
	handler.Ready(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	health.SetReady(false)
	rr = httptest.NewRecorder()
	handler.Ready(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.JSONEq(t, `{"status":"shutting down"}`, rr.Body.String())

	// Liveness stays green while draining.
	rr = httptest.NewRecorder()
	handler.Live(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}
