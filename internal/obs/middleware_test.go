package obs_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-material/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("", []float64{1, 10}, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/health/ready"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/health/ready", "204")))
	require.NotZero(t, testutil.CollectAndCount(metrics.ReqDur))
	require.Zero(t, testutil.ToFloat64(metrics.InFlight))

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.Contains(t, names, obs.DefaultNamespace+"_http_requests_total")
}

// Metrics middleware sits above the router, so the pattern is read after chi
// has matched the request.
func TestHTTPMetricsUseRoutePattern(t *testing.T) {
	metrics := obs.NewHTTPMetrics("material_test", nil, prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	r.Get("/api/v1/categories/{id}/price-range", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/api/v1/categories/7/price-range", "/api/v1/categories/12/price-range", "/wp-login.php"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/api/v1/categories/{id}/price-range", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestRequestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	r := chi.NewRouter()
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/api/v1/cart/quote", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Empty(t, buf.String(), "health probes log at debug")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/quote", nil)
	req.Header.Set("Idempotency-Key", "k1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	line := buf.String()
	require.Contains(t, line, `"level":"error"`)
	require.Contains(t, line, `"route":"/api/v1/cart/quote"`)
	require.Contains(t, line, `"status":503`)
	require.Contains(t, line, `"idempotent":true`)
}
