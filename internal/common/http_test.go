package common_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-material/internal/common"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.9:4000", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "2001:db8::1"}, "10.0.0.9:4000", "2001:db8::1"},
		{"garbage forwarded", map[string]string{"X-Forwarded-For": "promo-bot-42"}, "10.0.0.9:4000", "10.0.0.9"},
		{"remote only", nil, "192.0.2.4:51234", "192.0.2.4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/promo-codes/validate", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tc.want, common.ClientIP(req))
		})
	}
}
