package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-material/internal/pricing"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "want %s got %s", want, got)
}

func TestRoundToNearestHundred(t *testing.T) {
	cases := map[string]string{
		"222220.8": "222200",
		"1425000":  "1425000",
		"150":      "200",
		"149.99":   "100",
		"49":       "0",
		"0":        "0",
	}
	for in, want := range cases {
		requireDecimal(t, want, pricing.RoundToNearestHundred(d(in)))
	}
}

func TestRoundToNearestHundredIdempotent(t *testing.T) {
	for _, in := range []string{"0", "1", "99.5", "12345.67", "222220.8", "987654321.49"} {
		once := pricing.RoundToNearestHundred(d(in))
		twice := pricing.RoundToNearestHundred(once)
		require.True(t, once.Equal(twice), "not idempotent for %s", in)
	}
}

func TestApplyPercentScenario(t *testing.T) {
	unit := pricing.ApplyPercent(d("123456"), d("10"))
	requireDecimal(t, "111110.4", unit)
	subtotal := unit.Mul(decimal.NewFromInt(2))
	requireDecimal(t, "222220.8", subtotal)
	requireDecimal(t, "222200", pricing.RoundToNearestHundred(subtotal))
}

func TestClampPercent(t *testing.T) {
	requireDecimal(t, "0", pricing.ClampPercent(d("-5")))
	requireDecimal(t, "100", pricing.ClampPercent(d("150")))
	requireDecimal(t, "12.5", pricing.ClampPercent(d("12.5")))
}
