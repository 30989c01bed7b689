package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-material/internal/pricing"
)

func TestFormatShort(t *testing.T) {
	cases := map[string]string{
		"10000":   "10k",
		"25500":   "25.5k",
		"1200000": "1.2jt",
		"1250000": "1.2jt",
		"3000000": "3jt",
		"999999":  "999.9k",
		"500":     "500",
	}
	for in, want := range cases {
		require.Equal(t, want, pricing.FormatShort(d(in)), "input %s", in)
	}
}

func TestRangeLabel(t *testing.T) {
	require.Equal(t, "Rp 10k - 1.2jt", pricing.RangeLabel(d("10000"), d("1200000")))
	require.Equal(t, "Rp 25.5k", pricing.RangeLabel(d("25500"), d("25500")))
}

func TestFormatIDRGrouping(t *testing.T) {
	require.Equal(t, "1.500.000", pricing.FormatIDR(d("1500000")))
	require.Equal(t, "75.000", pricing.FormatIDR(d("75000")))
}
