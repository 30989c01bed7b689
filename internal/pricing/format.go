package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders m with Indonesian digit grouping, e.g. 1.500.000 or
// 111.110,4. No currency prefix.
func FormatIDR(m Money) string {
	f, _ := m.Float64()
	return idPrinter.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}

// FormatShort abbreviates m on the short scale: millions as "jt", thousands
// as "k", truncated to one decimal (1.2jt, 25.5k, 10k).
func FormatShort(m Money) string {
	switch {
	case m.GreaterThanOrEqual(million):
		return m.Div(million).Truncate(1).String() + "jt"
	case m.GreaterThanOrEqual(thousand):
		return m.Div(thousand).Truncate(1).String() + "k"
	default:
		return FormatIDR(m)
	}
}

// RangeLabel renders "Rp X" when both ends match and "Rp X - Y" otherwise.
func RangeLabel(min, max Money) string {
	if min.Equal(max) {
		return "Rp " + FormatShort(min)
	}
	return "Rp " + FormatShort(min) + " - " + FormatShort(max)
}
