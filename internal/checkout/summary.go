package checkout

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/backend-material/internal/cart"
	"github.com/noah-isme/backend-material/internal/pricing"
)

// Shipping is the delivery method picked at checkout.
type Shipping string

const (
	ShippingRegular Shipping = "regular"
	ShippingInstant Shipping = "instant"
)

var (
	// ErrEmptyCart is returned when the quote has no lines.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrInvalidShipping is returned for an unknown shipping method.
	ErrInvalidShipping = errors.New("checkout: unknown shipping method")
)

// DefaultCutoff is the store-time hour after which regular orders ship a day later.
const DefaultCutoff = 15 * time.Hour

// Options configures the summary text and link.
type Options struct {
	Phone    string
	Location *time.Location
	Cutoff   time.Duration
}

// Summary is the WhatsApp hand-off.
type Summary struct {
	Message string `json:"message"`
	Link    string `json:"link"`
}

// BuildSummary renders the order message for q and the wa.me link that opens
// it. Output depends only on its arguments.
func BuildSummary(q cart.Quote, ship Shipping, now time.Time, opts Options) (Summary, error) {
	if q.Empty() {
		return Summary{}, ErrEmptyCart
	}
	shipping, err := shippingLine(ship, now, opts)
	if err != nil {
		return Summary{}, err
	}

	items := make([]string, 0, len(q.Lines))
	for _, l := range q.Lines {
		items = append(items, fmt.Sprintf("%s (%s)\nHarga: Rp%s x %d\nSubtotal: Rp%s",
			l.Name, l.BrandName, pricing.FormatIDR(l.FinalUnitPrice), l.Quantity, pricing.FormatIDR(l.Subtotal)))
	}

	totals := []string{
		"*Rekap Pesanan:*\n" + strings.Join(items, "\n\n"),
		"\n*Total Belanja:* Rp" + pricing.FormatIDR(q.TotalGross),
	}
	d := q.Discount
	if d.Amount.IsPositive() {
		label := fmt.Sprintf("Diskon (%s%%)", d.Percentage.String())
		if d.Source == pricing.SourcePromoCode {
			label = fmt.Sprintf("Diskon Kode %s (%s%%)", d.Code, d.Percentage.String())
		}
		totals = append(totals, fmt.Sprintf("*%s:* -Rp%s", label, pricing.FormatIDR(d.Amount)))
	}
	if d.IsFreeShipping {
		totals = append(totals, "*Promo:* Gratis Ongkir (T&C berlaku)")
	}
	totals = append(totals, "*Total Akhir:* Rp"+pricing.FormatIDR(d.FinalTotal))

	msg := "Halo Admin, saya ingin memesan material konstruksi berikut:\n\n" +
		strings.Join(totals, "\n") + "\n\n" +
		shipping + "\n\n" +
		"Terima kasih."
	return Summary{Message: msg, Link: WhatsAppLink(opts.Phone, msg)}, nil
}

// WhatsAppLink returns a wa.me deep link prefilled with text. Non-digits are
// stripped from phone and spaces are encoded as %20.
func WhatsAppLink(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// RegularShipsTomorrow reports whether a regular order placed at now leaves
// the next day.
func RegularShipsTomorrow(now time.Time, opts Options) bool {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	cutoff := opts.Cutoff
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	local := now.In(loc)
	sinceMidnight := time.Duration(local.Hour())*time.Hour + time.Duration(local.Minute())*time.Minute
	return sinceMidnight < cutoff
}

func shippingLine(ship Shipping, now time.Time, opts Options) (string, error) {
	switch ship {
	case ShippingRegular:
		if RegularShipsTomorrow(now, opts) {
			return "Layanan Pengiriman: Reguler (Dikirim besok)", nil
		}
		return "Layanan Pengiriman: Reguler (Direspon besok, dikirim lusa)", nil
	case ShippingInstant:
		return "Layanan Pengiriman: Instan (3 jam) - Detail biaya akan dikonfirmasi via WhatsApp", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidShipping, ship)
	}
}
