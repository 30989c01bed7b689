package promo

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-material/internal/db"
	"github.com/noah-isme/backend-material/internal/pricing"
)

var (
	// ErrNotFound is returned when no code matches exactly.
	ErrNotFound = errors.New("promo code not found")
	// ErrInactive is returned when the code exists but has been switched off.
	ErrInactive = errors.New("promo code inactive")
	// ErrNotCurrentlyValid is returned when today is outside the validity window.
	ErrNotCurrentlyValid = errors.New("promo code not currently valid")
	// ErrLookupFailed wraps storage failures. Resubmitting may succeed.
	ErrLookupFailed = errors.New("promo code lookup failed")
)

// Code is a redeemable promo code.
type Code struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	Active          bool            `json:"isActive"`
}

// CodeFromModel converts the stored row.
func CodeFromModel(m db.PromoCode) Code {
	return Code{
		ID:              m.ID,
		Code:            m.Code,
		DiscountPercent: m.DiscountPercent,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		Active:          m.IsActive,
	}
}

// Validate checks the active flag and the validity window. The window is
// compared by calendar day in loc and includes both the start and the whole
// end day.
func (c Code) Validate(now time.Time, loc *time.Location) error {
	if !c.Active {
		return ErrInactive
	}
	if loc == nil {
		loc = time.UTC
	}
	today := dayNumber(now.In(loc))
	if today < dayNumber(c.StartDate) || today > dayNumber(c.EndDate) {
		return ErrNotCurrentlyValid
	}
	return nil
}

// Applied returns the code in the shape the order discount rules consume.
func (c Code) Applied() *pricing.AppliedCode {
	return &pricing.AppliedCode{Code: c.Code, DiscountPercent: c.DiscountPercent}
}

// DATE columns arrive as midnight UTC, so the stored calendar day is read
// from the value as-is.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// UserMessage returns the storefront copy for a validation failure.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "Kode promo tidak ditemukan"
	case errors.Is(err, ErrInactive):
		return "Kode promo sudah tidak aktif"
	case errors.Is(err, ErrNotCurrentlyValid):
		return "Kode promo tidak berlaku saat ini"
	default:
		return "Gagal memeriksa kode promo, silakan coba lagi"
	}
}

// ErrorCode returns the machine-readable code for a validation failure.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "PROMO_NOT_FOUND"
	case errors.Is(err, ErrInactive):
		return "PROMO_INACTIVE"
	case errors.Is(err, ErrNotCurrentlyValid):
		return "PROMO_NOT_CURRENTLY_VALID"
	default:
		return "PROMO_LOOKUP_FAILED"
	}
}
