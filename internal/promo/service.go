package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-material/internal/db"
	"github.com/noah-isme/backend-material/internal/obs"
)

// Querier captures the lookup the validator needs.
type Querier interface {
	GetPromoCodeByCode(ctx context.Context, code string) (db.PromoCode, error)
}

// Service validates promo codes against storage. It never mutates codes.
type Service struct {
	Q        Querier
	Now      func() time.Time
	Location *time.Location
}

// Validate looks the code up by exact match and checks it is redeemable now.
// Surrounding whitespace is ignored; case is not.
func (s *Service) Validate(ctx context.Context, code string) (Code, error) {
	if s == nil || s.Q == nil {
		return Code{}, errors.New("promo service not configured")
	}
	c, err := s.validate(ctx, strings.TrimSpace(code))
	observe(err)
	return c, err
}

func (s *Service) validate(ctx context.Context, code string) (Code, error) {
	if code == "" {
		return Code{}, ErrNotFound
	}
	row, err := s.Q.GetPromoCodeByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Code{}, ErrNotFound
		}
		return Code{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	c := CodeFromModel(row)
	if err := c.Validate(s.now(), s.Location); err != nil {
		return c, err
	}
	return c, nil
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func observe(err error) {
	if obs.PromoValidationsTotal == nil {
		return
	}
	result := "valid"
	if err != nil {
		result = strings.ToLower(strings.TrimPrefix(ErrorCode(err), "PROMO_"))
	}
	obs.PromoValidationsTotal.WithLabelValues(result).Inc()
}
