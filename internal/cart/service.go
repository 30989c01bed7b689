package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-material/internal/catalog"
	"github.com/noah-isme/backend-material/internal/discount"
	"github.com/noah-isme/backend-material/internal/obs"
	"github.com/noah-isme/backend-material/internal/pricing"
	"github.com/noah-isme/backend-material/internal/promo"
)

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

const meterName = "github.com/noah-isme/backend-material/internal/cart"

// CatalogSource returns the storefront tree.
type CatalogSource interface {
	Tree(ctx context.Context) ([]catalog.Category, error)
}

// DiscountSource returns the active promotion, tiers and settings.
type DiscountSource interface {
	Config(ctx context.Context) (discount.Config, error)
}

// CodeValidator checks a promo code.
type CodeValidator interface {
	Validate(ctx context.Context, code string) (promo.Code, error)
}

// QuoteRequest is a quantity map plus an optional promo code.
type QuoteRequest struct {
	Quantities map[int64]int `json:"quantities" validate:"required,max=500,dive,keys,gt=0,endkeys,gte=0,lte=1000000"`
	PromoCode  string        `json:"promoCode" validate:"omitempty,max=64"`
}

// PromoCodeResult reports what happened to the submitted code.
type PromoCodeResult struct {
	Code            string `json:"code"`
	Applied         bool   `json:"applied"`
	DiscountPercent string `json:"discountPercent,omitempty"`
	Error           string `json:"error,omitempty"`
	Message         string `json:"message"`
}

// Quote is a fully priced cart.
type Quote struct {
	Lines      []Line                `json:"lines"`
	Notices    []Notice              `json:"notices"`
	TotalGross pricing.Money         `json:"totalGross"`
	Discount   pricing.OrderDiscount `json:"discount"`
	Promotion  *pricing.Promotion    `json:"promotion"`
	PromoCode  *PromoCodeResult      `json:"promoCode,omitempty"`
	QuotedAt   time.Time             `json:"quotedAt"`
}

// Empty reports whether no line was priced.
func (q Quote) Empty() bool {
	return len(q.Lines) == 0
}

// Service prices carts against the live catalog and discount configuration.
type Service struct {
	catalog  CatalogSource
	discount DiscountSource
	codes    CodeValidator
	logger   zerolog.Logger
	now      func() time.Time
	maxLines int

	lineCount metric.Int64Histogram
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Catalog  CatalogSource
	Discount DiscountSource
	Codes    CodeValidator
	Logger   zerolog.Logger
	Now      func() time.Time
	MaxLines int
}

// NewService constructs a Service. Codes may be nil, in which case
// submitted codes are reported as not found.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("cart: catalog source is required")
	}
	if cfg.Discount == nil {
		return nil, errors.New("cart: discount source is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxLines < 1 {
		cfg.MaxLines = 500
	}
	hist, err := otel.Meter(meterName).Int64Histogram(
		"cart.quote.lines",
		metric.WithDescription("Number of priced lines per cart quote."),
		metric.WithUnit("{line}"),
	)
	if err != nil {
		return nil, fmt.Errorf("cart: create histogram: %w", err)
	}
	return &Service{
		catalog:   cfg.Catalog,
		discount:  cfg.Discount,
		codes:     cfg.Codes,
		logger:    cfg.Logger,
		now:       cfg.Now,
		maxLines:  cfg.MaxLines,
		lineCount: hist,
	}, nil
}

// Quote loads the catalog, discount configuration and promo code in
// parallel, then prices the cart. An invalid code is reported in the quote
// and the tier discount applies instead.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	if err := s.check(req); err != nil {
		return Quote{}, err
	}

	var (
		tree    []catalog.Category
		cfg     discount.Config
		code    promo.Code
		codeErr error
	)
	submitted := strings.TrimSpace(req.PromoCode)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tree, err = s.catalog.Tree(gctx)
		return err
	})
	g.Go(func() (err error) {
		cfg, err = s.discount.Config(gctx)
		return err
	})
	if submitted != "" {
		g.Go(func() error {
			code, codeErr = s.validate(gctx, submitted)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Quote{}, err
	}

	lines, notices := BuildLines(req.Quantities, tree, cfg.Promotion)
	gross := TotalGross(lines)

	var applied *pricing.AppliedCode
	var codeResult *PromoCodeResult
	if submitted != "" {
		codeResult = &PromoCodeResult{Code: submitted}
		if codeErr != nil {
			codeResult.Error = promo.ErrorCode(codeErr)
			codeResult.Message = promo.UserMessage(codeErr)
			if errors.Is(codeErr, promo.ErrLookupFailed) {
				s.logger.Warn().Err(codeErr).Msg("promo lookup failed during quote")
			}
		} else {
			applied = code.Applied()
			codeResult.Applied = true
			codeResult.DiscountPercent = code.DiscountPercent.String()
			codeResult.Message = "Kode promo berhasil digunakan"
		}
	}

	out := Quote{
		Lines:      lines,
		Notices:    notices,
		TotalGross: gross,
		Discount:   pricing.ResolveOrderDiscount(gross, cfg.TierConfig(), applied),
		Promotion:  cfg.Promotion,
		PromoCode:  codeResult,
		QuotedAt:   s.now(),
	}
	if out.Notices == nil {
		out.Notices = []Notice{}
	}

	s.lineCount.Record(ctx, int64(len(lines)), metric.WithAttributes(attribute.String("source", string(out.Discount.Source))))
	if obs.CartQuotesTotal != nil {
		obs.CartQuotesTotal.WithLabelValues(string(out.Discount.Source)).Inc()
	}
	return out, nil
}

func (s *Service) check(req QuoteRequest) error {
	if len(req.Quantities) > s.maxLines {
		return fmt.Errorf("%w: at most %d products per cart", ErrInvalidInput, s.maxLines)
	}
	for id, qty := range req.Quantities {
		if id <= 0 {
			return fmt.Errorf("%w: product id %d", ErrInvalidInput, id)
		}
		if qty < 0 {
			return fmt.Errorf("%w: negative quantity for product %d", ErrInvalidInput, id)
		}
	}
	return nil
}

func (s *Service) validate(ctx context.Context, code string) (promo.Code, error) {
	if s.codes == nil {
		return promo.Code{}, promo.ErrNotFound
	}
	return s.codes.Validate(ctx, code)
}
