package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-material/internal/cart"
	"github.com/noah-isme/backend-material/internal/db"
	"github.com/noah-isme/backend-material/internal/events"
	"github.com/noah-isme/backend-material/internal/obs"
)

// Quoter prices a cart.
type Quoter interface {
	Quote(ctx context.Context, req cart.QuoteRequest) (cart.Quote, error)
}

// Emitter records domain events.
type Emitter interface {
	Emit(ctx context.Context, topic, aggregateID string, payload any) (db.DomainEvent, error)
}

// Input is the checkout request body.
type Input struct {
	Quantities map[int64]int `json:"quantities" validate:"required,min=1,max=500,dive,keys,gt=0,endkeys,gte=0,lte=1000000"`
	PromoCode  string        `json:"promoCode" validate:"omitempty,max=64"`
	Shipping   Shipping      `json:"shipping" validate:"required,oneof=regular instant"`
}

// Output is what the storefront needs to open WhatsApp.
type Output struct {
	Reference string     `json:"reference"`
	Message   string     `json:"message"`
	Link      string     `json:"link"`
	Quote     cart.Quote `json:"quote"`
}

// Service turns a cart into a WhatsApp order summary. Nothing is persisted
// besides the domain event.
type Service struct {
	Quotes  Quoter
	Events  Emitter
	Options Options
	Logger  zerolog.Logger
	Now     func() time.Time
}

// Create quotes the cart and renders the summary.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Quotes == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	quote, err := s.Quotes.Quote(ctx, cart.QuoteRequest{Quantities: in.Quantities, PromoCode: in.PromoCode})
	if err != nil {
		return Output{}, err
	}
	summary, err := BuildSummary(quote, in.Shipping, s.now(), s.Options)
	if err != nil {
		return Output{}, err
	}

	out := Output{
		Reference: uuid.NewString(),
		Message:   summary.Message,
		Link:      summary.Link,
		Quote:     quote,
	}
	if obs.CheckoutSummariesTotal != nil {
		obs.CheckoutSummariesTotal.WithLabelValues(string(in.Shipping)).Inc()
	}
	if s.Events != nil {
		payload := map[string]any{
			"reference":  out.Reference,
			"shipping":   in.Shipping,
			"lines":      len(quote.Lines),
			"totalGross": quote.TotalGross,
			"finalTotal": quote.Discount.FinalTotal,
			"source":     quote.Discount.Source,
		}
		if _, err := s.Events.Emit(ctx, events.TopicCheckoutSummaryCreated, out.Reference, payload); err != nil {
			s.Logger.Warn().Err(err).Str("reference", out.Reference).Msgf("emit %s failed", events.TopicCheckoutSummaryCreated)
		}
	}
	return out, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
