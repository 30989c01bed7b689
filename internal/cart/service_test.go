package cart_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-material/internal/cart"
	"github.com/noah-isme/backend-material/internal/catalog"
	"github.com/noah-isme/backend-material/internal/common"
	"github.com/noah-isme/backend-material/internal/discount"
	"github.com/noah-isme/backend-material/internal/pricing"
	"github.com/noah-isme/backend-material/internal/promo"
)

type staticCatalog struct {
	tree []catalog.Category
	err  error
}

func (s staticCatalog) Tree(context.Context) ([]catalog.Category, error) { return s.tree, s.err }

type staticDiscount struct {
	cfg discount.Config
	err error
}

func (s staticDiscount) Config(context.Context) (discount.Config, error) { return s.cfg, s.err }

type codeTable map[string]promo.Code

func (c codeTable) Validate(_ context.Context, code string) (promo.Code, error) {
	found, ok := c[code]
	if !ok {
		return promo.Code{}, promo.ErrNotFound
	}
	if !found.Active {
		return found, promo.ErrInactive
	}
	return found, nil
}

func tiered() discount.Config {
	ceiling := decimal.NewFromInt(1000000)
	return discount.Config{
		Tiers: []pricing.Tier{
			{ID: 1, MinSpend: decimal.Zero, MaxSpend: &ceiling, DiscountPercent: decimal.Zero, Active: true},
			{ID: 2, MinSpend: ceiling, DiscountPercent: decimal.NewFromInt(5), FreeShipping: true, Active: true, Description: "Diskon 5% + gratis ongkir"},
		},
		Settings: discount.Settings{TieredDiscount: discount.Toggle{Enabled: true}},
	}
}

func newQuoteService(t *testing.T, cat cart.CatalogSource, disc cart.DiscountSource) *cart.Service {
	t.Helper()
	svc, err := cart.NewService(cart.ServiceConfig{
		Catalog:  cat,
		Discount: disc,
		Codes: codeTable{
			"HEMAT20": {Code: "HEMAT20", DiscountPercent: decimal.NewFromInt(20), Active: true},
			"LAMA":    {Code: "LAMA", DiscountPercent: decimal.NewFromInt(30)},
		},
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func TestQuoteAppliesTier(t *testing.T) {
	svc := newQuoteService(t, staticCatalog{tree: sampleTree()}, staticDiscount{cfg: tiered()})
	// 6 × 250,000 = 1,500,000
	q, err := svc.Quote(context.Background(), cart.QuoteRequest{Quantities: map[int64]int{101: 6}})
	require.NoError(t, err)
	require.Equal(t, "1500000", q.TotalGross.String())
	require.Equal(t, pricing.SourceTier, q.Discount.Source)
	require.Equal(t, int64(2), q.Discount.TierID)
	require.Equal(t, "75000", q.Discount.Amount.String())
	require.Equal(t, "1425000", q.Discount.FinalTotal.String())
	require.True(t, q.Discount.IsFreeShipping)
	require.Nil(t, q.PromoCode)
	require.NotNil(t, q.Notices)
}

func TestQuoteCodeOverridesTier(t *testing.T) {
	svc := newQuoteService(t, staticCatalog{tree: sampleTree()}, staticDiscount{cfg: tiered()})
	q, err := svc.Quote(context.Background(), cart.QuoteRequest{Quantities: map[int64]int{101: 6}, PromoCode: " HEMAT20 "})
	require.NoError(t, err)
	require.Equal(t, pricing.SourcePromoCode, q.Discount.Source)
	require.Equal(t, "300000", q.Discount.Amount.String())
	require.Equal(t, "1200000", q.Discount.FinalTotal.String())
	require.False(t, q.Discount.IsFreeShipping)
	require.True(t, q.PromoCode.Applied)
	require.Equal(t, "20", q.PromoCode.DiscountPercent)
}

func TestQuoteInvalidCodeKeepsTier(t *testing.T) {
	svc := newQuoteService(t, staticCatalog{tree: sampleTree()}, staticDiscount{cfg: tiered()})
	q, err := svc.Quote(context.Background(), cart.QuoteRequest{Quantities: map[int64]int{101: 6}, PromoCode: "LAMA"})
	require.NoError(t, err)
	require.Equal(t, pricing.SourceTier, q.Discount.Source)
	require.False(t, q.PromoCode.Applied)
	require.Equal(t, "PROMO_INACTIVE", q.PromoCode.Error)
	require.Equal(t, "Kode promo sudah tidak aktif", q.PromoCode.Message)

	q, err = svc.Quote(context.Background(), cart.QuoteRequest{Quantities: map[int64]int{101: 6}, PromoCode: "NOPE"})
	require.NoError(t, err)
	require.Equal(t, "PROMO_NOT_FOUND", q.PromoCode.Error)
}

func TestQuoteTiersOffWhenFlagDisabled(t *testing.T) {
	cfg := tiered()
	cfg.Settings.TieredDiscount.Enabled = false
	svc := newQuoteService(t, staticCatalog{tree: sampleTree()}, staticDiscount{cfg: cfg})
	q, err := svc.Quote(context.Background(), cart.QuoteRequest{Quantities: map[int64]int{101: 6}})
	require.NoError(t, err)
	require.Equal(t, pricing.SourceNone, q.Discount.Source)
	require.Equal(t, "1500000", q.Discount.FinalTotal.String())
}

func TestQuoteRejectsNegativeQuantity(t *testing.T) {
	svc := newQuoteService(t, staticCatalog{tree: sampleTree()}, staticDiscount{cfg: tiered()})
	_, err := svc.Quote(context.Background(), cart.QuoteRequest{Quantities: map[int64]int{101: -1}})
	require.ErrorIs(t, err, cart.ErrInvalidInput)
}

func TestQuoteLoadFailure(t *testing.T) {
	failing := staticDiscount{err: common.DataUnavailable(errors.New("db down"))}
	svc := newQuoteService(t, staticCatalog{tree: sampleTree()}, failing)
	_, err := svc.Quote(context.Background(), cart.QuoteRequest{Quantities: map[int64]int{101: 1}})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusServiceUnavailable, appErr.HTTPStatus)
}

func TestQuoteHandler(t *testing.T) {
	svc := newQuoteService(t, staticCatalog{tree: sampleTree()}, staticDiscount{cfg: tiered()})
	h := &cart.Handler{Svc: svc}

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/quote", bytes.NewBufferString(body))
		h.Quote(rec, req)
		return rec
	}

	rec := post(`{"quantities":{"100":2,"200":1},"promoCode":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Lines []struct {
				ProductID int64  `json:"productId"`
				Quantity  int    `json:"quantity"`
				Subtotal  string `json:"subtotal"`
			} `json:"lines"`
			Notices []cart.Notice `json:"notices"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Lines, 2)
	require.Equal(t, "246912", resp.Data.Lines[0].Subtotal)
	require.Equal(t, 10, resp.Data.Lines[1].Quantity)
	require.Len(t, resp.Data.Notices, 1)

	rec = post(`{"quantities":{"100":-2}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = post(`{"quantities":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(`{"items":{}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
