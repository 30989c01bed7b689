package admin_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-material/internal/admin"
	"github.com/noah-isme/backend-material/internal/db"
	"github.com/noah-isme/backend-material/internal/events"
)

var now = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

// stubStore embeds admin.Store so tests only override what they call.
type stubStore struct {
	admin.Store

	calls      []string
	categories []db.Category
	createErr  error
	deleted    int64
	promotions map[int64]db.Promotion
	productIDs map[int64][]int64
	insertErr  error
	settings   map[string]json.RawMessage
	toggled    map[int64]bool
}

func (s *stubStore) ListCategories(context.Context) ([]db.Category, error) {
	s.calls = append(s.calls, "ListCategories")
	return s.categories, nil
}

func (s *stubStore) CreateCategory(_ context.Context, arg db.CreateCategoryParams) (db.Category, error) {
	s.calls = append(s.calls, "CreateCategory")
	if s.createErr != nil {
		return db.Category{}, s.createErr
	}
	return db.Category{ID: 7, Name: arg.Name, Description: arg.Description, CreatedAt: now}, nil
}

func (s *stubStore) UpdateCategory(_ context.Context, arg db.UpdateCategoryParams) (db.Category, error) {
	s.calls = append(s.calls, "UpdateCategory")
	if arg.ID != 7 {
		return db.Category{}, pgx.ErrNoRows
	}
	return db.Category{ID: arg.ID, Name: arg.Name}, nil
}

func (s *stubStore) DeleteBrand(_ context.Context, id int64) (int64, error) {
	s.calls = append(s.calls, "DeleteBrand")
	if id == 3 {
		return 0, &pgconn.PgError{Code: "23503", ConstraintName: "products_brand_id_fkey"}
	}
	return s.deleted, nil
}

func (s *stubStore) CreatePromotion(_ context.Context, arg db.PromotionParams) (db.Promotion, error) {
	s.calls = append(s.calls, "CreatePromotion")
	row := db.Promotion{ID: 5, Title: arg.Title, DiscountPercent: arg.DiscountPercent, EndDate: arg.EndDate,
		GimmickType: arg.GimmickType, Type: arg.Type}
	s.promotions[row.ID] = row
	return row, nil
}

func (s *stubStore) UpdatePromotion(_ context.Context, id int64, arg db.PromotionParams) (db.Promotion, error) {
	s.calls = append(s.calls, "UpdatePromotion")
	if _, ok := s.promotions[id]; !ok {
		return db.Promotion{}, pgx.ErrNoRows
	}
	row := db.Promotion{ID: id, Title: arg.Title, DiscountPercent: arg.DiscountPercent, EndDate: arg.EndDate,
		GimmickType: arg.GimmickType, Type: arg.Type}
	s.promotions[id] = row
	return row, nil
}

func (s *stubStore) ListPromotions(context.Context) ([]db.Promotion, error) {
	s.calls = append(s.calls, "ListPromotions")
	out := make([]db.Promotion, 0, len(s.promotions))
	for _, p := range s.promotions {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubStore) ListPromotionProductIDs(_ context.Context, id int64) ([]int64, error) {
	return s.productIDs[id], nil
}

func (s *stubStore) DeletePromotionProducts(_ context.Context, id int64) error {
	s.calls = append(s.calls, "DeletePromotionProducts")
	delete(s.productIDs, id)
	return nil
}

func (s *stubStore) InsertPromotionProducts(_ context.Context, id int64, ids []int64) error {
	s.calls = append(s.calls, "InsertPromotionProducts")
	if s.insertErr != nil {
		return s.insertErr
	}
	if len(ids) > 0 {
		s.productIDs[id] = ids
	}
	return nil
}

func (s *stubStore) SetPromoCodeActive(_ context.Context, id int64, active bool) (int64, error) {
	s.calls = append(s.calls, "SetPromoCodeActive")
	if id != 4 {
		return 0, nil
	}
	s.toggled[id] = active
	return 1, nil
}

func (s *stubStore) UpsertAppSetting(_ context.Context, key string, value json.RawMessage) (db.AppSetting, error) {
	s.calls = append(s.calls, "UpsertAppSetting")
	s.settings[key] = value
	return db.AppSetting{Key: key, Value: value, UpdatedAt: now}, nil
}

type recorder struct {
	emitted []string
}

func (r *recorder) Emit(_ context.Context, topic, aggregateID string, _ any) (db.DomainEvent, error) {
	r.emitted = append(r.emitted, topic+" "+aggregateID)
	return db.DomainEvent{Topic: topic, AggregateID: aggregateID}, nil
}

type activator struct {
	ids []int64
	err error
}

func (a *activator) Activate(_ context.Context, id int64) error {
	a.ids = append(a.ids, id)
	return a.err
}

type fixture struct {
	store      *stubStore
	events     *recorder
	promotions *activator
	txCalls    int
	router     chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: &stubStore{
			promotions: map[int64]db.Promotion{},
			productIDs: map[int64][]int64{},
			settings:   map[string]json.RawMessage{},
			toggled:    map[int64]bool{},
		},
		events:     &recorder{},
		promotions: &activator{},
	}
	h := &admin.Handler{
		Store: f.store,
		Tx: func(ctx context.Context, fn func(admin.Store) error) error {
			f.txCalls++
			return fn(f.store)
		},
		Events:     f.events,
		Promotions: f.promotions,
		Logger:     zerolog.Nop(),
		Now:        func() time.Time { return now },
	}
	r := chi.NewRouter()
	r.Route("/admin", h.Routes)
	f.router = r
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Details []struct {
			Field string `json:"field"`
			Rule  string `json:"rule"`
		} `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestCreateCategoryEmitsCatalogChange(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/admin/categories", `{"name":"Semen","description":"Semen dan mortar"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var body struct {
		Data db.Category `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, int64(7), body.Data.ID)
	require.Equal(t, "Semen", body.Data.Name)
	require.Equal(t, []string{events.TopicCatalogChanged + " category:7"}, f.events.emitted)
}

func TestListCategoriesReturnsEmptyArray(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodGet, "/admin/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"data":[]}`, rr.Body.String())
}

func TestCreateCategoryValidation(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/admin/categories", `{"description":"no name"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decodeError(t, rr)
	require.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	require.Len(t, body.Error.Details, 1)
	require.Equal(t, "name", body.Error.Details[0].Field)
	require.Equal(t, "required", body.Error.Details[0].Rule)
	require.Empty(t, f.store.calls)
}

func TestCreateCategoryDuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	f.store.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "categories_name_key"}

	rr := f.do(http.MethodPost, "/admin/categories", `{"name":"Semen"}`)
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "CONFLICT", decodeError(t, rr).Error.Code)
	require.Empty(t, f.events.emitted)
}

func TestUpdateMissingCategoryIsNotFound(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPut, "/admin/categories/8", `{"name":"Besi"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "NOT_FOUND", decodeError(t, rr).Error.Code)

	rr = f.do(http.MethodPut, "/admin/categories/abc", `{"name":"Besi"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteBrand(t *testing.T) {
	f := newFixture(t)

	f.store.deleted = 1
	rr := f.do(http.MethodDelete, "/admin/brands/2", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, []string{events.TopicCatalogChanged + " brand:2"}, f.events.emitted)

	rr = f.do(http.MethodDelete, "/admin/brands/3", "")
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "REFERENCE_CONFLICT", decodeError(t, rr).Error.Code)

	f.store.deleted = 0
	rr = f.do(http.MethodDelete, "/admin/brands/9", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Len(t, f.events.emitted, 1)
}

func TestCreatePromotionStoresProductsInTransaction(t *testing.T) {
	f := newFixture(t)

	body := `{"title":"Promo Semen","discountPercent":"15","endDate":"2024-03-20T23:59:59+07:00",
		"gimmick":"countdown","type":"product_specific","productIds":[101,100,101]}`
	rr := f.do(http.MethodPost, "/admin/promotions", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var out struct {
		Data struct {
			ID         int64   `json:"id"`
			Type       string  `json:"type"`
			ProductIDs []int64 `json:"productIds"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, int64(5), out.Data.ID)
	require.Equal(t, []int64{100, 101}, out.Data.ProductIDs)
	require.Equal(t, 1, f.txCalls)
	require.Equal(t, []string{"CreatePromotion", "InsertPromotionProducts"}, f.store.calls)
	require.Equal(t, []string{events.TopicPromotionChanged + " promotion:5"}, f.events.emitted)
	require.True(t, f.store.promotions[5].DiscountPercent.Equal(decimal.NewFromInt(15)))
}

func TestCreatePromotionRejects(t *testing.T) {
	f := newFixture(t)

	cases := map[string]string{
		"percent above 100": `{"title":"X","discountPercent":"120","endDate":"2024-03-20T00:00:00Z","gimmick":"pulse","type":"sitewide"}`,
		"unknown gimmick":   `{"title":"X","discountPercent":"10","endDate":"2024-03-20T00:00:00Z","gimmick":"spin","type":"sitewide"}`,
		"missing products":  `{"title":"X","discountPercent":"10","endDate":"2024-03-20T00:00:00Z","gimmick":"pulse","type":"product_specific"}`,
		"already ended":     `{"title":"X","discountPercent":"10","endDate":"2024-03-01T00:00:00Z","gimmick":"pulse","type":"sitewide"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := f.do(http.MethodPost, "/admin/promotions", body)
			require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
		})
	}
	require.Empty(t, f.store.calls)
	require.Empty(t, f.events.emitted)
}

func TestUpdatePromotionReplacesProducts(t *testing.T) {
	f := newFixture(t)
	f.store.promotions[5] = db.Promotion{ID: 5, Type: "product_specific"}
	f.store.productIDs[5] = []int64{100, 101}

	body := `{"title":"Promo Akhir Bulan","discountPercent":"10","endDate":"2024-03-31T00:00:00Z","gimmick":"glow","type":"sitewide"}`
	rr := f.do(http.MethodPut, "/admin/promotions/5", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, []string{"UpdatePromotion", "DeletePromotionProducts", "InsertPromotionProducts"}, f.store.calls)
	require.NotContains(t, f.store.productIDs, int64(5))
	require.JSONEq(t, `[]`, extract(t, rr, "productIds"))

	rr = f.do(http.MethodPut, "/admin/promotions/6", body)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPromotionTransactionFailureSkipsEvent(t *testing.T) {
	f := newFixture(t)
	f.store.insertErr = errors.New("connection reset")

	body := `{"title":"X","discountPercent":"10","endDate":"2024-03-20T00:00:00Z","gimmick":"pulse","type":"product_specific","productIds":[1]}`
	rr := f.do(http.MethodPost, "/admin/promotions", body)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Empty(t, f.events.emitted)
}

func TestListPromotionsIncludesProducts(t *testing.T) {
	f := newFixture(t)
	f.store.promotions[5] = db.Promotion{ID: 5, Title: "Promo", Type: "product_specific"}
	f.store.productIDs[5] = []int64{100}

	rr := f.do(http.MethodGet, "/admin/promotions", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Data []struct {
			ID         int64   `json:"id"`
			ProductIDs []int64 `json:"productIds"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	require.Equal(t, []int64{100}, out.Data[0].ProductIDs)

	var raw struct {
		Data []map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	for _, key := range []string{"discountPercent", "endDate", "isActive", "gimmickType", "productIds"} {
		require.Contains(t, raw.Data[0], key)
	}
	require.NotContains(t, raw.Data[0], "product_ids")
	require.NotContains(t, raw.Data[0], "is_active")
}

func TestActivatePromotionDelegates(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/admin/promotions/5/activate", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, []int64{5}, f.promotions.ids)
	require.JSONEq(t, `{"data":{"id":5,"isActive":true}}`, rr.Body.String())
}

func TestSetPromoCodeActive(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPatch, "/admin/promo-codes/4/active", `{"isActive":false}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.False(t, f.store.toggled[4])
	require.Contains(t, f.store.toggled, int64(4))
	require.Equal(t, []string{events.TopicPromotionChanged + " promo_code:4"}, f.events.emitted)

	rr = f.do(http.MethodPatch, "/admin/promo-codes/4/active", `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = f.do(http.MethodPatch, "/admin/promo-codes/9/active", `{"isActive":true}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreatePromoCodeValidation(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/admin/promo-codes", `{"code":"HEMAT 20","discountPercent":"20","startDate":"2024-03-01","endDate":"2024-03-31"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = f.do(http.MethodPost, "/admin/promo-codes", `{"code":"HEMAT20","discountPercent":"20","startDate":"2024-03-31","endDate":"2024-03-01"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, "endDate", decodeError(t, rr).Error.Details[0].Field)

	rr = f.do(http.MethodPost, "/admin/promo-codes", `{"code":"HEMAT20","discountPercent":"20","startDate":"01-03-2024","endDate":"2024-03-31"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestCreateTierValidation(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/admin/tiered-discounts", `{"minSpend":"1000000","maxSpend":"500000","discountPercent":"5"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, "maxSpend", decodeError(t, rr).Error.Details[0].Field)
}

func TestPutSetting(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPut, "/admin/settings/tiered_discount_active", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"enabled":true}`, string(f.store.settings["tiered_discount_active"]))
	require.Equal(t, []string{events.TopicPromotionChanged + " setting:tiered_discount_active"}, f.events.emitted)

	rr = f.do(http.MethodPut, "/admin/settings/maintenance_mode", `{"enabled":true}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(http.MethodPut, "/admin/settings/tiered_discount_active", `{"enabled":`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPut, "/admin/settings/tiered_discount_active", `{"enabled":"sometimes"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Len(t, f.store.calls, 1)
}

func extract(t *testing.T, rr *httptest.ResponseRecorder, field string) string {
	t.Helper()
	var out struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return string(out.Data[field])
}
