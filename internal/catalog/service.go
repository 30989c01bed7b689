package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-material/internal/cache"
	"github.com/noah-isme/backend-material/internal/common"
	"github.com/noah-isme/backend-material/internal/db"
)

// ErrNotFound is returned when a category does not exist in the tree.
var ErrNotFound = errors.New("catalog: not found")

// Querier captures the reads needed to assemble the tree.
type Querier interface {
	ListCategories(ctx context.Context) ([]db.Category, error)
	ListSubCategories(ctx context.Context) ([]db.SubCategory, error)
	ListBrands(ctx context.Context) ([]db.Brand, error)
	ListCatalogProducts(ctx context.Context) ([]db.CatalogProduct, error)
}

// Service loads the catalog tree through the cache and answers listing queries.
type Service struct {
	queries      Querier
	cache        *cache.Cache
	logger       zerolog.Logger
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      Querier
	Cache        *cache.Cache
	Logger       zerolog.Logger
	DefaultLimit int
	MaxLimit     int
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query         string
	CategoryID    int64
	SubCategoryID int64
	BrandID       int64
	Sort          SortOption
	Page          int
	Limit         int
}

// ProductListResult contains list data and pagination metadata.
type ProductListResult struct {
	Items []Listing
	Total int
	Page  int
	Limit int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 50
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 200
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		queries:      cfg.Queries,
		cache:        cfg.Cache,
		logger:       cfg.Logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// Tree returns the full storefront tree. A cache miss loads the four tables
// concurrently; any failed load fails the whole call.
func (s *Service) Tree(ctx context.Context) ([]Category, error) {
	var cached []Category
	if ok, err := s.cache.GetJSON(ctx, cache.KeyCatalogTree, &cached); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache read failed")
	} else if ok {
		return cached, nil
	}

	var (
		categories []db.Category
		subs       []db.SubCategory
		brands     []db.Brand
		products   []db.CatalogProduct
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		categories, err = s.queries.ListCategories(gctx)
		return wrap("list categories", err)
	})
	g.Go(func() (err error) {
		subs, err = s.queries.ListSubCategories(gctx)
		return wrap("list sub categories", err)
	})
	g.Go(func() (err error) {
		brands, err = s.queries.ListBrands(gctx)
		return wrap("list brands", err)
	})
	g.Go(func() (err error) {
		products, err = s.queries.ListCatalogProducts(gctx)
		return wrap("list products", err)
	})
	if err := g.Wait(); err != nil {
		return nil, common.DataUnavailable(err)
	}

	tree := BuildTree(categories, subs, brands, products)
	if err := s.cache.SetJSON(ctx, cache.KeyCatalogTree, tree); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache write failed")
	}
	return tree, nil
}

// Purge drops the cached tree.
func (s *Service) Purge(ctx context.Context) error {
	return s.cache.Delete(ctx, cache.KeyCatalogTree)
}

// ParseListParams normalises raw query values into strongly typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{Page: 1, Limit: s.defaultLimit}
	params.Query = strings.TrimSpace(values.Get("q"))

	var err error
	if params.CategoryID, err = parseID(values, "category"); err != nil {
		return params, err
	}
	if params.SubCategoryID, err = parseID(values, "subCategory"); err != nil {
		return params, err
	}
	if params.BrandID, err = parseID(values, "brand"); err != nil {
		return params, err
	}
	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, badRequest("page", "page must be a positive integer", err)
		}
		params.Page = page
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return params, badRequest("limit", "limit must be a positive integer", err)
		}
		params.Limit = min(limit, s.maxLimit)
	}
	sort, ok := ParseSortOption(values.Get("sort"))
	if !ok {
		return params, badRequest("sort", "sort must be one of default, name-asc, name-desc, price-asc, price-desc", nil)
	}
	params.Sort = sort
	return params, nil
}

// ListProducts flattens the tree, applies filters and sorting, then pages.
func (s *Service) ListProducts(ctx context.Context, params ListParams) (ProductListResult, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return ProductListResult{}, err
	}
	query := strings.ToLower(params.Query)
	filtered := make([]Listing, 0)
	for _, l := range Flatten(tree) {
		if params.CategoryID != 0 && l.CategoryID != params.CategoryID {
			continue
		}
		if params.SubCategoryID != 0 && l.SubCategoryID != params.SubCategoryID {
			continue
		}
		if params.BrandID != 0 && l.BrandID != params.BrandID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(l.Name), query) &&
			!strings.Contains(strings.ToLower(l.BrandName), query) {
			continue
		}
		filtered = append(filtered, l)
	}
	sorted := SortProducts(filtered, params.Sort)

	page, limit := max(params.Page, 1), params.Limit
	if limit < 1 {
		limit = s.defaultLimit
	}
	start := min((page-1)*limit, len(sorted))
	end := min(start+limit, len(sorted))
	return ProductListResult{
		Items: sorted[start:end],
		Total: len(sorted),
		Page:  page,
		Limit: limit,
	}, nil
}

// Catalog returns the tree with price ranges and brands in the requested order.
func (s *Service) Catalog(ctx context.Context, sort SortOption) ([]Category, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	out := WithPriceRanges(tree)
	for i := range out {
		out[i].Brands = SortBrands(DirectBrands(out[i]), sort)
		subs := make([]SubCategory, len(out[i].SubCategories))
		for j, sub := range out[i].SubCategories {
			sub.Brands = SortBrands(sub.Brands, sort)
			subs[j] = sub
		}
		out[i].SubCategories = subs
	}
	return out, nil
}

// CategoryPriceRange summarises prices for one category.
func (s *Service) CategoryPriceRange(ctx context.Context, id int64) (Range, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return Range{}, err
	}
	c, ok := FindCategory(tree, id)
	if !ok {
		return Range{}, &common.AppError{
			Code:       "NOT_FOUND",
			Message:    "category not found",
			HTTPStatus: http.StatusNotFound,
			Err:        ErrNotFound,
		}
	}
	return PriceRange(c), nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func parseID(values url.Values, field string) (int64, error) {
	v := strings.TrimSpace(values.Get(field))
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 1 {
		return 0, badRequest(field, field+" must be a positive integer", err)
	}
	return id, nil
}

func badRequest(field, message string, err error) *common.AppError {
	return &common.AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details: map[string]any{
			"field": field,
		},
	}
}
