package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-material/internal/db"
)

// Querier defines the database access required for the overview.
type Querier interface {
	CountCatalog(ctx context.Context) (db.CatalogCounts, error)
	CountActivePromotions(ctx context.Context, now time.Time) (int64, error)
}

// Daily checkout counters are kept long enough for a month of history.
const dailyCounterTTL = 35 * 24 * time.Hour

// Overview is the admin dashboard summary.
type Overview struct {
	Catalog          db.CatalogCounts `json:"catalog"`
	ActivePromotions int64            `json:"activePromotions"`
	CheckoutsToday   int64            `json:"checkoutSummariesToday"`
	CheckoutsTotal   int64            `json:"checkoutSummariesTotal"`
	GeneratedAt      time.Time        `json:"generatedAt"`
}

// Service reads catalog counts from Postgres and checkout counters from Redis.
// Catalog counts are cached for TTL.
type Service struct {
	Q        Querier
	R        *redis.Client
	TTL      time.Duration
	Location *time.Location
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) day(t time.Time) string {
	if s.Location != nil {
		t = t.In(s.Location)
	}
	return t.Format(time.DateOnly)
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

func checkoutTotalKey() string        { return cacheKey("an", "checkout", "total") }
func checkoutDayKey(day string) string { return cacheKey("an", "checkout", "day", day) }

// Overview assembles the dashboard counters.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	if s == nil || s.Q == nil {
		return Overview{}, fmt.Errorf("analytics service not configured")
	}
	now := s.now()
	out := Overview{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.catalogCounts(gctx)
		if err != nil {
			return fmt.Errorf("count catalog: %w", err)
		}
		out.Catalog = counts
		return nil
	})
	g.Go(func() error {
		n, err := s.Q.CountActivePromotions(gctx, now)
		if err != nil {
			return fmt.Errorf("count promotions: %w", err)
		}
		out.ActivePromotions = n
		return nil
	})
	g.Go(func() error {
		today, total, err := s.checkoutCounts(gctx, now)
		if err != nil {
			return fmt.Errorf("checkout counters: %w", err)
		}
		out.CheckoutsToday, out.CheckoutsTotal = today, total
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// RecordCheckoutSummary bumps the total and per-day checkout counters.
func (s *Service) RecordCheckoutSummary(ctx context.Context, at time.Time) error {
	if s == nil || s.R == nil {
		return fmt.Errorf("analytics counters not configured")
	}
	dayKey := checkoutDayKey(s.day(at))
	pipe := s.R.TxPipeline()
	pipe.Incr(ctx, checkoutTotalKey())
	pipe.Incr(ctx, dayKey)
	pipe.Expire(ctx, dayKey, dailyCounterTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Service) checkoutCounts(ctx context.Context, now time.Time) (today, total int64, err error) {
	if s.R == nil {
		return 0, 0, nil
	}
	vals, err := s.R.MGet(ctx, checkoutDayKey(s.day(now)), checkoutTotalKey()).Result()
	if err != nil {
		return 0, 0, err
	}
	if today, err = counter(vals[0]); err != nil {
		return 0, 0, err
	}
	if total, err = counter(vals[1]); err != nil {
		return 0, 0, err
	}
	return today, total, nil
}

func counter(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	raw, ok := v.(string)
	if !ok {
		return 0, errors.New("unexpected counter type")
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter %q: %w", raw, err)
	}
	return n, nil
}

func (s *Service) catalogCounts(ctx context.Context) (db.CatalogCounts, error) {
	key := cacheKey("an", "catalog")
	if counts, ok := s.getCountsFromCache(ctx, key); ok {
		return counts, nil
	}
	counts, err := s.Q.CountCatalog(ctx)
	if err != nil {
		return db.CatalogCounts{}, err
	}
	s.store(ctx, key, counts)
	return counts, nil
}

func (s *Service) getCountsFromCache(ctx context.Context, key string) (db.CatalogCounts, bool) {
	if s.R == nil || s.TTL <= 0 {
		return db.CatalogCounts{}, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return db.CatalogCounts{}, false
	}
	var counts db.CatalogCounts
	if err := json.Unmarshal(data, &counts); err != nil {
		return db.CatalogCounts{}, false
	}
	return counts, true
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
