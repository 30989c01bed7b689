package discount

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-material/internal/cache"
	"github.com/noah-isme/backend-material/internal/common"
	"github.com/noah-isme/backend-material/internal/db"
	"github.com/noah-isme/backend-material/internal/events"
	"github.com/noah-isme/backend-material/internal/lock"
	"github.com/noah-isme/backend-material/internal/obs"
	"github.com/noah-isme/backend-material/internal/pricing"
)

const activationLockKey = "lock:promotion:activate"

// ErrPromotionNotFound is returned when activating an unknown promotion.
var ErrPromotionNotFound = errors.New("discount: promotion not found")

// Querier captures the promotion, tier and settings statements the service uses.
type Querier interface {
	GetActivePromotion(ctx context.Context, now time.Time) (db.Promotion, error)
	GetPromotion(ctx context.Context, id int64) (db.Promotion, error)
	ListPromotionProductIDs(ctx context.Context, promotionID int64) ([]int64, error)
	ListActiveTieredDiscounts(ctx context.Context) ([]db.TieredDiscount, error)
	ListAppSettings(ctx context.Context) ([]db.AppSetting, error)
	SetPromotionActive(ctx context.Context, id int64, active bool) (int64, error)
	DeactivateOtherPromotions(ctx context.Context, id int64) error
	ExpirePromotions(ctx context.Context, now time.Time) ([]int64, error)
}

// Emitter records domain events.
type Emitter interface {
	Emit(ctx context.Context, topic, aggregateID string, payload any) (db.DomainEvent, error)
}

// Config is everything the storefront needs to price a cart.
type Config struct {
	Promotion *pricing.Promotion `json:"promotion"`
	Tiers     []pricing.Tier     `json:"tiers"`
	Settings  Settings           `json:"settings"`
}

// TierConfig returns the tier set gated by the feature flag.
func (c Config) TierConfig() pricing.TierConfig {
	return pricing.TierConfig{Enabled: c.Settings.TieredDiscount.Enabled, Tiers: c.Tiers}
}

// Service loads discount configuration and manages promotion activation.
type Service struct {
	Q       Querier
	Cache   *cache.Cache
	Locker  lock.Locker
	LockTTL time.Duration
	Events  Emitter
	Logger  zerolog.Logger
	Now     func() time.Time
}

// Config returns the active promotion, active tiers and settings. A cache
// miss loads the three concurrently.
func (s *Service) Config(ctx context.Context) (Config, error) {
	var cfg Config
	if ok, err := s.Cache.GetJSON(ctx, cache.KeyDiscountConfig, &cfg); err != nil {
		s.Logger.Warn().Err(err).Msg("discount cache read failed")
	} else if ok {
		return s.dropExpired(cfg), nil
	}

	cfg = Config{Tiers: []pricing.Tier{}}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		promo, err := s.loadActivePromotion(gctx)
		if err != nil {
			return fmt.Errorf("load active promotion: %w", err)
		}
		cfg.Promotion = promo
		return nil
	})
	g.Go(func() error {
		rows, err := s.Q.ListActiveTieredDiscounts(gctx)
		if err != nil {
			return fmt.Errorf("list tiers: %w", err)
		}
		for _, row := range rows {
			cfg.Tiers = append(cfg.Tiers, TierFromModel(row))
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.Q.ListAppSettings(gctx)
		if err != nil {
			return fmt.Errorf("list settings: %w", err)
		}
		raw := make(map[string]json.RawMessage, len(rows))
		for _, row := range rows {
			if KnownSetting(row.Key) {
				raw[row.Key] = row.Value
			}
		}
		settings, err := DecodeSettings(raw)
		if err != nil {
			s.Logger.Warn().Err(err).Msg("settings malformed, using defaults")
			return nil
		}
		cfg.Settings = settings
		return nil
	})
	if err := g.Wait(); err != nil {
		return Config{}, common.DataUnavailable(err)
	}

	if err := s.Cache.SetJSON(ctx, cache.KeyDiscountConfig, cfg); err != nil {
		s.Logger.Warn().Err(err).Msg("discount cache write failed")
	}
	return cfg, nil
}

// A cached promotion may outlive its end date until the next purge.
func (s *Service) dropExpired(cfg Config) Config {
	if cfg.Promotion != nil && !cfg.Promotion.EndDate.After(s.now()) {
		cfg.Promotion = nil
	}
	if cfg.Tiers == nil {
		cfg.Tiers = []pricing.Tier{}
	}
	return cfg
}

func (s *Service) loadActivePromotion(ctx context.Context) (*pricing.Promotion, error) {
	row, err := s.Q.GetActivePromotion(ctx, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var ids []int64
	if row.Type == string(pricing.TypeProductSpecific) {
		if ids, err = s.Q.ListPromotionProductIDs(ctx, row.ID); err != nil {
			return nil, err
		}
	}
	promo, err := PromotionFromModel(row, ids)
	if err != nil {
		s.Logger.Warn().Err(err).Int64("promotion_id", row.ID).Msg("skipping malformed promotion")
		return nil, nil
	}
	return promo, nil
}

// Activate makes id the only active promotion.
func (s *Service) Activate(ctx context.Context, id int64) error {
	if _, err := s.Q.GetPromotion(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &common.AppError{Code: "NOT_FOUND", Message: "promotion not found", HTTPStatus: http.StatusNotFound, Err: ErrPromotionNotFound}
		}
		return fmt.Errorf("get promotion: %w", err)
	}
	err := s.Locker.WithLock(ctx, activationLockKey, s.LockTTL, func(ctx context.Context) error {
		if err := s.Q.DeactivateOtherPromotions(ctx, id); err != nil {
			return fmt.Errorf("deactivate promotions: %w", err)
		}
		if _, err := s.Q.SetPromotionActive(ctx, id, true); err != nil {
			return fmt.Errorf("activate promotion: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.changed(ctx, id, "activated")
	return nil
}

// ExpireDue deactivates promotions whose end date has passed and returns
// their ids.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) ([]int64, error) {
	ids, err := s.Q.ExpirePromotions(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("expire promotions: %w", err)
	}
	for _, id := range ids {
		if obs.PromotionExpiriesTotal != nil {
			obs.PromotionExpiriesTotal.Inc()
		}
		s.changed(ctx, id, "expired")
	}
	return ids, nil
}

// Purge drops the cached configuration.
func (s *Service) Purge(ctx context.Context) error {
	return s.Cache.Delete(ctx, cache.KeyDiscountConfig)
}

func (s *Service) changed(ctx context.Context, id int64, action string) {
	if err := s.Purge(ctx); err != nil {
		s.Logger.Warn().Err(err).Msg("discount cache purge failed")
	}
	if s.Events == nil {
		return
	}
	payload := map[string]any{"promotionId": id, "action": action}
	if _, err := s.Events.Emit(ctx, events.TopicPromotionChanged, strconv.FormatInt(id, 10), payload); err != nil {
		s.Logger.Warn().Err(err).Int64("promotion_id", id).Msg("emit promotion.changed failed")
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// PromotionFromModel builds the tagged promotion from a stored row.
func PromotionFromModel(row db.Promotion, productIDs []int64) (*pricing.Promotion, error) {
	scope, err := pricing.ParseScope(row.Type, productIDs)
	if err != nil {
		return nil, err
	}
	p := &pricing.Promotion{
		ID:              row.ID,
		Title:           row.Title,
		DiscountPercent: row.DiscountPercent,
		EndDate:         row.EndDate,
		Gimmick:         pricing.Gimmick(row.GimmickType),
		Scope:           scope,
	}
	if row.Subtitle != nil {
		p.Subtitle = *row.Subtitle
	}
	if row.CTAText != nil {
		p.CTAText = *row.CTAText
	}
	return p, nil
}

// TierFromModel converts a stored tier.
func TierFromModel(row db.TieredDiscount) pricing.Tier {
	t := pricing.Tier{
		ID:              row.ID,
		MinSpend:        row.MinSpend,
		DiscountPercent: row.DiscountPercent,
		FreeShipping:    row.FreeShipping,
		Active:          row.IsActive,
	}
	if row.MaxSpend.Valid {
		ceiling := row.MaxSpend.Decimal
		t.MaxSpend = &ceiling
	}
	if row.Description != nil {
		t.Description = *row.Description
	}
	return t
}
