// Package app builds the dependency graph shared by the api and worker
// binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/backend-material/internal/admin"
	"github.com/noah-isme/backend-material/internal/analytics"
	"github.com/noah-isme/backend-material/internal/cache"
	"github.com/noah-isme/backend-material/internal/cart"
	"github.com/noah-isme/backend-material/internal/catalog"
	"github.com/noah-isme/backend-material/internal/checkout"
	"github.com/noah-isme/backend-material/internal/config"
	"github.com/noah-isme/backend-material/internal/db"
	"github.com/noah-isme/backend-material/internal/discount"
	"github.com/noah-isme/backend-material/internal/events"
	"github.com/noah-isme/backend-material/internal/lock"
	"github.com/noah-isme/backend-material/internal/obs"
	"github.com/noah-isme/backend-material/internal/promo"
	"github.com/noah-isme/backend-material/internal/queue"
)

// Options tweaks connection setup per binary.
type Options struct {
	ApplicationName string
	RedisMetrics    bool
}

// Dependencies holds the connections and domain services wired from Config.
type Dependencies struct {
	Config  *config.Config
	Logger  zerolog.Logger
	DB      *pgxpool.Pool
	Queries *db.Queries
	Redis   *redis.Client
	Tasks   *asynq.Client
	Events  *events.Bus
	// QueueRedis is the connection asynq servers and inspectors share.
	QueueRedis asynq.RedisConnOpt

	Catalog   *catalog.Service
	Discount  *discount.Service
	Promo     *promo.Service
	Cart      *cart.Service
	Checkout  *checkout.Service
	Analytics *analytics.Service
}

// New connects to Postgres and Redis and assembles the services. The caller
// owns the returned value and must Close it.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*Dependencies, error) {
	pool, err := NewPool(ctx, cfg.DatabaseURL, opts.ApplicationName)
	if err != nil {
		return nil, err
	}
	rdb, err := NewRedis(ctx, cfg.RedisURL, opts.RedisMetrics, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		pool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("parse queue redis url: %w", err)
	}

	d := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		DB:      pool,
		Queries: db.New(pool),
		Redis:   rdb,
		Tasks:   asynq.NewClient(redisOpt),

		QueueRedis: redisOpt,
	}
	if err := d.wire(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Dependencies) wire() error {
	cfg := d.Config
	loc := cfg.Location()

	d.Events = &events.Bus{
		Store:     d.Queries,
		Notifiers: []events.Notifier{queue.Dispatcher{Client: d.Tasks}},
	}

	var err error
	d.Catalog, err = catalog.NewService(catalog.ServiceConfig{
		Queries: d.Queries,
		Cache:   cache.New(d.Redis, "catalog", cfg.CatalogCacheTTL),
		Logger:  d.Logger.With().Str("component", "catalog").Logger(),
	})
	if err != nil {
		return fmt.Errorf("catalog service: %w", err)
	}

	d.Discount = &discount.Service{
		Q:       d.Queries,
		Cache:   cache.New(d.Redis, "discount", cfg.DiscountCacheTTL),
		Locker:  lock.Locker{R: d.Redis, RetryBackoff: cfg.LockRetryBackoff},
		LockTTL: cfg.LockTTL,
		Events:  d.Events,
		Logger:  d.Logger.With().Str("component", "discount").Logger(),
	}

	d.Promo = &promo.Service{Q: d.Queries, Location: loc}

	d.Cart, err = cart.NewService(cart.ServiceConfig{
		Catalog:  d.Catalog,
		Discount: d.Discount,
		Codes:    d.Promo,
		Logger:   d.Logger.With().Str("component", "cart").Logger(),
	})
	if err != nil {
		return fmt.Errorf("cart service: %w", err)
	}

	d.Checkout = &checkout.Service{
		Quotes: d.Cart,
		Events: d.Events,
		Options: checkout.Options{
			Phone:    cfg.WhatsAppPhone,
			Location: loc,
			Cutoff:   cfg.RegularShippingCutoff,
		},
		Logger: d.Logger.With().Str("component", "checkout").Logger(),
	}

	d.Analytics = &analytics.Service{Q: d.Queries, R: d.Redis, TTL: cfg.CatalogCacheTTL, Location: loc}
	return nil
}

// AdminTx runs fn inside a Postgres transaction.
func (d *Dependencies) AdminTx(ctx context.Context, fn func(admin.Store) error) error {
	return db.ExecTx(ctx, d.DB, func(q *db.Queries) error {
		return fn(q)
	})
}

// Close releases connections in reverse order of creation.
func (d *Dependencies) Close() {
	if d.Tasks != nil {
		if err := d.Tasks.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("close task client")
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("close redis")
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}

// NewPool opens a traced pgx pool and pings it.
func NewPool(ctx context.Context, url, applicationName string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if applicationName != "" {
		if poolConfig.ConnConfig.RuntimeParams == nil {
			poolConfig.ConnConfig.RuntimeParams = map[string]string{}
		}
		poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewRedis opens an instrumented Redis client and pings it. Instrumentation
// failures are logged, not returned.
func NewRedis(ctx context.Context, url string, metrics bool, logger zerolog.Logger) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metrics {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewGlobalLimiter builds the per-IP limiter applied to every route.
func NewGlobalLimiter(rdb *redis.Client, formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", formatted, err)
	}
	store, err := limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:          "rl:global",
		CleanUpInterval: time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("limiter store: %w", err)
	}
	return limiter.New(store, rate, limiter.WithTrustForwardHeader(true)), nil
}

// Tracer returns the default OpenTelemetry tracer for instrumentation hooks.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
