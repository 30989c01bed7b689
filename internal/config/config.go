package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	CORSAllowedOrigins []string

	CatalogCacheTTL  time.Duration
	DiscountCacheTTL time.Duration

	StoreTimezone         string
	WhatsAppPhone         string
	RegularShippingCutoff time.Duration

	IdempotencyTTL      time.Duration
	RateLimitGlobal     string
	PromoValidateMax    int
	PromoValidateWindow time.Duration
	LockTTL             time.Duration
	LockRetryBackoff    time.Duration
	BodyLimitBytes      int64

	QueueConcurrency        int
	PromotionExpirySchedule string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		JWTSecret:          k.String("JWT_SECRET"),
		JWTIssuer:          strings.TrimSpace(k.String("JWT_ISSUER")),
		JWTAudience:        strings.TrimSpace(k.String("JWT_AUDIENCE")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		CatalogCacheTTL:  parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		DiscountCacheTTL: parseDuration(k.String("DISCOUNT_CACHE_TTL"), "1m"),

		StoreTimezone: valueOrDefault(k.String("STORE_TIMEZONE"), "Asia/Jakarta"),
		WhatsAppPhone: strings.TrimSpace(k.String("WHATSAPP_PHONE")),

		IdempotencyTTL:      parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		RateLimitGlobal:     valueOrDefault(k.String("RATE_LIMIT_GLOBAL"), "300-M"),
		PromoValidateMax:    parseInt(k.String("PROMO_VALIDATE_MAX"), 10),
		PromoValidateWindow: parseDuration(k.String("PROMO_VALIDATE_WINDOW"), "1m"),
		LockTTL:             parseDuration(k.String("LOCK_TTL"), "10s"),
		LockRetryBackoff:    parseDuration(k.String("LOCK_RETRY_BACKOFF"), "50ms"),
		BodyLimitBytes:      int64(parseInt(k.String("BODY_LIMIT_BYTES"), 1<<20)),

		QueueConcurrency:        parseInt(k.String("QUEUE_CONCURRENCY"), 10),
		PromotionExpirySchedule: valueOrDefault(k.String("PROMOTION_EXPIRY_SCHEDULE"), "@every 1m"),
	}

	cutoff, err := parseClock(valueOrDefault(k.String("REGULAR_SHIPPING_CUTOFF"), "15:00"))
	if err != nil {
		return nil, fmt.Errorf("REGULAR_SHIPPING_CUTOFF: %w", err)
	}
	cfg.RegularShippingCutoff = cutoff

	if _, err := time.LoadLocation(cfg.StoreTimezone); err != nil {
		return nil, fmt.Errorf("STORE_TIMEZONE: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// Location returns the store timezone. Load has already validated the name.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.StoreTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// parseClock turns "HH:MM" into the offset from midnight.
func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM: %w", err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
