package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-material/internal/admin"
	"github.com/noah-isme/backend-material/internal/analytics"
	"github.com/noah-isme/backend-material/internal/app"
	"github.com/noah-isme/backend-material/internal/auth"
	"github.com/noah-isme/backend-material/internal/cart"
	"github.com/noah-isme/backend-material/internal/catalog"
	"github.com/noah-isme/backend-material/internal/checkout"
	"github.com/noah-isme/backend-material/internal/common"
	"github.com/noah-isme/backend-material/internal/config"
	"github.com/noah-isme/backend-material/internal/db"
	"github.com/noah-isme/backend-material/internal/discount"
	"github.com/noah-isme/backend-material/internal/health"
	"github.com/noah-isme/backend-material/internal/obs"
	"github.com/noah-isme/backend-material/internal/promo"
	"github.com/noah-isme/backend-material/internal/ratelimit"
	"github.com/noah-isme/backend-material/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", obs.DefaultNamespace)
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "material-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	deps, err := app.New(startCtx, cfg, logger, app.Options{ApplicationName: "material-api", RedisMetrics: metricsEnabled})
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise dependencies")
	}
	defer deps.Close()

	if envBool("MIGRATE_ON_START", false) {
		if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
	}

	authService, err := auth.NewService(auth.Config{
		Roles:    deps.Queries,
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authMiddleware := auth.Middleware{Service: authService, Logger: logger}
	authHandler := &auth.Handler{}

	globalLimiter, err := app.NewGlobalLimiter(deps.Redis, cfg.RateLimitGlobal)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise global rate limiter")
	}
	promoLimit := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: deps.Redis, Prefix: "rl"},
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP("promo"),
			Window: cfg.PromoValidateWindow,
			Max:    cfg.PromoValidateMax,
		},
		Logger: logger,
	}
	idem := common.Idem{R: deps.Redis, TTL: cfg.IdempotencyTTL}

	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: deps.Catalog})
	discountHandler := &discount.Handler{Svc: deps.Discount}
	promoHandler := &promo.Handler{Svc: deps.Promo}
	cartHandler := &cart.Handler{Svc: deps.Cart}
	checkoutHandler := &checkout.Handler{Svc: deps.Checkout}
	analyticsHandler := &analytics.Handler{Svc: deps.Analytics}
	adminHandler := &admin.Handler{
		Store:      deps.Queries,
		Tx:         deps.AdminTx,
		Events:     deps.Events,
		Promotions: deps.Discount,
		Logger:     logger.With().Str("component", "admin").Logger(),
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.IsProduction()}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Total-Count", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", !cfg.IsProduction()) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      health.Probe{DB: deps.DB, Redis: deps.Redis},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(stdlib.NewMiddleware(globalLimiter,
			stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
				common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
			}),
			stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("global rate limit check failed")
				common.JSONError(w, http.StatusServiceUnavailable, "DATA_UNAVAILABLE", "rate limiter unavailable", nil)
			}),
		).Handler)
		v.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

		v.Get("/catalog", catalogHandler.Catalog)
		v.Get("/products", catalogHandler.Products)
		v.Get("/categories/{id}/price-range", catalogHandler.PriceRange)
		v.Get("/storefront/promotions", discountHandler.Storefront)

		v.With(promoLimit.Middleware).Post("/promo-codes/validate", promoHandler.Validate)
		v.Post("/cart/quote", cartHandler.Quote)
		v.With(idem.Middleware).Post("/checkout/whatsapp", checkoutHandler.WhatsApp)

		v.Route("/admin", func(a chi.Router) {
			a.Use(security.NoStore)
			a.Use(authMiddleware.RequireAuth)
			a.Use(authMiddleware.RequireRole(auth.RoleAdmin))
			a.Get("/me", authHandler.Me)
			a.Get("/analytics/overview", analyticsHandler.Overview)
			a.With(idem.Middleware).Group(adminHandler.Routes)
		})
	})

	var handler http.Handler = r
	if tracingEnabled {
		handler = otelhttp.NewHandler(r, "http.server")
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
		return
	case <-ctx.Done():
	}

	health.SetReady(false)
	logger.Info().Msg("shutdown requested, draining")
	time.Sleep(envDurationMillis("SHUTDOWN_DRAIN_DELAY_MS", 0))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), envDurationMillis("SHUTDOWN_TIMEOUT_MS", 15000))
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
