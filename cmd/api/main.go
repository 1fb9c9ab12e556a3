package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pharmacy-desk/internal/auth"
	"github.com/noah-isme/pharmacy-desk/internal/cache"
	"github.com/noah-isme/pharmacy-desk/internal/common"
	"github.com/noah-isme/pharmacy-desk/internal/config"
	"github.com/noah-isme/pharmacy-desk/internal/dashboard"
	"github.com/noah-isme/pharmacy-desk/internal/draft"
	"github.com/noah-isme/pharmacy-desk/internal/health"
	"github.com/noah-isme/pharmacy-desk/internal/ledger"
	"github.com/noah-isme/pharmacy-desk/internal/lock"
	"github.com/noah-isme/pharmacy-desk/internal/obs"
	"github.com/noah-isme/pharmacy-desk/internal/ratelimit"
	"github.com/noah-isme/pharmacy-desk/internal/resilience"
	"github.com/noah-isme/pharmacy-desk/internal/salesorder"
	"github.com/noah-isme/pharmacy-desk/internal/security"
	"github.com/noah-isme/pharmacy-desk/internal/units"
	"github.com/noah-isme/pharmacy-desk/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	if cfg.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
		resilience.MustRegisterMetrics(nil)
	}

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "pharmacy-desk",
			Endpoint:      cfg.OTLPEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSampling,
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.RunMigrations {
		if err := ledger.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migrate ledger")
		}
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "pharmacy-desk"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if cfg.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	breaker := resilience.NewBreaker(cfg.BreakerMinRequests, cfg.BreakerFailureRatio, cfg.BreakerOpenFor).
		WithTarget("order_service").
		WithLogger(logger)
	orderService, err := upstream.New(upstream.Config{
		BaseURL:     cfg.UpstreamBaseURL,
		Timeout:     cfg.UpstreamTimeout,
		ReadRetries: cfg.UpstreamReadRetries,
		Breaker:     breaker,
	}, logger.With().Str("component", "upstream").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise order service client")
	}

	unitSource := &units.Source{
		Fetcher: orderService,
		Cache:   cache.NewJSON(redisClient, "desk:cache", cfg.UnitsCacheTTL),
		Logger:  logger,
	}
	ledgerStore := ledger.NewStore(pool)

	saleOrders := &salesorder.Service{
		Backend:  orderService,
		Units:    unitSource,
		Recorder: ledgerStore,
		Logger:   logger,
	}

	drafts := &draft.Store{
		R:      redisClient,
		Locker: lock.Locker{R: redisClient, MaxWait: 2 * time.Second},
		TTL:    cfg.DraftTTL,
	}
	draftHandler := &draft.Handler{Store: drafts, Orders: saleOrders, Logger: logger}
	saleOrderHandler := &salesorder.Handler{Svc: saleOrders}
	unitHandler := &units.Handler{Source: unitSource}
	ledgerHandler := &ledger.Handler{Store: ledgerStore}
	dashboardHandler := &dashboard.Handler{Svc: &dashboard.Service{
		Q:            ledgerStore,
		Cache:        cache.NewJSON(redisClient, "desk:dashboard", cfg.DashboardCacheTTL),
		DefaultRange: cfg.DashboardRangeDays,
	}}

	verifier, err := auth.NewVerifier(auth.Config{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
		ClockSkew: cfg.JWTLeeway,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise token verifier")
	}
	authMiddleware := auth.Middleware{Verifier: verifier}

	submitLimiter, err := ratelimit.NewLimiter(redisClient, "desk:ratelimit:submit", cfg.SubmitRateLimit, cfg.SubmitRateWindow)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise submit rate limiter")
	}
	submitLimit := ratelimit.Handler{
		Limiter: submitLimiter,
		Key:     ratelimit.UserOrIP,
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}
	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger, SkipPrefixes: []string{"/health", "/metrics"}}.Middleware)
	r.Use(security.Headers{Enable: cfg.SecurityHeaders, EnableHSTS: cfg.EnableHSTS, HSTSIncludeSubdomains: true}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{Probes: []health.Probe{
		{Name: "db", Timeout: cfg.ReadyTimeout, Check: pool.Ping},
		{Name: "redis", Timeout: cfg.ReadyTimeout, Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
		{Name: "ratelimit", Timeout: cfg.ReadyTimeout, Check: func(ctx context.Context) error {
			return ratelimit.Ping(ctx, submitLimiter)
		}},
	}}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(authMiddleware.RequireAuth)

		v.Route("/drafts", func(d chi.Router) {
			draftHandler.Routes(d, idem.Middleware, submitLimit.Middleware)
		})

		v.Post("/sale-orders/quote", saleOrderHandler.Quote)
		v.With(idem.Middleware, submitLimit.Middleware).Post("/sale-orders", saleOrderHandler.Create)
		v.Get("/submissions", ledgerHandler.List)

		v.Get("/units", unitHandler.List)
		v.Post("/units/refresh", unitHandler.Refresh)

		v.Route("/dashboard", func(an chi.Router) {
			an.Get("/sales", dashboardHandler.Sales)
			an.Get("/payment-status", dashboardHandler.PaymentStatus)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	health.SetReady(true)
	serve(srv, cfg.ShutdownTimeout, logger)
}

// serve runs srv until SIGINT or SIGTERM, then marks the instance unready and
// drains in-flight requests.
func serve(srv *http.Server, timeout time.Duration, logger zerolog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	logger.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
