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
	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/minhanh-dev/backend-moda/internal/analytics"
	"github.com/minhanh-dev/backend-moda/internal/audit"
	"github.com/minhanh-dev/backend-moda/internal/auth"
	"github.com/minhanh-dev/backend-moda/internal/cache"
	"github.com/minhanh-dev/backend-moda/internal/cart"
	"github.com/minhanh-dev/backend-moda/internal/catalog"
	"github.com/minhanh-dev/backend-moda/internal/checkout"
	"github.com/minhanh-dev/backend-moda/internal/common"
	"github.com/minhanh-dev/backend-moda/internal/config"
	"github.com/minhanh-dev/backend-moda/internal/favorites"
	"github.com/minhanh-dev/backend-moda/internal/health"
	"github.com/minhanh-dev/backend-moda/internal/lock"
	"github.com/minhanh-dev/backend-moda/internal/notify"
	"github.com/minhanh-dev/backend-moda/internal/obs"
	"github.com/minhanh-dev/backend-moda/internal/order"
	"github.com/minhanh-dev/backend-moda/internal/promo"
	"github.com/minhanh-dev/backend-moda/internal/ratelimit"
	"github.com/minhanh-dev/backend-moda/internal/returns"
	"github.com/minhanh-dev/backend-moda/internal/reviews"
	"github.com/minhanh-dev/backend-moda/internal/security"
	"github.com/minhanh-dev/backend-moda/internal/store"
	"github.com/minhanh-dev/backend-moda/internal/voucher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "moda")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "moda-api",
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
				ctx := context.Background()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "moda-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	st := store.New(pool)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
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

	taskConn, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for task queue")
	}
	taskClient := asynq.NewClient(taskConn)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()
	enqueuer := &notify.Enqueuer{Client: taskClient, Log: logger}

	validate := validator.New()
	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	promoSvc := &promo.Service{
		Q:     st,
		Cache: cache.New(redisClient, cfg.PromoCacheTTL),
		Log:   logger,
	}
	promoHandler := &promo.Handler{Service: promoSvc, Validate: validate}

	voucherSvc := &voucher.Service{Q: st, Log: logger}
	voucherHandler := &voucher.Handler{Service: voucherSvc, Validate: validate}

	catalogSvc := &catalog.Service{
		Q:            st,
		Promos:       promoSvc,
		Cache:        cache.New(redisClient, cfg.CatalogCacheTTL),
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	}
	catalogHandler := &catalog.Handler{Service: catalogSvc}

	cartSvc := &cart.Service{
		Q:          st,
		Promos:     promoSvc,
		Vouchers:   voucherSvc,
		Log:        logger,
		TTL:        cfg.CartTTL,
		TaxRateBps: int64(cfg.TaxRateBps),
		Shipping:   cfg.ShippingFee,
	}
	cartHandler := &cart.Handler{Service: cartSvc, Validate: validate}

	checkoutSvc := &checkout.Service{
		Store:      st,
		Vouchers:   voucherSvc,
		Notify:     enqueuer,
		Lock:       &lock.Locker{R: redisClient, RetryBackoff: 50 * time.Millisecond},
		Log:        logger,
		TaxRateBps: int64(cfg.TaxRateBps),
		Shipping:   cfg.ShippingFee,
		Currency:   cfg.Currency,
	}
	checkoutHandler := &checkout.Handler{Service: checkoutSvc, Validate: validate}

	orderSvc := &order.Service{Q: st, Log: logger}
	orderHandler := &order.Handler{Service: orderSvc}
	orderAdmin := &order.AdminHandler{Service: orderSvc}

	returnsSvc := &returns.Service{
		Store:      st,
		Notify:     enqueuer,
		Log:        logger,
		WindowDays: cfg.ReturnWindowDays,
	}
	returnsHandler := &returns.Handler{Service: returnsSvc, Validate: validate}

	analyticsSvc := &analytics.Service{
		Q:           st,
		Cache:       cache.New(redisClient, cfg.AnalyticsCacheTTL),
		Log:         logger,
		DefaultDays: cfg.AnalyticsDefaultDays,
	}
	analyticsHandler := &analytics.Handler{Service: analyticsSvc}

	favoritesHandler := &favorites.Handler{Service: &favorites.Service{Q: st}}
	reviewsHandler := &reviews.Handler{Service: &reviews.Service{Q: st}, Validate: validate}

	auditSvc := audit.Service{
		Q:            st,
		Enabled:      envBool("AUDIT_ENABLED", true),
		SamplingRate: envFloat("AUDIT_SAMPLING_RATE", 1.0),
	}
	auditRecorder := audit.HTTPRecorder{
		Service: &auditSvc,
		OnError: func(err error) { logger.Error().Err(err).Msg("record audit entry") },
	}
	auditHandler := audit.Handler{Q: st}

	limiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "ratelimit:"},
		Config: ratelimit.Config{
			Key: func(r *http.Request) string {
				if userID, ok := common.UserID(r.Context()); ok {
					return "u:" + userID
				}
				return "ip:" + r.RemoteAddr
			},
			Window: cfg.RateLimitWindow,
			Max:    cfg.RateLimitMax,
		},
		OnError: func(err error) { logger.Error().Err(err).Msg("rate limit check") },
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
	r.Use(security.Headers{
		Enable:                envBool("SECURE_HEADERS_ENABLED", true),
		EnableHSTS:            envBool("SECURE_HSTS_ENABLED", false),
		HSTSMaxAge:            envInt("SECURE_HSTS_MAX_AGE", 31536000),
		HSTSIncludeSubdomains: envBool("SECURE_HSTS_INCLUDE_SUBDOMAINS", false),
	}.Middleware)
	r.Use(security.BodyLimit{Max: int64(envInt("SECURE_MAX_BODY_BYTES", 1<<20))}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", cart.AnonHeader},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(auth.Identity)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	pprofEnabled := envBool("OBS_ENABLE_PPROF", true)
	if pprofEnabled {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{db: pool, redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(limiter.Middleware)

		v.Get("/brands", catalogHandler.Brands)
		v.Get("/categories", catalogHandler.Categories)
		v.Get("/sizes", catalogHandler.Sizes)
		v.Get("/colors", catalogHandler.Colors)
		v.Get("/products", catalogHandler.Products)
		v.Get("/products/{slug}", catalogHandler.ProductDetail)
		v.Get("/products/{slug}/related", catalogHandler.Related)

		v.Route("/products/{productId}/reviews", func(rv chi.Router) {
			rv.Get("/", reviewsHandler.List)
			rv.Group(func(g chi.Router) {
				g.Use(auth.RequireUser)
				g.Put("/", reviewsHandler.Submit)
				g.Delete("/", reviewsHandler.Delete)
			})
		})

		v.Post("/vouchers/validate", voucherHandler.Check)

		v.Route("/cart", func(c chi.Router) {
			c.Get("/", cartHandler.Get)
			c.Group(func(g chi.Router) {
				g.Use(idem.Middleware)
				g.Post("/items", cartHandler.Add)
				g.Put("/items/{itemId}", cartHandler.SetQty)
				g.Delete("/items/{itemId}", cartHandler.Remove)
				g.Post("/voucher", cartHandler.ApplyVoucher)
				g.Delete("/voucher", cartHandler.RemoveVoucher)
			})
		})

		v.With(auth.RequireUser, idem.Middleware).Post("/checkout", checkoutHandler.Place)

		v.Group(func(authR chi.Router) {
			authR.Use(auth.RequireUser)
			authR.Get("/orders", orderHandler.List)
			authR.Get("/orders/{id}", orderHandler.Get)
			authR.Post("/orders/{id}/cancel", orderHandler.Cancel)

			authR.With(idem.Middleware).Post("/returns", returnsHandler.Create)
			authR.Get("/returns", returnsHandler.List)
			authR.Get("/returns/{id}", returnsHandler.Get)
			authR.Put("/returns/{id}", returnsHandler.Update)
			authR.Post("/returns/{id}/cancel", returnsHandler.Cancel)

			authR.Get("/favorites", favoritesHandler.List)
			authR.Post("/favorites/toggle", favoritesHandler.Toggle)
			authR.Get("/favorites/{productId}", favoritesHandler.Check)
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(auth.RequireRole(auth.RoleAdmin))
			admin.Use(auditRecorder.Middleware(audit.HTTPConfig{}))

			admin.Get("/promotions", promoHandler.List)
			admin.Post("/promotions", promoHandler.Create)
			admin.Get("/promotions/{id}", promoHandler.Get)
			admin.Put("/promotions/{id}", promoHandler.Update)
			admin.Delete("/promotions/{id}", promoHandler.Delete)

			admin.Get("/vouchers", voucherHandler.List)
			admin.Post("/vouchers", voucherHandler.Create)
			admin.Put("/vouchers/{id}", voucherHandler.Update)
			admin.Delete("/vouchers/{id}", voucherHandler.Delete)

			admin.Get("/orders", orderAdmin.List)
			admin.Get("/orders/{id}", orderAdmin.Get)
			admin.Put("/orders/{id}/status", orderAdmin.SetStatus)
			admin.Put("/orders/{id}/payment-status", orderAdmin.SetPaymentStatus)

			admin.Get("/returns", returnsHandler.AdminList)
			admin.Get("/returns/{id}", returnsHandler.AdminGet)
			admin.Post("/returns/{id}/refund", returnsHandler.AdminRefund)
			admin.Post("/returns/{id}/cancel", returnsHandler.AdminCancel)

			admin.Get("/stats/overview", analyticsHandler.Overview)
			admin.Get("/stats/sales-daily", analyticsHandler.SalesDaily)
			admin.Get("/stats/top-products", analyticsHandler.TopProducts)

			admin.Get("/audit-logs", auditHandler.List)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: otelhttp.NewHandler(r, "moda-api"),
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
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
	mux.Handle("/block", pprof.Handler("block"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	mux.Handle("/threadcreate", pprof.Handler("threadcreate"))
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
