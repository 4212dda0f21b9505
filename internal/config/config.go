package config

import (
	"errors"
	"fmt"
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
	CORSAllowedOrigins []string

	// Pricing policy. Tax is expressed in basis points so 9% is 900.
	// Shipping is a flat fee in minor currency units.
	TaxRateBps  int
	ShippingFee int64
	Currency    string

	// Returns policy.
	ReturnWindowDays int

	CatalogCacheTTL     time.Duration
	CatalogDefaultLimit int
	CatalogMaxLimit     int
	PromoCacheTTL       time.Duration
	AnalyticsCacheTTL   time.Duration
	AnalyticsDefaultDays int

	CartTTL        time.Duration
	IdempotencyTTL time.Duration

	RateLimitWindow time.Duration
	RateLimitMax    int
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
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		TaxRateBps:  parseInt(k.String("PRICING_TAX_RATE_BPS"), 900),
		ShippingFee: parseInt64(k.String("PRICING_SHIPPING_FEE"), 30_000),
		Currency:    valueOrDefault(k.String("CURRENCY_CODE"), "VND"),

		ReturnWindowDays: parseInt(k.String("RETURN_WINDOW_DAYS"), 7),

		CatalogCacheTTL:      parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		CatalogDefaultLimit:  parseInt(k.String("CATALOG_DEFAULT_LIMIT"), 20),
		CatalogMaxLimit:      parseInt(k.String("CATALOG_MAX_LIMIT"), 100),
		PromoCacheTTL:        parseDuration(k.String("PROMO_CACHE_TTL"), "1m"),
		AnalyticsCacheTTL:    parseDuration(k.String("ANALYTICS_CACHE_TTL"), "10m"),
		AnalyticsDefaultDays: parseInt(k.String("ANALYTICS_DEFAULT_RANGE_DAYS"), 30),

		CartTTL:        parseDuration(k.String("CART_TTL"), "168h"),
		IdempotencyTTL: parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),

		RateLimitWindow: parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:    parseInt(k.String("RATE_LIMIT_MAX"), 300),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.TaxRateBps < 0 || cfg.TaxRateBps > 10000 {
		return nil, fmt.Errorf("PRICING_TAX_RATE_BPS out of range: %d", cfg.TaxRateBps)
	}
	if cfg.ShippingFee < 0 {
		return nil, fmt.Errorf("PRICING_SHIPPING_FEE must not be negative: %d", cfg.ShippingFee)
	}
	if cfg.ReturnWindowDays < 0 {
		return nil, fmt.Errorf("RETURN_WINDOW_DAYS must not be negative: %d", cfg.ReturnWindowDays)
	}

	return cfg, nil
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

// MustLoad behaves like Load but panics on error. Useful for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
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
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return v
	}
	return fallback
}

func parseInt64(value string, fallback int64) int64 {
	if v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
		return v
	}
	return fallback
}
