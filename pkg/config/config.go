package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel  string
	LogFormat string // "json" or "console"
	HTTPPort  string

	// Cache
	RedisURL          string // empty runs on the in-process tier only
	RedisOpTimeout    time.Duration
	CacheShards       int
	CacheTTLExchanges time.Duration
	CacheTTLRates     time.Duration
	CacheTTLOrderBook time.Duration
	CacheTTLTrades    time.Duration
	CacheTTLTicker    time.Duration

	// Handle pool
	PoolBuildTimeout    time.Duration
	PoolMaxCredentialed int64
	PoolCredentialedTTL time.Duration

	// Venues
	GatewayTimeout    time.Duration
	BinanceBaseURL    string
	BinanceUSBaseURL  string
	BinanceTestnetURL string

	// Aggregation and valuation
	RatesAssets        []string
	RatesQuotes        []string
	RatesFallbackQuote string
	PortfolioQuote     string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		HTTPPort:  getEnvOrDefault("HTTP_PORT", "3000"),

		// Cache defaults
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisOpTimeout:    getDurationOrDefault("REDIS_OP_TIMEOUT", 250*time.Millisecond),
		CacheShards:       getIntOrDefault("CACHE_SHARDS", 32),
		CacheTTLExchanges: getDurationOrDefault("CACHE_TTL_EXCHANGES", 60*time.Second),
		CacheTTLRates:     getDurationOrDefault("CACHE_TTL_RATES", 30*time.Second),
		CacheTTLOrderBook: getDurationOrDefault("CACHE_TTL_ORDERBOOK", 5*time.Second),
		CacheTTLTrades:    getDurationOrDefault("CACHE_TTL_TRADES", 10*time.Second),
		CacheTTLTicker:    getDurationOrDefault("CACHE_TTL_TICKER", 5*time.Second),

		// Pool defaults
		PoolBuildTimeout:    getDurationOrDefault("POOL_BUILD_TIMEOUT", 30*time.Second),
		PoolMaxCredentialed: int64(getIntOrDefault("POOL_MAX_CREDENTIALED", 1000)),
		PoolCredentialedTTL: getDurationOrDefault("POOL_CREDENTIALED_TTL", time.Hour),

		// Venue defaults
		GatewayTimeout:    getDurationOrDefault("GATEWAY_TIMEOUT", 10*time.Second),
		BinanceBaseURL:    getEnvOrDefault("BINANCE_BASE_URL", "https://api.binance.com"),
		BinanceUSBaseURL:  getEnvOrDefault("BINANCEUS_BASE_URL", "https://api.binance.us"),
		BinanceTestnetURL: getEnvOrDefault("BINANCE_TESTNET_URL", "https://testnet.binance.vision"),

		// Aggregation defaults (empty lists fall back to the aggregator's built-ins)
		RatesAssets:        getListOrDefault("RATES_ASSETS", nil),
		RatesQuotes:        getListOrDefault("RATES_QUOTES", []string{"USD", "USDT", "BUSD"}),
		RatesFallbackQuote: getEnvOrDefault("RATES_FALLBACK_QUOTE", "USDT"),
		PortfolioQuote:     getEnvOrDefault("PORTFOLIO_QUOTE", "USDT"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.LogFormat)
	}

	if c.RedisURL != "" && !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.RedisURL)
	}

	if c.CacheShards <= 0 {
		return fmt.Errorf("CACHE_SHARDS must be positive, got %d", c.CacheShards)
	}

	ttls := map[string]time.Duration{
		"CACHE_TTL_EXCHANGES": c.CacheTTLExchanges,
		"CACHE_TTL_RATES":     c.CacheTTLRates,
		"CACHE_TTL_ORDERBOOK": c.CacheTTLOrderBook,
		"CACHE_TTL_TRADES":    c.CacheTTLTrades,
		"CACHE_TTL_TICKER":    c.CacheTTLTicker,
	}
	for key, ttl := range ttls {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive, got %s", key, ttl)
		}
	}

	if c.PoolBuildTimeout <= 0 {
		return fmt.Errorf("POOL_BUILD_TIMEOUT must be positive, got %s", c.PoolBuildTimeout)
	}

	if c.PoolMaxCredentialed <= 0 {
		return fmt.Errorf("POOL_MAX_CREDENTIALED must be positive, got %d", c.PoolMaxCredentialed)
	}

	if c.BinanceBaseURL == "" {
		return fmt.Errorf("BINANCE_BASE_URL cannot be empty")
	}

	if c.BinanceUSBaseURL == "" {
		return fmt.Errorf("BINANCEUS_BASE_URL cannot be empty")
	}

	if len(c.RatesQuotes) == 0 {
		return fmt.Errorf("RATES_QUOTES cannot be empty")
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getListOrDefault splits a comma-separated value, upper-casing and dropping empty items.
func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.ToUpper(strings.TrimSpace(item))
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}

	return items
}
