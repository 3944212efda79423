package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/venuehub/internal/exchanges"
	"github.com/mselser95/venuehub/internal/gateway"
	"github.com/mselser95/venuehub/internal/gateway/binance"
	"github.com/mselser95/venuehub/internal/marketdata"
	"github.com/mselser95/venuehub/internal/pool"
	"github.com/mselser95/venuehub/internal/portfolio"
	"github.com/mselser95/venuehub/internal/rates"
	"github.com/mselser95/venuehub/internal/trading"
	"github.com/mselser95/venuehub/pkg/cache"
	"github.com/mselser95/venuehub/pkg/config"
	"github.com/mselser95/venuehub/pkg/healthprobe"
	"github.com/mselser95/venuehub/pkg/httpserver"
)

const defaultPurgeInterval = time.Minute

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.PurgeInterval <= 0 {
		opts.PurgeInterval = defaultPurgeInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	registry := setupRegistry(cfg, logger)

	store, err := setupStore(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache store: %w", err)
	}

	handlePool, err := setupPool(cfg, logger, registry)
	if err != nil {
		cancel()
		_ = store.Close()
		return nil, fmt.Errorf("setup handle pool: %w", err)
	}

	services := setupServices(cfg, logger, registry, store, handlePool)
	healthChecker := setupHealthChecker(registry, store)

	a := &App{
		cfg:           cfg,
		logger:        logger,
		opts:          opts,
		healthChecker: healthChecker,
		registry:      registry,
		store:         store,
		pool:          handlePool,
		services:      services,
		ctx:           ctx,
		cancel:        cancel,
	}
	if !opts.DisableHTTP {
		a.httpServer = setupHTTPServer(cfg, logger, healthChecker, services)
	}

	return a, nil
}

func setupRegistry(cfg *config.Config, logger *zap.Logger) *gateway.Registry {
	return gateway.NewRegistry(
		binance.Descriptor(binance.Config{
			BaseURL:    cfg.BinanceBaseURL,
			TestnetURL: cfg.BinanceTestnetURL,
			Timeout:    cfg.GatewayTimeout,
			Logger:     logger,
		}),
		binance.USDescriptor(binance.Config{
			BaseURL: cfg.BinanceUSBaseURL,
			Timeout: cfg.GatewayTimeout,
			Logger:  logger,
		}),
	)
}

func setupStore(cfg *config.Config, logger *zap.Logger) (*cache.Store, error) {
	local := cache.NewMemory(cache.MemoryConfig{Shards: cfg.CacheShards})

	if cfg.RedisURL == "" {
		logger.Info("cache-tier1-disabled", zap.String("reason", "REDIS_URL not set"))
		return cache.NewStore(cache.StoreConfig{Local: local, Logger: logger}), nil
	}

	remote, err := cache.NewRedisTier(&cache.RedisConfig{
		URL:       cfg.RedisURL,
		OpTimeout: cfg.RedisOpTimeout,
		Prefix:    "venuehub:",
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis tier: %w", err)
	}

	return cache.NewStore(cache.StoreConfig{Remote: remote, Local: local, Logger: logger}), nil
}

func setupPool(cfg *config.Config, logger *zap.Logger, registry *gateway.Registry) (*pool.Pool, error) {
	credentialed, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		Name:        "pool",
		NumCounters: cfg.PoolMaxCredentialed * 10, // 10x expected max handles
		MaxCost:     cfg.PoolMaxCredentialed,      // one unit per handle
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create credentialed handle cache: %w", err)
	}

	return pool.New(pool.Config{
		Factory:         registry,
		Venues:          registry,
		BuildTimeout:    cfg.PoolBuildTimeout,
		Credentialed:    credentialed,
		CredentialedTTL: cfg.PoolCredentialedTTL,
		Logger:          logger,
	}), nil
}

func setupServices(
	cfg *config.Config,
	logger *zap.Logger,
	registry *gateway.Registry,
	store *cache.Store,
	handlePool *pool.Pool,
) *Services {
	marketData := marketdata.New(marketdata.Config{
		Pool:  handlePool,
		Store: store,
		TTLs: marketdata.TTLs{
			Ticker:    cfg.CacheTTLTicker,
			OrderBook: cfg.CacheTTLOrderBook,
			Trades:    cfg.CacheTTLTrades,
		},
		Logger: logger,
	})
	tradingSvc := trading.New(trading.Config{Pool: handlePool, Logger: logger})

	return &Services{
		Exchanges: exchanges.New(exchanges.Config{
			Registry: registry,
			Pool:     handlePool,
			Store:    store,
			TTL:      cfg.CacheTTLExchanges,
			Logger:   logger,
		}),
		MarketData: marketData,
		Rates: rates.New(rates.Config{
			Pool:          handlePool,
			Store:         store,
			TTL:           cfg.CacheTTLRates,
			Assets:        cfg.RatesAssets,
			Quotes:        cfg.RatesQuotes,
			FallbackQuote: cfg.RatesFallbackQuote,
			Logger:        logger,
		}),
		Trading: tradingSvc,
		Portfolio: portfolio.New(portfolio.Config{
			Account: tradingSvc,
			Prices:  marketData,
			Quote:   cfg.PortfolioQuote,
			Logger:  logger,
		}),
	}
}

func setupHealthChecker(registry *gateway.Registry, store *cache.Store) *healthprobe.HealthChecker {
	hc := healthprobe.New()

	hc.Register("cache-tier1", false, func() (string, string) {
		switch {
		case !store.HasRemote():
			return healthprobe.StatusUp, "disabled, serving from memory"
		case store.Tier1Healthy():
			return healthprobe.StatusUp, "redis"
		default:
			return healthprobe.StatusDegraded, "redis unreachable, serving from memory"
		}
	})
	hc.Register("venues", true, func() (string, string) {
		n := len(registry.IDs())
		if n == 0 {
			return healthprobe.StatusDown, "no venues registered"
		}
		return healthprobe.StatusUp, strconv.Itoa(n) + " supported"
	})

	return hc
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	services *Services,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Exchanges:     services.Exchanges,
		MarketData:    services.MarketData,
		Rates:         services.Rates,
		Trading:       services.Trading,
		Portfolio:     services.Portfolio,
	})
}
