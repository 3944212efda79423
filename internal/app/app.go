package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/venuehub/internal/exchanges"
	"github.com/mselser95/venuehub/internal/gateway"
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

// App is the composition root. Every collaborator is built in New and passed
// down explicitly.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	opts          *Options
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	registry      *gateway.Registry
	store         *cache.Store
	pool          *pool.Pool
	services      *Services
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Services groups the facades so CLI commands can call them without the HTTP layer.
type Services struct {
	Exchanges  *exchanges.Service
	MarketData *marketdata.Service
	Rates      *rates.Aggregator
	Trading    *trading.Service
	Portfolio  *portfolio.Service
}

// Options holds application options.
type Options struct {
	PurgeInterval time.Duration // in-process cache sweep period (default 1m)
	DisableHTTP   bool          // build services only, for one-shot CLI commands
}

// Services returns the wired facades.
func (a *App) Services() *Services {
	return a.services
}
