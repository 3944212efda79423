package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mselser95/venuehub/pkg/healthprobe"
	"github.com/mselser95/venuehub/pkg/types"
)

// Server provides the venue API plus metrics and health endpoints.
type Server struct {
	server        *http.Server
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
}

// Config holds server configuration. Nil services leave their routes unmounted.
type Config struct {
	Port           string
	RequestTimeout time.Duration // default 30s
	Logger         *zap.Logger
	HealthChecker  *healthprobe.HealthChecker

	Exchanges  Exchanges
	MarketData MarketData
	Rates      Rates
	Trading    Trading
	Portfolio  Portfolio
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	return &Server{
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      45 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
	}
}

// NewRouter builds the route tree. It is exported so tests and embedders can
// serve it without binding a port.
func NewRouter(cfg *Config) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(requestMetrics)

	// Routes
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	if cfg.HealthChecker != nil {
		r.Get("/health", cfg.HealthChecker.Health())
		r.Get("/ready", cfg.HealthChecker.Ready())
	}

	h := &handlers{
		exchanges:  cfg.Exchanges,
		marketData: cfg.MarketData,
		rates:      cfg.Rates,
		trading:    cfg.Trading,
		portfolio:  cfg.Portfolio,
		logger:     logger,
	}

	r.Route("/api/v1/exchanges", func(r chi.Router) {
		if h.exchanges != nil {
			r.Get("/", h.listExchanges)
		}

		r.Route("/{venue}", func(r chi.Router) {
			if h.exchanges != nil {
				r.Get("/", h.exchangeInfo)
			}
			if h.marketData != nil {
				r.Get("/markets", h.markets)
				r.Get("/currencies", h.currencies)
				r.Get("/tickers", h.tickers)
				r.Get("/ticker/*", h.ticker)
				r.Get("/orderbook/*", h.orderBook)
				r.Get("/trades/*", h.trades)
				r.Get("/ohlcv/*", h.ohlcv)
			}
			if h.rates != nil {
				r.Get("/top-rates", h.topRates)
			}
			if h.trading != nil {
				r.Get("/balance", h.balance)
				r.Post("/orders", h.createOrder)
				r.Get("/orders", h.orders)
				r.Get("/orders/open", h.openOrders)
				r.Get("/orders/{id}", h.order)
				r.Get("/orders/{id}/status", h.orderStatus)
				r.Delete("/orders/{id}", h.cancelOrder)
				r.Get("/my-trades", h.myTrades)
			}
			if h.portfolio != nil {
				r.Get("/portfolio", h.portfolioView)
				r.Get("/positions", h.positions)
				r.Get("/history", h.history)
				r.Get("/pnl", h.profitLoss)
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, r, http.StatusNotFound, "route not found", types.KindNotFound)
	})

	return r
}

// Start starts the HTTP server.
// This is a blocking call that returns when the server stops or encounters an error.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}
