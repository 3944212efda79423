// Package exchanges answers venue catalog questions: which venues exist and what they offer.
package exchanges

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/venuehub/internal/gateway"
	"github.com/mselser95/venuehub/pkg/cache"
	"github.com/mselser95/venuehub/pkg/types"
)

const (
	defaultTTL = 60 * time.Second

	// StatusOperational is reported for every venue whose catalog loads.
	StatusOperational = "operational"
)

// Acquirer resolves venue handles.
type Acquirer interface {
	Acquire(ctx context.Context, venueID string, creds types.Credentials) (gateway.Gateway, error)
}

// Config holds service configuration.
type Config struct {
	Registry *gateway.Registry
	Pool     Acquirer
	Store    *cache.Store
	TTL      time.Duration // summary listing lifetime (default 60s)
	Logger   *zap.Logger
}

// Service lists venues and describes them.
type Service struct {
	registry *gateway.Registry
	pool     Acquirer
	store    *cache.Store
	ttl      time.Duration
	logger   *zap.Logger
}

// New creates the service.
func New(cfg Config) *Service {
	s := &Service{
		registry: cfg.Registry,
		pool:     cfg.Pool,
		store:    cfg.Store,
		ttl:      cfg.TTL,
		logger:   cfg.Logger,
	}
	if s.ttl <= 0 {
		s.ttl = defaultTTL
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.store == nil {
		s.store = cache.NewStore(cache.StoreConfig{Logger: s.logger})
	}
	return s
}

// ListExchanges returns the supported venue identifiers in lexical order.
func (s *Service) ListExchanges() []string {
	return s.registry.IDs()
}

// ListSummaries returns one summary per venue ordered by display name.
func (s *Service) ListSummaries(ctx context.Context) []types.ExchangeSummary {
	key := cache.Key("exchanges")
	if cached, ok := cache.Fetch[[]types.ExchangeSummary](ctx, s.store, key); ok {
		return cached
	}

	descs := s.registry.Descriptors()
	summaries := make([]types.ExchangeSummary, 0, len(descs))
	for _, d := range descs {
		summaries = append(summaries, d.Summary())
	}

	cache.Put(ctx, s.store, key, summaries, s.ttl)
	return summaries
}

// GetExchangeInfo describes one venue, including the symbols of its loaded catalog.
func (s *Service) GetExchangeInfo(ctx context.Context, venueID string) (*types.ExchangeInfo, error) {
	d, err := s.registry.Lookup(venueID)
	if err != nil {
		return nil, err
	}

	g, err := s.pool.Acquire(ctx, d.ID, types.Credentials{})
	if err != nil {
		return nil, err
	}

	markets := make([]string, 0, len(g.Markets()))
	for symbol := range g.Markets() {
		markets = append(markets, symbol)
	}
	sort.Strings(markets)

	summary := d.Summary()
	summary.Capabilities = g.Capabilities().Map()

	return &types.ExchangeInfo{
		ExchangeSummary: summary,
		Description:     d.Description,
		Founded:         d.Founded,
		Status:          StatusOperational,
		Timeframes:      d.Timeframes,
		Markets:         markets,
	}, nil
}
