// Package rates ranks a venue's major assets by traded volume in a reference currency.
package rates

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/venuehub/internal/gateway"
	"github.com/mselser95/venuehub/pkg/cache"
	"github.com/mselser95/venuehub/pkg/types"
)

// Limits applied to the requested result size.
const (
	MinLimit     = 1
	MaxLimit     = 20
	DefaultLimit = 10
)

const defaultTTL = 30 * time.Second

// DefaultAssets are the well-known assets, ordered by approximate market-cap rank.
var DefaultAssets = []string{
	"BTC", "ETH", "ADA", "SOL", "XRP", "DOT", "DOGE", "AVAX",
	"MATIC", "LTC", "LINK", "UNI", "ATOM", "FTT", "NEAR",
}

// DefaultQuotes are the reference currencies, most preferred first.
var DefaultQuotes = []string{"USD", "USDT", "BUSD"}

// DefaultFallbackQuote is scanned when no priority pair is listed.
const DefaultFallbackQuote = "USDT"

// Acquirer resolves venue handles.
type Acquirer interface {
	Acquire(ctx context.Context, venueID string, creds types.Credentials) (gateway.Gateway, error)
}

// Config holds aggregator configuration.
type Config struct {
	Pool          Acquirer
	Store         *cache.Store
	TTL           time.Duration // result lifetime (default 30s)
	Assets        []string      // priority order (default DefaultAssets)
	Quotes        []string      // default reference currencies (default DefaultQuotes)
	FallbackQuote string        // default DefaultFallbackQuote
	Logger        *zap.Logger
}

// Aggregator answers top-N rate queries.
type Aggregator struct {
	pool          Acquirer
	store         *cache.Store
	ttl           time.Duration
	assets        []string
	quotes        []string
	fallbackQuote string
	logger        *zap.Logger
	now           func() time.Time
}

// New creates an aggregator.
func New(cfg Config) *Aggregator {
	a := &Aggregator{
		pool:          cfg.Pool,
		store:         cfg.Store,
		ttl:           cfg.TTL,
		assets:        normalizeCodes(cfg.Assets),
		quotes:        normalizeCodes(cfg.Quotes),
		fallbackQuote: strings.ToUpper(strings.TrimSpace(cfg.FallbackQuote)),
		logger:        cfg.Logger,
		now:           time.Now,
	}
	if a.ttl <= 0 {
		a.ttl = defaultTTL
	}
	if len(a.assets) == 0 {
		a.assets = DefaultAssets
	}
	if len(a.quotes) == 0 {
		a.quotes = DefaultQuotes
	}
	if a.fallbackQuote == "" {
		a.fallbackQuote = DefaultFallbackQuote
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.store == nil {
		a.store = cache.NewStore(cache.StoreConfig{Logger: a.logger})
	}
	return a
}

// ClampLimit bounds limit to [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	switch {
	case limit < MinLimit:
		return MinLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// TopRates returns up to limit assets listed on venueID, one entry per base
// asset, ordered by reference-currency volume descending. quotes overrides the
// configured reference currencies when non-empty; its order is the preference
// order between pairs of the same asset.
func (a *Aggregator) TopRates(ctx context.Context, venueID string, quotes []string, limit int) (*types.RatesSnapshot, error) {
	start := time.Now()
	defer func() {
		AggregationDuration.Observe(time.Since(start).Seconds())
	}()

	limit = ClampLimit(limit)
	quotes = normalizeCodes(quotes)
	if len(quotes) == 0 {
		quotes = a.quotes
	}

	g, err := a.pool.Acquire(ctx, venueID, types.Credentials{})
	if err != nil {
		AggregationsTotal.WithLabelValues("error").Inc()
		return nil, unavailable(venueID, err)
	}
	err = gateway.Require(g, gateway.OpFetchTickers)
	if err != nil {
		AggregationsTotal.WithLabelValues("unsupported").Inc()
		return nil, err
	}

	key := cache.Key("rates", g.ID(), strings.Join(quotes, ","), limit)
	if cached, ok := cache.Fetch[*types.RatesSnapshot](ctx, a.store, key); ok {
		AggregationsTotal.WithLabelValues("cached").Inc()
		return cached, nil
	}

	candidates := a.candidates(g.Markets(), quotes, limit)

	var tickers map[string]*types.Ticker
	if len(candidates) > 0 {
		tickers, err = g.FetchTickers(ctx, candidates)
		if err != nil {
			AggregationsTotal.WithLabelValues("error").Inc()
			return nil, unavailable(g.ID(), err)
		}
	}

	rates := rank(candidates, tickers, g.Markets(), limit)

	snapshot := &types.RatesSnapshot{
		Exchange:   g.ID(),
		Timestamp:  a.now().UTC(),
		TotalPairs: len(rates),
		Rates:      rates,
	}
	cache.Put(ctx, a.store, key, snapshot, a.ttl)
	AggregationsTotal.WithLabelValues("computed").Inc()

	a.logger.Debug("rates-aggregated",
		zap.String("venue", g.ID()),
		zap.Int("candidates", len(candidates)),
		zap.Int("rates", len(rates)),
		zap.Int("limit", limit))

	return snapshot, nil
}

// candidates intersects the priority list with the tradable catalog. When
// nothing intersects, it falls back to fallback-quote pairs of priority assets,
// capped at limit.
func (a *Aggregator) candidates(markets map[string]types.Market, quotes []string, limit int) []string {
	tradable := func(symbol string) bool {
		m, ok := markets[symbol]
		return ok && m.Active
	}

	var out []string
	for _, asset := range a.assets {
		for _, quote := range quotes {
			symbol := asset + "/" + quote
			if tradable(symbol) {
				out = append(out, symbol)
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, asset := range a.assets {
		symbol := asset + "/" + a.fallbackQuote
		if tradable(symbol) {
			out = append(out, symbol)
			if len(out) == limit {
				break
			}
		}
	}
	if len(out) > 0 {
		FallbacksTotal.Inc()
	}
	return out
}

// rank keeps the first quoted symbol per base asset in candidate order, sorts
// by reference volume descending (stable) and truncates to limit.
func rank(candidates []string, tickers map[string]*types.Ticker, markets map[string]types.Market, limit int) []types.AggregatedRate {
	seen := make(map[string]struct{}, len(candidates))
	rates := make([]types.AggregatedRate, 0, len(candidates))

	for _, symbol := range candidates {
		t, ok := tickers[symbol]
		if !ok || t == nil {
			continue
		}

		base := t.Base
		if base == "" {
			base = markets[symbol].Base
		}
		if base == "" {
			base, _, _ = strings.Cut(symbol, "/")
		}
		if _, dup := seen[base]; dup {
			continue
		}
		seen[base] = struct{}{}

		rates = append(rates, types.AggregatedRate{
			Asset:            base,
			Symbol:           symbol,
			Price:            t.Last,
			Bid:              t.Bid,
			Ask:              t.Ask,
			Change24h:        t.Change,
			PercentChange24h: t.Percentage,
			VolumeBase:       t.BaseVolume,
			VolumeReference:  t.QuoteVolume,
			High:             t.High,
			Low:              t.Low,
			Timestamp:        t.Timestamp,
		})
	}

	sort.SliceStable(rates, func(i, j int) bool {
		return volume(rates[i]) > volume(rates[j])
	})

	if len(rates) > limit {
		rates = rates[:limit]
	}
	return rates
}

// volume treats a missing reference volume as zero.
func volume(r types.AggregatedRate) float64 {
	if r.VolumeReference == nil {
		return 0
	}
	return *r.VolumeReference
}

func unavailable(venueID string, err error) error {
	return types.NewError(types.KindVenueUnavailable, venueID, gateway.OpFetchTickers,
		"failed to fetch rates: "+err.Error(), err)
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
