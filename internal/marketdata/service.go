// Package marketdata serves public venue data: catalogs, tickers, depth, trades and candles.
package marketdata

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/venuehub/internal/gateway"
	"github.com/mselser95/venuehub/pkg/cache"
	"github.com/mselser95/venuehub/pkg/types"
)

// Request limits.
const (
	DefaultOrderBookLimit = 20
	DefaultTradesLimit    = 50
	DefaultOHLCVLimit     = 100
	MaxLimit              = 1000
)

// Timeframes accepted by GetOHLCV.
var Timeframes = []string{
	"1m", "5m", "15m", "30m", "1h", "2h", "4h", "6h", "8h", "12h", "1d", "3d", "1w", "1M",
}

// Acquirer resolves venue handles.
type Acquirer interface {
	Acquire(ctx context.Context, venueID string, creds types.Credentials) (gateway.Gateway, error)
}

// TTLs are the cache lifetimes per data kind. Zero disables caching for that kind.
type TTLs struct {
	Ticker    time.Duration
	OrderBook time.Duration
	Trades    time.Duration
}

// DefaultTTLs reflect how quickly each kind goes stale.
var DefaultTTLs = TTLs{
	Ticker:    5 * time.Second,
	OrderBook: 5 * time.Second,
	Trades:    10 * time.Second,
}

// Config holds service configuration.
type Config struct {
	Pool   Acquirer
	Store  *cache.Store
	TTLs   TTLs
	Logger *zap.Logger
}

// Service answers public market data requests through pooled public handles.
type Service struct {
	pool   Acquirer
	store  *cache.Store
	ttls   TTLs
	logger *zap.Logger
}

// New creates the service.
func New(cfg Config) *Service {
	s := &Service{
		pool:   cfg.Pool,
		store:  cfg.Store,
		ttls:   cfg.TTLs,
		logger: cfg.Logger,
	}
	if s.ttls == (TTLs{}) {
		s.ttls = DefaultTTLs
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.store == nil {
		s.store = cache.NewStore(cache.StoreConfig{Logger: s.logger})
	}
	return s
}

// NormalizeSymbol upper-cases a unified symbol and checks its BASE/QUOTE shape.
func NormalizeSymbol(venueID, op, symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	base, quote, ok := strings.Cut(symbol, "/")
	if !ok || base == "" || quote == "" {
		return "", types.InvalidArgument(venueID, op, "symbol %q must have the form BASE/QUOTE", symbol)
	}
	return symbol, nil
}

func limitOrDefault(venueID, op string, limit, def int) (int, error) {
	if limit == 0 {
		return def, nil
	}
	if limit < 1 || limit > MaxLimit {
		return 0, types.InvalidArgument(venueID, op, "limit must be between 1 and %d", MaxLimit)
	}
	return limit, nil
}

// handle acquires a public handle that supports op and lists symbol.
// An empty symbol skips the catalog check.
func (s *Service) handle(ctx context.Context, venueID, op, symbol string) (gateway.Gateway, error) {
	g, err := s.pool.Acquire(ctx, venueID, types.Credentials{})
	if err != nil {
		return nil, err
	}
	err = gateway.Require(g, op)
	if err != nil {
		return nil, err
	}
	if symbol != "" {
		if _, ok := g.Markets()[symbol]; !ok {
			return nil, types.NewError(types.KindNotFound, g.ID(), op,
				"symbol "+symbol+" is not listed", nil)
		}
	}
	return g, nil
}

// GetMarkets returns the venue catalog sorted by symbol.
func (s *Service) GetMarkets(ctx context.Context, venueID string) ([]types.Market, error) {
	g, err := s.pool.Acquire(ctx, venueID, types.Credentials{})
	if err != nil {
		return nil, err
	}

	markets := make([]types.Market, 0, len(g.Markets()))
	for _, m := range g.Markets() {
		markets = append(markets, m)
	}
	sort.Slice(markets, func(i, j int) bool { return markets[i].Symbol < markets[j].Symbol })
	return markets, nil
}

// GetCurrencies derives the venue's asset codes from its catalog.
func (s *Service) GetCurrencies(ctx context.Context, venueID string) ([]types.Currency, error) {
	g, err := s.pool.Acquire(ctx, venueID, types.Credentials{})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, m := range g.Markets() {
		counts[m.Base]++
		counts[m.Quote]++
	}

	currencies := make([]types.Currency, 0, len(counts))
	for code, n := range counts {
		currencies = append(currencies, types.Currency{Code: code, MarketCount: n})
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i].Code < currencies[j].Code })
	return currencies, nil
}

// GetTicker returns the 24h snapshot of one symbol.
func (s *Service) GetTicker(ctx context.Context, venueID, symbol string) (*types.Ticker, error) {
	symbol, err := NormalizeSymbol(venueID, gateway.OpFetchTicker, symbol)
	if err != nil {
		return nil, err
	}
	g, err := s.handle(ctx, venueID, gateway.OpFetchTicker, symbol)
	if err != nil {
		return nil, err
	}

	key := cache.Key("ticker", g.ID(), symbol)
	if cached, ok := cache.Fetch[*types.Ticker](ctx, s.store, key); ok {
		return cached, nil
	}

	ticker, err := g.FetchTicker(ctx, symbol)
	if err != nil {
		return nil, gateway.Translate(err, g.ID(), gateway.OpFetchTicker)
	}

	cache.Put(ctx, s.store, key, ticker, s.ttls.Ticker)
	return ticker, nil
}

// GetAllTickers returns every ticker the venue reports in one batch call.
func (s *Service) GetAllTickers(ctx context.Context, venueID string) (map[string]*types.Ticker, error) {
	g, err := s.handle(ctx, venueID, gateway.OpFetchTickers, "")
	if err != nil {
		return nil, err
	}

	tickers, err := g.FetchTickers(ctx, nil)
	if err != nil {
		return nil, gateway.Translate(err, g.ID(), gateway.OpFetchTickers)
	}
	return tickers, nil
}

// GetOrderBook returns a depth snapshot with each side capped at limit (default 20).
func (s *Service) GetOrderBook(ctx context.Context, venueID, symbol string, limit int) (*types.OrderBook, error) {
	op := gateway.OpFetchOrderBook
	symbol, err := NormalizeSymbol(venueID, op, symbol)
	if err != nil {
		return nil, err
	}
	limit, err = limitOrDefault(venueID, op, limit, DefaultOrderBookLimit)
	if err != nil {
		return nil, err
	}
	g, err := s.handle(ctx, venueID, op, symbol)
	if err != nil {
		return nil, err
	}

	key := cache.Key("orderbook", g.ID(), symbol, limit)
	if cached, ok := cache.Fetch[*types.OrderBook](ctx, s.store, key); ok {
		return cached, nil
	}

	book, err := g.FetchOrderBook(ctx, symbol, limit)
	if err != nil {
		return nil, gateway.Translate(err, g.ID(), op)
	}
	book.Truncate(limit)
	if book.Exchange == "" {
		book.Exchange = g.ID()
	}
	if book.Timestamp.IsZero() {
		book.Timestamp = time.Now().UTC()
	}

	cache.Put(ctx, s.store, key, book, s.ttls.OrderBook)
	return book, nil
}

// GetTrades returns recent public trades (default 50).
func (s *Service) GetTrades(ctx context.Context, venueID, symbol string, limit int) ([]types.Trade, error) {
	op := gateway.OpFetchTrades
	symbol, err := NormalizeSymbol(venueID, op, symbol)
	if err != nil {
		return nil, err
	}
	limit, err = limitOrDefault(venueID, op, limit, DefaultTradesLimit)
	if err != nil {
		return nil, err
	}
	g, err := s.handle(ctx, venueID, op, symbol)
	if err != nil {
		return nil, err
	}

	key := cache.Key("trades", g.ID(), symbol, limit)
	if cached, ok := cache.Fetch[[]types.Trade](ctx, s.store, key); ok {
		return cached, nil
	}

	trades, err := g.FetchTrades(ctx, symbol, limit)
	if err != nil {
		return nil, gateway.Translate(err, g.ID(), op)
	}
	if len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}

	cache.Put(ctx, s.store, key, trades, s.ttls.Trades)
	return trades, nil
}

// GetOHLCV returns candles for timeframe (default limit 100). Candles are not cached.
func (s *Service) GetOHLCV(ctx context.Context, venueID, symbol, timeframe string, limit int) ([]types.Candle, error) {
	op := gateway.OpFetchOHLCV
	symbol, err := NormalizeSymbol(venueID, op, symbol)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(Timeframes, timeframe) {
		return nil, types.InvalidArgument(venueID, op, "timeframe %q is not one of %s", timeframe, strings.Join(Timeframes, ", "))
	}
	limit, err = limitOrDefault(venueID, op, limit, DefaultOHLCVLimit)
	if err != nil {
		return nil, err
	}
	g, err := s.handle(ctx, venueID, op, symbol)
	if err != nil {
		return nil, err
	}

	candles, err := g.FetchOHLCV(ctx, symbol, timeframe, limit)
	if err != nil {
		return nil, gateway.Translate(err, g.ID(), op)
	}
	return candles, nil
}
