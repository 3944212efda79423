package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mselser95/venuehub/internal/gateway"
	"github.com/mselser95/venuehub/pkg/types"
)

// MockGateway is an in-memory gateway.Gateway. Every call is counted by
// operation name; Errors injects a failure for an operation.
type MockGateway struct {
	VenueID       string
	Auth          bool
	Caps          gateway.Capabilities
	MarketList    map[string]types.Market
	Tickers       map[string]*types.Ticker
	Books         map[string]*types.OrderBook
	Trades        map[string][]types.Trade
	Candles       []types.Candle
	Balance       *types.Balance
	Orders        map[string]*types.Order
	OpenOrders    []types.Order
	MyTrades      []types.MyTrade
	Errors        map[string]error
	LastOrder     *types.OrderRequest
	LastTickerReq []string
	LastLimit     int

	mu    sync.Mutex
	calls map[string]int
}

var _ gateway.Gateway = (*MockGateway)(nil)

func (m *MockGateway) record(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
	return m.Errors[op]
}

// Calls returns how many times op was invoked.
func (m *MockGateway) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of data and trading calls made.
func (m *MockGateway) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// ID implements gateway.Gateway.
func (m *MockGateway) ID() string { return m.VenueID }

// Authenticated implements gateway.Gateway.
func (m *MockGateway) Authenticated() bool { return m.Auth }

// Capabilities implements gateway.Gateway.
func (m *MockGateway) Capabilities() gateway.Capabilities { return m.Caps }

// Markets implements gateway.Gateway.
func (m *MockGateway) Markets() map[string]types.Market { return m.MarketList }

// FetchTicker implements gateway.Gateway.
func (m *MockGateway) FetchTicker(_ context.Context, symbol string) (*types.Ticker, error) {
	if err := m.record(gateway.OpFetchTicker); err != nil {
		return nil, err
	}
	t, ok := m.Tickers[symbol]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return t, nil
}

// FetchTickers implements gateway.Gateway.
func (m *MockGateway) FetchTickers(_ context.Context, symbols []string) (map[string]*types.Ticker, error) {
	if err := m.record(gateway.OpFetchTickers); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.LastTickerReq = append([]string(nil), symbols...)
	m.mu.Unlock()

	out := make(map[string]*types.Ticker)
	if len(symbols) == 0 {
		for s, t := range m.Tickers {
			out[s] = t
		}
		return out, nil
	}
	for _, s := range symbols {
		if t, ok := m.Tickers[s]; ok {
			out[s] = t
		}
	}
	return out, nil
}

// FetchOrderBook implements gateway.Gateway.
func (m *MockGateway) FetchOrderBook(_ context.Context, symbol string, _ int) (*types.OrderBook, error) {
	if err := m.record(gateway.OpFetchOrderBook); err != nil {
		return nil, err
	}
	b, ok := m.Books[symbol]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

// FetchTrades implements gateway.Gateway.
func (m *MockGateway) FetchTrades(_ context.Context, symbol string, limit int) ([]types.Trade, error) {
	if err := m.record(gateway.OpFetchTrades); err != nil {
		return nil, err
	}
	trades := m.Trades[symbol]
	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}
	return trades, nil
}

// FetchOHLCV implements gateway.Gateway.
func (m *MockGateway) FetchOHLCV(_ context.Context, _, _ string, limit int) ([]types.Candle, error) {
	if err := m.record(gateway.OpFetchOHLCV); err != nil {
		return nil, err
	}
	candles := m.Candles
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

// FetchBalance implements gateway.Gateway.
func (m *MockGateway) FetchBalance(_ context.Context) (*types.Balance, error) {
	if err := m.record(gateway.OpFetchBalance); err != nil {
		return nil, err
	}
	if m.Balance == nil {
		return &types.Balance{Currencies: map[string]types.BalanceEntry{}}, nil
	}
	return m.Balance, nil
}

// CreateOrder implements gateway.Gateway. The order is filled immediately.
func (m *MockGateway) CreateOrder(_ context.Context, req types.OrderRequest) (*types.Order, error) {
	if err := m.record(gateway.OpCreateOrder); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastOrder = &req

	price := 0.0
	if req.Price != nil {
		price = *req.Price
	}
	return &types.Order{
		ID:            "mock-1",
		ClientOrderID: req.ClientOrderID,
		Symbol:        req.Symbol,
		Type:          req.Type,
		Side:          req.Side,
		Status:        "open",
		Price:         price,
		Amount:        req.Amount,
		Remaining:     req.Amount,
		Timestamp:     time.Now().UTC(),
	}, nil
}

// CancelOrder implements gateway.Gateway.
func (m *MockGateway) CancelOrder(_ context.Context, orderID, _ string) (*types.Order, error) {
	if err := m.record(gateway.OpCancelOrder); err != nil {
		return nil, err
	}
	o, ok := m.Orders[orderID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *o
	cp.Status = "canceled"
	return &cp, nil
}

// FetchOrder implements gateway.Gateway.
func (m *MockGateway) FetchOrder(_ context.Context, orderID, _ string) (*types.Order, error) {
	if err := m.record(gateway.OpFetchOrder); err != nil {
		return nil, err
	}
	o, ok := m.Orders[orderID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return o, nil
}

// FetchOrders implements gateway.Gateway.
func (m *MockGateway) FetchOrders(_ context.Context, symbol string, limit int) ([]types.Order, error) {
	if err := m.record(gateway.OpFetchOrders); err != nil {
		return nil, err
	}
	m.LastLimit = limit
	var out []types.Order
	for _, o := range m.Orders {
		if symbol == "" || o.Symbol == symbol {
			out = append(out, *o)
		}
	}
	return out, nil
}

// FetchOpenOrders implements gateway.Gateway.
func (m *MockGateway) FetchOpenOrders(_ context.Context, _ string) ([]types.Order, error) {
	if err := m.record(gateway.OpFetchOpenOrders); err != nil {
		return nil, err
	}
	return m.OpenOrders, nil
}

// FetchMyTrades implements gateway.Gateway.
func (m *MockGateway) FetchMyTrades(_ context.Context, _ string, limit int) ([]types.MyTrade, error) {
	if err := m.record(gateway.OpFetchMyTrades); err != nil {
		return nil, err
	}
	m.LastLimit = limit
	trades := m.MyTrades
	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}
	return trades, nil
}

// MockFactory is a gateway.Factory that counts constructions.
type MockFactory struct {
	// Build produces the handle. When nil a fresh NewMockGateway is returned,
	// authenticated when the credentials carry keys.
	Build func(ctx context.Context, venueID string, creds types.Credentials) (gateway.Gateway, error)
	// Delay simulates the catalog load.
	Delay time.Duration

	builds atomic.Int64
}

// New implements gateway.Factory.
func (f *MockFactory) New(ctx context.Context, venueID string, creds types.Credentials) (gateway.Gateway, error) {
	f.builds.Add(1)

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if f.Build != nil {
		return f.Build(ctx, venueID, creds)
	}
	g := NewMockGateway(venueID)
	g.Auth = creds.HasKeys()
	return g, nil
}

// Builds returns how many constructions were started.
func (f *MockFactory) Builds() int64 {
	return f.builds.Load()
}

// StaticFactory returns a factory that always hands out g.
func StaticFactory(g gateway.Gateway) *MockFactory {
	return &MockFactory{
		Build: func(context.Context, string, types.Credentials) (gateway.Gateway, error) {
			return g, nil
		},
	}
}

// Venues is a fixed set of supported venue identifiers.
type Venues []string

// Supports implements pool.Venues.
func (v Venues) Supports(id string) bool {
	for _, known := range v {
		if known == id {
			return true
		}
	}
	return false
}
