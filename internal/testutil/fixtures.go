package testutil

import (
	"strings"
	"time"

	"github.com/mselser95/venuehub/internal/gateway"
	"github.com/mselser95/venuehub/pkg/types"
)

// FullCapabilities has every operation enabled.
var FullCapabilities = gateway.Capabilities{
	FetchTicker:     true,
	FetchTickers:    true,
	FetchOrderBook:  true,
	FetchTrades:     true,
	FetchOHLCV:      true,
	FetchBalance:    true,
	CreateOrder:     true,
	CancelOrder:     true,
	FetchOrder:      true,
	FetchOrders:     true,
	FetchOpenOrders: true,
	FetchMyTrades:   true,
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// CreateTestMarket builds an active market from a unified symbol.
func CreateTestMarket(symbol string) types.Market {
	base, quote, _ := strings.Cut(symbol, "/")
	return types.Market{
		Symbol: symbol,
		ID:     base + quote,
		Base:   base,
		Quote:  quote,
		Active: true,
	}
}

// CreateTestTicker builds a ticker with last price and quote volume set.
func CreateTestTicker(symbol string, last, quoteVolume float64) *types.Ticker {
	base, _, _ := strings.Cut(symbol, "/")
	return &types.Ticker{
		Symbol:      symbol,
		Base:        base,
		Timestamp:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Last:        Float(last),
		Bid:         Float(last * 0.999),
		Ask:         Float(last * 1.001),
		QuoteVolume: Float(quoteVolume),
		BaseVolume:  Float(quoteVolume / last),
	}
}

// NewMockGateway returns a public mock with full capabilities and a small catalog.
func NewMockGateway(venueID string) *MockGateway {
	markets := map[string]types.Market{}
	for _, s := range []string{"BTC/USDT", "ETH/USDT", "SOL/USDT", "BTC/USD", "ETH/BTC"} {
		markets[s] = CreateTestMarket(s)
	}

	return &MockGateway{
		VenueID:    venueID,
		Caps:       FullCapabilities,
		MarketList: markets,
		Tickers: map[string]*types.Ticker{
			"BTC/USDT": CreateTestTicker("BTC/USDT", 50000, 1_000_000),
			"ETH/USDT": CreateTestTicker("ETH/USDT", 3000, 500_000),
		},
		Books: map[string]*types.OrderBook{
			"BTC/USDT": {
				Exchange: venueID,
				Symbol:   "BTC/USDT",
				Bids:     []types.PriceLevel{{Price: 49999, Size: 1}, {Price: 49998, Size: 2}, {Price: 49997, Size: 3}},
				Asks:     []types.PriceLevel{{Price: 50001, Size: 1}, {Price: 50002, Size: 2}, {Price: 50003, Size: 3}},
			},
		},
		Trades: map[string][]types.Trade{
			"BTC/USDT": {
				{ID: "1", Price: 50000, Amount: 0.1, Side: types.SideBuy},
				{ID: "2", Price: 50001, Amount: 0.2, Side: types.SideSell},
			},
		},
		Orders: map[string]*types.Order{},
	}
}
