// Package gateway defines the venue client contract the rest of the service is
// written against, the registry of supported venues, and the mapping from
// venue failures to the domain error taxonomy.
package gateway

import (
	"context"

	"github.com/mselser95/venuehub/pkg/types"
)

// Gateway is a loaded, capability-bearing handle to one venue.
// Handles are immutable after construction and safe for concurrent use.
type Gateway interface {
	// ID returns the registry identifier of the venue.
	ID() string

	// Authenticated reports whether the handle carries an API key and secret.
	Authenticated() bool

	// Capabilities returns the operations this venue supports.
	Capabilities() Capabilities

	// Markets returns the instrument catalog loaded at construction, keyed by unified symbol.
	Markets() map[string]types.Market

	FetchTicker(ctx context.Context, symbol string) (*types.Ticker, error)
	// FetchTickers is the batch quote call. Symbols missing on the venue are omitted from the result.
	FetchTickers(ctx context.Context, symbols []string) (map[string]*types.Ticker, error)
	FetchOrderBook(ctx context.Context, symbol string, limit int) (*types.OrderBook, error)
	FetchTrades(ctx context.Context, symbol string, limit int) ([]types.Trade, error)
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error)

	FetchBalance(ctx context.Context) (*types.Balance, error)
	CreateOrder(ctx context.Context, req types.OrderRequest) (*types.Order, error)
	CancelOrder(ctx context.Context, orderID, symbol string) (*types.Order, error)
	FetchOrder(ctx context.Context, orderID, symbol string) (*types.Order, error)
	FetchOrders(ctx context.Context, symbol string, limit int) ([]types.Order, error)
	FetchOpenOrders(ctx context.Context, symbol string) ([]types.Order, error)
	FetchMyTrades(ctx context.Context, symbol string, limit int) ([]types.MyTrade, error)
}

// Factory builds handles. New performs the venue's catalog load and is expensive.
type Factory interface {
	New(ctx context.Context, venueID string, creds types.Credentials) (Gateway, error)
}

// Capabilities is the set of operations a venue supports.
type Capabilities struct {
	FetchTicker     bool
	FetchTickers    bool
	FetchOrderBook  bool
	FetchTrades     bool
	FetchOHLCV      bool
	FetchBalance    bool
	CreateOrder     bool
	CancelOrder     bool
	FetchOrder      bool
	FetchOrders     bool
	FetchOpenOrders bool
	FetchMyTrades   bool
}

// Operation names, used in capability lookups, errors and logs.
const (
	OpFetchTicker     = "fetchTicker"
	OpFetchTickers    = "fetchTickers"
	OpFetchOrderBook  = "fetchOrderBook"
	OpFetchTrades     = "fetchTrades"
	OpFetchOHLCV      = "fetchOHLCV"
	OpFetchBalance    = "fetchBalance"
	OpCreateOrder     = "createOrder"
	OpCancelOrder     = "cancelOrder"
	OpFetchOrder      = "fetchOrder"
	OpFetchOrders     = "fetchOrders"
	OpFetchOpenOrders = "fetchOpenOrders"
	OpFetchMyTrades   = "fetchMyTrades"
)

// Map returns the flags keyed by operation name.
func (c Capabilities) Map() map[string]bool {
	return map[string]bool{
		OpFetchTicker:     c.FetchTicker,
		OpFetchTickers:    c.FetchTickers,
		OpFetchOrderBook:  c.FetchOrderBook,
		OpFetchTrades:     c.FetchTrades,
		OpFetchOHLCV:      c.FetchOHLCV,
		OpFetchBalance:    c.FetchBalance,
		OpCreateOrder:     c.CreateOrder,
		OpCancelOrder:     c.CancelOrder,
		OpFetchOrder:      c.FetchOrder,
		OpFetchOrders:     c.FetchOrders,
		OpFetchOpenOrders: c.FetchOpenOrders,
		OpFetchMyTrades:   c.FetchMyTrades,
	}
}

// Supports reports whether op is available. Unknown names are unsupported.
func (c Capabilities) Supports(op string) bool {
	return c.Map()[op]
}

// Require returns an UnsupportedOperation error when the handle lacks op.
func Require(g Gateway, op string) error {
	if g.Capabilities().Supports(op) {
		return nil
	}
	return types.NewError(types.KindUnsupportedOperation, g.ID(), op,
		"venue does not support "+op, nil)
}

// RequireAuth returns AuthenticationRequired when the handle carries no keys.
func RequireAuth(g Gateway, op string) error {
	if g.Authenticated() {
		return nil
	}
	return types.NewError(types.KindAuthenticationRequired, g.ID(), op,
		"API key and secret are required", nil)
}
