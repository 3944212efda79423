// Package binance is the REST driver for Binance-protocol venues (binance, binanceus).
package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/venuehub/internal/gateway"
	"github.com/mselser95/venuehub/pkg/types"
)

// Config describes one Binance-protocol venue deployment.
type Config struct {
	ID         string
	BaseURL    string
	TestnetURL string // used when credentials request the sandbox; empty means unavailable
	Timeout    time.Duration
	RecvWindow int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Gateway is a loaded handle to a Binance-protocol venue.
type Gateway struct {
	id            string
	client        *client
	authenticated bool
	markets       map[string]types.Market // unified symbol -> market
	byID          map[string]types.Market // venue symbol -> market
}

var _ gateway.Gateway = (*Gateway)(nil)

// allCapabilities is what the Binance spot API supports.
var allCapabilities = gateway.Capabilities{
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

// New builds a handle and loads the venue's instrument catalog.
func New(ctx context.Context, cfg Config, creds types.Credentials) (*Gateway, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := cfg.BaseURL
	if creds.Sandbox {
		if cfg.TestnetURL == "" {
			return nil, fmt.Errorf("%w: %s has no sandbox environment", gateway.ErrRejected, cfg.ID)
		}
		baseURL = cfg.TestnetURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := defaultTimeout
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	recvWindow := cfg.RecvWindow
	if recvWindow <= 0 {
		recvWindow = defaultRecvWindow
	}

	g := &Gateway{
		id: cfg.ID,
		client: &client{
			venue:      cfg.ID,
			baseURL:    strings.TrimRight(baseURL, "/"),
			apiKey:     creds.APIKey,
			secret:     creds.Secret,
			recvWindow: recvWindow,
			httpClient: httpClient,
			logger:     logger,
		},
		authenticated: creds.HasKeys(),
	}

	err := g.loadMarkets(ctx)
	if err != nil {
		CatalogLoadsTotal.WithLabelValues(cfg.ID, "error").Inc()
		return nil, fmt.Errorf("load markets: %w", err)
	}
	CatalogLoadsTotal.WithLabelValues(cfg.ID, "ok").Inc()

	logger.Info("venue-catalog-loaded",
		zap.String("venue", cfg.ID),
		zap.Int("markets", len(g.markets)),
		zap.Bool("authenticated", g.authenticated),
		zap.Bool("sandbox", creds.Sandbox))

	return g, nil
}

func (g *Gateway) loadMarkets(ctx context.Context) error {
	var info exchangeInfoResponse
	err := g.client.get(ctx, "/api/v3/exchangeInfo", nil, false, &info)
	if err != nil {
		return err
	}

	g.markets = make(map[string]types.Market, len(info.Symbols))
	g.byID = make(map[string]types.Market, len(info.Symbols))
	for _, s := range info.Symbols {
		m := s.toMarket()
		g.markets[m.Symbol] = m
		g.byID[m.ID] = m
	}
	return nil
}

// ID implements gateway.Gateway.
func (g *Gateway) ID() string { return g.id }

// Authenticated implements gateway.Gateway.
func (g *Gateway) Authenticated() bool { return g.authenticated }

// Capabilities implements gateway.Gateway.
func (g *Gateway) Capabilities() gateway.Capabilities { return allCapabilities }

// Markets implements gateway.Gateway. The returned map must not be modified.
func (g *Gateway) Markets() map[string]types.Market { return g.markets }

func (g *Gateway) market(symbol string) (types.Market, error) {
	m, ok := g.markets[strings.ToUpper(symbol)]
	if !ok {
		return types.Market{}, fmt.Errorf("%w: symbol %s is not listed on %s", gateway.ErrNotFound, symbol, g.id)
	}
	return m, nil
}

func (g *Gateway) symbolOf(venueSymbol string) string {
	if m, ok := g.byID[venueSymbol]; ok {
		return m.Symbol
	}
	return venueSymbol
}

// FetchTicker implements gateway.Gateway.
func (g *Gateway) FetchTicker(ctx context.Context, symbol string) (*types.Ticker, error) {
	m, err := g.market(symbol)
	if err != nil {
		return nil, err
	}

	var raw ticker24h
	err = g.client.get(ctx, "/api/v3/ticker/24hr", url.Values{"symbol": {m.ID}}, false, &raw)
	if err != nil {
		return nil, err
	}
	return raw.toTicker(m), nil
}

// FetchTickers implements gateway.Gateway. An empty symbol list fetches every ticker.
func (g *Gateway) FetchTickers(ctx context.Context, symbols []string) (map[string]*types.Ticker, error) {
	params := url.Values{}
	if len(symbols) > 0 {
		ids := make([]string, 0, len(symbols))
		for _, s := range symbols {
			if m, err := g.market(s); err == nil {
				ids = append(ids, m.ID)
			}
		}
		if len(ids) == 0 {
			return map[string]*types.Ticker{}, nil
		}
		encoded, err := json.Marshal(ids)
		if err != nil {
			return nil, fmt.Errorf("encode symbols: %w", err)
		}
		params.Set("symbols", string(encoded))
	}

	var raw []ticker24h
	err := g.client.get(ctx, "/api/v3/ticker/24hr", params, false, &raw)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*types.Ticker, len(raw))
	for _, t := range raw {
		m, ok := g.byID[t.Symbol]
		if !ok {
			continue
		}
		out[m.Symbol] = t.toTicker(m)
	}
	return out, nil
}

// FetchOrderBook implements gateway.Gateway.
func (g *Gateway) FetchOrderBook(ctx context.Context, symbol string, limit int) (*types.OrderBook, error) {
	m, err := g.market(symbol)
	if err != nil {
		return nil, err
	}

	params := url.Values{"symbol": {m.ID}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var raw depthResponse
	err = g.client.get(ctx, "/api/v3/depth", params, false, &raw)
	if err != nil {
		return nil, err
	}

	return &types.OrderBook{
		Exchange: g.id,
		Symbol:   m.Symbol,
		Bids:     toLevels(raw.Bids),
		Asks:     toLevels(raw.Asks),
	}, nil
}

// FetchTrades implements gateway.Gateway.
func (g *Gateway) FetchTrades(ctx context.Context, symbol string, limit int) ([]types.Trade, error) {
	m, err := g.market(symbol)
	if err != nil {
		return nil, err
	}

	params := url.Values{"symbol": {m.ID}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var raw []tradeResponse
	err = g.client.get(ctx, "/api/v3/trades", params, false, &raw)
	if err != nil {
		return nil, err
	}

	trades := make([]types.Trade, 0, len(raw))
	for _, t := range raw {
		trades = append(trades, t.toTrade())
	}
	return trades, nil
}

// FetchOHLCV implements gateway.Gateway.
func (g *Gateway) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	m, err := g.market(symbol)
	if err != nil {
		return nil, err
	}

	params := url.Values{"symbol": {m.ID}, "interval": {timeframe}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var raw [][]any
	err = g.client.get(ctx, "/api/v3/klines", params, false, &raw)
	if err != nil {
		return nil, err
	}

	candles := make([]types.Candle, 0, len(raw))
	for _, row := range raw {
		if c, ok := toCandle(row); ok {
			candles = append(candles, c)
		}
	}
	return candles, nil
}

// FetchBalance implements gateway.Gateway.
func (g *Gateway) FetchBalance(ctx context.Context) (*types.Balance, error) {
	var raw accountResponse
	err := g.client.get(ctx, "/api/v3/account", nil, true, &raw)
	if err != nil {
		return nil, err
	}

	balance := &types.Balance{
		Timestamp:  fromMillis(raw.UpdateTime),
		Currencies: make(map[string]types.BalanceEntry, len(raw.Balances)),
	}
	for _, b := range raw.Balances {
		free := parseFloat(b.Free)
		used := parseFloat(b.Locked)
		balance.Currencies[b.Asset] = types.BalanceEntry{Free: free, Used: used, Total: free + used}
	}
	return balance, nil
}

// CreateOrder implements gateway.Gateway.
func (g *Gateway) CreateOrder(ctx context.Context, req types.OrderRequest) (*types.Order, error) {
	m, err := g.market(req.Symbol)
	if err != nil {
		return nil, err
	}

	venueType, ok := orderTypeToVenue[req.Type]
	if !ok {
		return nil, fmt.Errorf("%w: order type %q", gateway.ErrRejected, req.Type)
	}

	params := url.Values{
		"symbol":           {m.ID},
		"side":             {strings.ToUpper(req.Side)},
		"type":             {venueType},
		"quantity":         {formatFloat(req.Amount)},
		"newOrderRespType": {"RESULT"},
	}
	if req.ClientOrderID != "" {
		params.Set("newClientOrderId", req.ClientOrderID)
	}
	if req.Price != nil && req.Type != types.OrderTypeMarket {
		params.Set("price", formatFloat(*req.Price))
	}
	if req.Type == types.OrderTypeLimit || req.Type == types.OrderTypeStopLimit {
		params.Set("timeInForce", "GTC")
	}
	for key, value := range req.Params {
		params.Set(key, fmt.Sprint(value))
	}
	if (req.Type == types.OrderTypeStop || req.Type == types.OrderTypeStopLimit) && params.Get("stopPrice") == "" {
		return nil, fmt.Errorf("%w: %s orders require stopPrice", gateway.ErrRejected, req.Type)
	}

	var raw orderResponse
	err = g.client.do(ctx, http.MethodPost, "/api/v3/order", params, true, &raw)
	if err != nil {
		return nil, err
	}

	order := raw.toOrder(m.Symbol)
	return &order, nil
}

func orderParams(m types.Market, orderID string) url.Values {
	params := url.Values{"symbol": {m.ID}}
	if _, err := strconv.ParseInt(orderID, 10, 64); err == nil {
		params.Set("orderId", orderID)
	} else {
		params.Set("origClientOrderId", orderID)
	}
	return params
}

func (g *Gateway) requireSymbol(symbol, op string) (types.Market, error) {
	if symbol == "" {
		return types.Market{}, fmt.Errorf("%w: %s requires a symbol on %s", gateway.ErrRejected, op, g.id)
	}
	return g.market(symbol)
}

// CancelOrder implements gateway.Gateway.
func (g *Gateway) CancelOrder(ctx context.Context, orderID, symbol string) (*types.Order, error) {
	m, err := g.requireSymbol(symbol, gateway.OpCancelOrder)
	if err != nil {
		return nil, err
	}

	var raw orderResponse
	err = g.client.do(ctx, http.MethodDelete, "/api/v3/order", orderParams(m, orderID), true, &raw)
	if err != nil {
		return nil, err
	}

	order := raw.toOrder(m.Symbol)
	return &order, nil
}

// FetchOrder implements gateway.Gateway.
func (g *Gateway) FetchOrder(ctx context.Context, orderID, symbol string) (*types.Order, error) {
	m, err := g.requireSymbol(symbol, gateway.OpFetchOrder)
	if err != nil {
		return nil, err
	}

	var raw orderResponse
	err = g.client.get(ctx, "/api/v3/order", orderParams(m, orderID), true, &raw)
	if err != nil {
		return nil, err
	}

	order := raw.toOrder(m.Symbol)
	return &order, nil
}

// FetchOrders implements gateway.Gateway.
func (g *Gateway) FetchOrders(ctx context.Context, symbol string, limit int) ([]types.Order, error) {
	m, err := g.requireSymbol(symbol, gateway.OpFetchOrders)
	if err != nil {
		return nil, err
	}

	params := url.Values{"symbol": {m.ID}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var raw []orderResponse
	err = g.client.get(ctx, "/api/v3/allOrders", params, true, &raw)
	if err != nil {
		return nil, err
	}
	return g.toOrders(raw), nil
}

// FetchOpenOrders implements gateway.Gateway. An empty symbol returns open orders on every market.
func (g *Gateway) FetchOpenOrders(ctx context.Context, symbol string) ([]types.Order, error) {
	params := url.Values{}
	if symbol != "" {
		m, err := g.market(symbol)
		if err != nil {
			return nil, err
		}
		params.Set("symbol", m.ID)
	}

	var raw []orderResponse
	err := g.client.get(ctx, "/api/v3/openOrders", params, true, &raw)
	if err != nil {
		return nil, err
	}
	return g.toOrders(raw), nil
}

func (g *Gateway) toOrders(raw []orderResponse) []types.Order {
	orders := make([]types.Order, 0, len(raw))
	for _, o := range raw {
		orders = append(orders, o.toOrder(g.symbolOf(o.Symbol)))
	}
	return orders
}

// FetchMyTrades implements gateway.Gateway.
func (g *Gateway) FetchMyTrades(ctx context.Context, symbol string, limit int) ([]types.MyTrade, error) {
	m, err := g.requireSymbol(symbol, gateway.OpFetchMyTrades)
	if err != nil {
		return nil, err
	}

	params := url.Values{"symbol": {m.ID}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var raw []myTradeResponse
	err = g.client.get(ctx, "/api/v3/myTrades", params, true, &raw)
	if err != nil {
		return nil, err
	}

	trades := make([]types.MyTrade, 0, len(raw))
	for _, t := range raw {
		trades = append(trades, t.toMyTrade(m.Symbol))
	}
	return trades, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
