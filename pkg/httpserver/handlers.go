package httpserver

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/venuehub/pkg/types"
)

// Credential headers. Credentials never travel in URLs or bodies.
const (
	HeaderAPIKey     = "X-API-Key"
	HeaderAPISecret  = "X-API-Secret"
	HeaderPassphrase = "X-API-Passphrase"
	HeaderSandbox    = "X-Sandbox"

	maxBodyBytes = 1 << 20
)

// Exchanges lists venues and describes them.
type Exchanges interface {
	ListExchanges() []string
	ListSummaries(ctx context.Context) []types.ExchangeSummary
	GetExchangeInfo(ctx context.Context, venueID string) (*types.ExchangeInfo, error)
}

// MarketData serves public market data.
type MarketData interface {
	GetMarkets(ctx context.Context, venueID string) ([]types.Market, error)
	GetCurrencies(ctx context.Context, venueID string) ([]types.Currency, error)
	GetTicker(ctx context.Context, venueID, symbol string) (*types.Ticker, error)
	GetAllTickers(ctx context.Context, venueID string) (map[string]*types.Ticker, error)
	GetOrderBook(ctx context.Context, venueID, symbol string, limit int) (*types.OrderBook, error)
	GetTrades(ctx context.Context, venueID, symbol string, limit int) ([]types.Trade, error)
	GetOHLCV(ctx context.Context, venueID, symbol, timeframe string, limit int) ([]types.Candle, error)
}

// Rates ranks the top assets of a venue.
type Rates interface {
	TopRates(ctx context.Context, venueID string, quotes []string, limit int) (*types.RatesSnapshot, error)
}

// Trading serves authenticated account and order operations.
type Trading interface {
	GetBalance(ctx context.Context, venueID string, creds types.Credentials) (*types.Balance, error)
	CreateOrder(ctx context.Context, venueID string, creds types.Credentials, req types.OrderRequest) (*types.Order, error)
	CancelOrder(ctx context.Context, venueID string, creds types.Credentials, orderID, symbol string) (*types.Order, error)
	GetOrder(ctx context.Context, venueID string, creds types.Credentials, orderID, symbol string) (*types.Order, error)
	GetOrderStatus(ctx context.Context, venueID string, creds types.Credentials, orderID, symbol string) (*types.OrderStatus, error)
	GetOrders(ctx context.Context, venueID string, creds types.Credentials, symbol string, limit int) ([]types.Order, error)
	GetOpenOrders(ctx context.Context, venueID string, creds types.Credentials, symbol string) ([]types.Order, error)
	GetMyTrades(ctx context.Context, venueID string, creds types.Credentials, symbol string, limit int) ([]types.MyTrade, error)
}

// Portfolio serves valuation and activity summaries.
type Portfolio interface {
	GetPortfolio(ctx context.Context, venueID string, creds types.Credentials) (*types.Portfolio, error)
	GetPositions(ctx context.Context, venueID string, creds types.Credentials) (*types.Positions, error)
	GetTradingHistory(ctx context.Context, venueID string, creds types.Credentials, symbol string) (*types.TradingHistory, error)
	GetProfitLoss(ctx context.Context, venueID string, creds types.Credentials, symbol string) (*types.ProfitLoss, error)
}

type handlers struct {
	exchanges  Exchanges
	marketData MarketData
	rates      Rates
	trading    Trading
	portfolio  Portfolio
	logger     *zap.Logger
}

func requestFields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("venue", chi.URLParam(r, "venue")),
		zap.Error(err),
	}
}

// credentials reads the credential headers.
func credentials(r *http.Request) types.Credentials {
	sandbox, _ := strconv.ParseBool(r.Header.Get(HeaderSandbox))
	return types.Credentials{
		APIKey:     strings.TrimSpace(r.Header.Get(HeaderAPIKey)),
		Secret:     strings.TrimSpace(r.Header.Get(HeaderAPISecret)),
		Passphrase: strings.TrimSpace(r.Header.Get(HeaderPassphrase)),
		Sandbox:    sandbox,
	}
}

// pathSymbol reads the trailing symbol segment. BTC/USDT, BTC%2FUSDT and
// BTC-USDT all name the same market.
func pathSymbol(r *http.Request) string {
	raw := chi.URLParam(r, "*")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	if !strings.Contains(raw, "/") {
		raw = strings.Replace(raw, "-", "/", 1)
	}
	return raw
}

// defaultTopRatesLimit applies when a top-rates request carries no limit.
const defaultTopRatesLimit = 10

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	return queryIntOr(r, name, 0)
}

// queryIntOr parses an optional integer query parameter, returning def when it is absent.
func queryIntOr(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.InvalidArgument(chi.URLParam(r, "venue"), "", "%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

func queryList(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// reply writes data or the error.
func (h *handlers) reply(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, r, data)
}

func (h *handlers) listExchanges(w http.ResponseWriter, r *http.Request) {
	if detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed")); detailed {
		writeData(w, r, h.exchanges.ListSummaries(r.Context()))
		return
	}
	writeData(w, r, h.exchanges.ListExchanges())
}

func (h *handlers) exchangeInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.exchanges.GetExchangeInfo(r.Context(), chi.URLParam(r, "venue"))
	h.reply(w, r, info, err)
}

func (h *handlers) markets(w http.ResponseWriter, r *http.Request) {
	markets, err := h.marketData.GetMarkets(r.Context(), chi.URLParam(r, "venue"))
	h.reply(w, r, markets, err)
}

func (h *handlers) currencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.marketData.GetCurrencies(r.Context(), chi.URLParam(r, "venue"))
	h.reply(w, r, currencies, err)
}

func (h *handlers) ticker(w http.ResponseWriter, r *http.Request) {
	ticker, err := h.marketData.GetTicker(r.Context(), chi.URLParam(r, "venue"), pathSymbol(r))
	h.reply(w, r, ticker, err)
}

func (h *handlers) tickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.marketData.GetAllTickers(r.Context(), chi.URLParam(r, "venue"))
	h.reply(w, r, tickers, err)
}

func (h *handlers) orderBook(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	book, err := h.marketData.GetOrderBook(r.Context(), chi.URLParam(r, "venue"), pathSymbol(r), limit)
	h.reply(w, r, book, err)
}

func (h *handlers) trades(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	trades, err := h.marketData.GetTrades(r.Context(), chi.URLParam(r, "venue"), pathSymbol(r), limit)
	h.reply(w, r, trades, err)
}

func (h *handlers) ohlcv(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = "1h"
	}
	candles, err := h.marketData.GetOHLCV(r.Context(), chi.URLParam(r, "venue"), pathSymbol(r), timeframe, limit)
	h.reply(w, r, candles, err)
}

func (h *handlers) topRates(w http.ResponseWriter, r *http.Request) {
	limit, err := queryIntOr(r, "limit", defaultTopRatesLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	snapshot, err := h.rates.TopRates(r.Context(), chi.URLParam(r, "venue"), queryList(r, "quotes"), limit)
	h.reply(w, r, snapshot, err)
}

func (h *handlers) balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.trading.GetBalance(r.Context(), chi.URLParam(r, "venue"), credentials(r))
	h.reply(w, r, balance, err)
}

func (h *handlers) createOrder(w http.ResponseWriter, r *http.Request) {
	venue := chi.URLParam(r, "venue")

	var req types.OrderRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil {
		h.writeError(w, r, types.InvalidArgument(venue, "createOrder", "malformed order body: %v", err))
		return
	}

	order, err := h.trading.CreateOrder(r.Context(), venue, credentials(r), req)
	h.reply(w, r, order, err)
}

func (h *handlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.trading.CancelOrder(r.Context(), chi.URLParam(r, "venue"), credentials(r),
		chi.URLParam(r, "id"), r.URL.Query().Get("symbol"))
	h.reply(w, r, order, err)
}

func (h *handlers) order(w http.ResponseWriter, r *http.Request) {
	order, err := h.trading.GetOrder(r.Context(), chi.URLParam(r, "venue"), credentials(r),
		chi.URLParam(r, "id"), r.URL.Query().Get("symbol"))
	h.reply(w, r, order, err)
}

func (h *handlers) orderStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.trading.GetOrderStatus(r.Context(), chi.URLParam(r, "venue"), credentials(r),
		chi.URLParam(r, "id"), r.URL.Query().Get("symbol"))
	h.reply(w, r, status, err)
}

func (h *handlers) orders(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	orders, err := h.trading.GetOrders(r.Context(), chi.URLParam(r, "venue"), credentials(r),
		r.URL.Query().Get("symbol"), limit)
	h.reply(w, r, orders, err)
}

func (h *handlers) openOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.trading.GetOpenOrders(r.Context(), chi.URLParam(r, "venue"), credentials(r),
		r.URL.Query().Get("symbol"))
	h.reply(w, r, orders, err)
}

func (h *handlers) myTrades(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	trades, err := h.trading.GetMyTrades(r.Context(), chi.URLParam(r, "venue"), credentials(r),
		r.URL.Query().Get("symbol"), limit)
	h.reply(w, r, trades, err)
}

func (h *handlers) portfolioView(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolio.GetPortfolio(r.Context(), chi.URLParam(r, "venue"), credentials(r))
	h.reply(w, r, portfolio, err)
}

func (h *handlers) positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.portfolio.GetPositions(r.Context(), chi.URLParam(r, "venue"), credentials(r))
	h.reply(w, r, positions, err)
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	history, err := h.portfolio.GetTradingHistory(r.Context(), chi.URLParam(r, "venue"), credentials(r),
		r.URL.Query().Get("symbol"))
	h.reply(w, r, history, err)
}

func (h *handlers) profitLoss(w http.ResponseWriter, r *http.Request) {
	pnl, err := h.portfolio.GetProfitLoss(r.Context(), chi.URLParam(r, "venue"), credentials(r),
		r.URL.Query().Get("symbol"))
	h.reply(w, r, pnl, err)
}
