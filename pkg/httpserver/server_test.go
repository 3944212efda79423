package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mselser95/venuehub/internal/exchanges"
	"github.com/mselser95/venuehub/internal/gateway"
	"github.com/mselser95/venuehub/internal/marketdata"
	"github.com/mselser95/venuehub/internal/pool"
	"github.com/mselser95/venuehub/internal/portfolio"
	"github.com/mselser95/venuehub/internal/rates"
	"github.com/mselser95/venuehub/internal/testutil"
	"github.com/mselser95/venuehub/internal/trading"
	"github.com/mselser95/venuehub/pkg/cache"
	"github.com/mselser95/venuehub/pkg/healthprobe"
	"github.com/mselser95/venuehub/pkg/types"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Path    string          `json:"path"`
}

func newTestRouter(t *testing.T) (http.Handler, *testutil.MockFactory) {
	t.Helper()

	factory := &testutil.MockFactory{
		Build: func(_ context.Context, venueID string, creds types.Credentials) (gateway.Gateway, error) {
			g := testutil.NewMockGateway(venueID)
			g.Auth = creds.HasKeys()
			g.Balance = &types.Balance{Currencies: map[string]types.BalanceEntry{
				"BTC":  {Free: 1, Total: 1},
				"USDT": {Free: 250, Total: 250},
			}}
			g.Orders["42"] = &types.Order{ID: "42", Symbol: "BTC/USDT", Status: "open", Amount: 1, Remaining: 1}
			return g, nil
		},
	}
	registry := gateway.NewRegistry(gateway.Descriptor{
		ID:           "mockex",
		Name:         "Mock Exchange",
		Countries:    []string{"MT"},
		Capabilities: testutil.FullCapabilities,
		Constructor: func(ctx context.Context, creds types.Credentials) (gateway.Gateway, error) {
			return factory.New(ctx, "mockex", creds)
		},
	})

	logger := zap.NewNop()
	store := cache.NewStore(cache.StoreConfig{Logger: logger})
	p := pool.New(pool.Config{Factory: registry, Venues: registry, Logger: logger})
	md := marketdata.New(marketdata.Config{Pool: p, Store: store, Logger: logger})
	tr := trading.New(trading.Config{Pool: p, Logger: logger})

	hc := healthprobe.New()
	hc.SetReady(true)

	return NewRouter(&Config{
		Logger:        logger,
		HealthChecker: hc,
		Exchanges:     exchanges.New(exchanges.Config{Registry: registry, Pool: p, Store: store, Logger: logger}),
		MarketData:    md,
		Rates:         rates.New(rates.Config{Pool: p, Store: store, Logger: logger}),
		Trading:       tr,
		Portfolio:     portfolio.New(portfolio.Config{Account: tr, Prices: md, Logger: logger}),
	}), factory
}

func withKeys(req *http.Request) *http.Request {
	req.Header.Set(HeaderAPIKey, "key")
	req.Header.Set(HeaderAPISecret, "secret")
	return req
}

func do(t *testing.T, h http.Handler, req *http.Request) (int, envelope) {
	t.Helper()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func get(t *testing.T, h http.Handler, path string) (int, envelope) {
	t.Helper()
	return do(t, h, httptest.NewRequest(http.MethodGet, path, nil))
}

func TestNew(t *testing.T) {
	logger := zap.NewNop()
	healthChecker := healthprobe.New()

	server := New(&Config{Port: "8080", Logger: logger, HealthChecker: healthChecker})
	require.NotNil(t, server)
	require.NotNil(t, server.server)
	assert.Equal(t, ":8080", server.server.Addr)
	assert.Same(t, logger, server.logger)
	assert.Same(t, healthChecker, server.healthChecker)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	h, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestListExchanges(t *testing.T) {
	h, _ := newTestRouter(t)

	code, env := get(t, h, "/api/v1/exchanges")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "/api/v1/exchanges", env.Path)

	var ids []string
	require.NoError(t, json.Unmarshal(env.Data, &ids))
	assert.Equal(t, []string{"mockex"}, ids)

	code, env = get(t, h, "/api/v1/exchanges?detailed=true")
	require.Equal(t, http.StatusOK, code)
	var summaries []types.ExchangeSummary
	require.NoError(t, json.Unmarshal(env.Data, &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "Mock Exchange", summaries[0].Name)
}

func TestExchangeInfo(t *testing.T) {
	h, _ := newTestRouter(t)

	code, env := get(t, h, "/api/v1/exchanges/mockex")
	require.Equal(t, http.StatusOK, code)

	var info types.ExchangeInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "mockex", info.ID)
	assert.Equal(t, "operational", info.Status)
}

func TestUnsupportedVenue(t *testing.T) {
	h, factory := newTestRouter(t)

	code, env := get(t, h, "/api/v1/exchanges/nowhere/ticker/BTC/USDT")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Equal(t, string(types.KindUnsupportedVenue), env.Kind)
	assert.Equal(t, int64(0), factory.Builds())
}

func TestTicker_SymbolForms(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/exchanges/mockex/ticker/BTC/USDT",
		"/api/v1/exchanges/mockex/ticker/BTC%2FUSDT",
		"/api/v1/exchanges/mockex/ticker/btc-usdt",
	} {
		t.Run(path, func(t *testing.T) {
			code, env := get(t, h, path)
			require.Equal(t, http.StatusOK, code, env.Message)

			var ticker types.Ticker
			require.NoError(t, json.Unmarshal(env.Data, &ticker))
			assert.Equal(t, "BTC/USDT", ticker.Symbol)
			require.NotNil(t, ticker.Last)
			assert.InDelta(t, 50000.0, *ticker.Last, 1e-9)
		})
	}
}

func TestTicker_UnknownSymbol(t *testing.T) {
	h, _ := newTestRouter(t)

	code, env := get(t, h, "/api/v1/exchanges/mockex/ticker/NOPE/USDT")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, string(types.KindNotFound), env.Kind)
}

func TestOrderBook_Limit(t *testing.T) {
	h, _ := newTestRouter(t)

	code, env := get(t, h, "/api/v1/exchanges/mockex/orderbook/BTC/USDT?limit=2")
	require.Equal(t, http.StatusOK, code)
	var book types.OrderBook
	require.NoError(t, json.Unmarshal(env.Data, &book))
	assert.Len(t, book.Bids, 2)
	assert.Len(t, book.Asks, 2)

	tests := []struct {
		name  string
		query string
	}{
		{"not-a-number", "limit=abc"},
		{"too-large", "limit=5000"},
		{"negative", "limit=-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := get(t, h, "/api/v1/exchanges/mockex/orderbook/BTC/USDT?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, string(types.KindInvalidArgument), env.Kind)
		})
	}
}

func TestTopRates(t *testing.T) {
	h, _ := newTestRouter(t)

	code, env := get(t, h, "/api/v1/exchanges/mockex/top-rates?limit=5&quotes=USDT")
	require.Equal(t, http.StatusOK, code, env.Message)

	var snapshot types.RatesSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	require.Len(t, snapshot.Rates, 2)
	assert.Equal(t, "BTC", snapshot.Rates[0].Asset)
	assert.Equal(t, "ETH", snapshot.Rates[1].Asset)
}

func TestTopRates_Limits(t *testing.T) {
	assert.Equal(t, rates.DefaultLimit, defaultTopRatesLimit)

	h, _ := newTestRouter(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"omitted uses default", "?quotes=USDT", 2},
		{"zero clamps to one", "?limit=0&quotes=USDT", 1},
		{"one", "?limit=1&quotes=USDT", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := get(t, h, "/api/v1/exchanges/mockex/top-rates"+tt.query)
			require.Equal(t, http.StatusOK, code, env.Message)

			var snapshot types.RatesSnapshot
			require.NoError(t, json.Unmarshal(env.Data, &snapshot))
			assert.Len(t, snapshot.Rates, tt.want)
		})
	}

	code, env := get(t, h, "/api/v1/exchanges/mockex/top-rates?limit=ten")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(types.KindInvalidArgument), env.Kind)
}

func TestBalance_RequiresCredentials(t *testing.T) {
	h, factory := newTestRouter(t)

	code, env := get(t, h, "/api/v1/exchanges/mockex/balance")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, string(types.KindAuthenticationRequired), env.Kind)
	assert.Equal(t, int64(0), factory.Builds())

	code, env = do(t, h, withKeys(httptest.NewRequest(http.MethodGet, "/api/v1/exchanges/mockex/balance", nil)))
	require.Equal(t, http.StatusOK, code, env.Message)
	var balance types.Balance
	require.NoError(t, json.Unmarshal(env.Data, &balance))
	assert.InDelta(t, 250.0, balance.Currencies["USDT"].Total, 1e-9)
}

func TestCreateOrder(t *testing.T) {
	h, _ := newTestRouter(t)

	body := `{"symbol":"BTC/USDT","type":"limit","side":"buy","amount":0.1,"price":45000}`
	req := withKeys(httptest.NewRequest(http.MethodPost, "/api/v1/exchanges/mockex/orders", strings.NewReader(body)))
	code, env := do(t, h, req)
	require.Equal(t, http.StatusOK, code, env.Message)

	var order types.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "mock-1", order.ID)
	assert.NotEmpty(t, order.ClientOrderID)
}

func TestCreateOrder_Malformed(t *testing.T) {
	h, _ := newTestRouter(t)

	req := withKeys(httptest.NewRequest(http.MethodPost, "/api/v1/exchanges/mockex/orders", strings.NewReader("{")))
	code, env := do(t, h, req)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(types.KindInvalidArgument), env.Kind)

	req = withKeys(httptest.NewRequest(http.MethodPost, "/api/v1/exchanges/mockex/orders",
		strings.NewReader(`{"symbol":"BTC/USDT","type":"limit","side":"buy","amount":1}`)))
	code, _ = do(t, h, req)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOrderRoutes(t *testing.T) {
	h, _ := newTestRouter(t)

	code, env := do(t, h, withKeys(httptest.NewRequest(http.MethodGet, "/api/v1/exchanges/mockex/orders/42/status?symbol=BTC/USDT", nil)))
	require.Equal(t, http.StatusOK, code, env.Message)
	var status types.OrderStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "open", status.Status)

	code, env = do(t, h, withKeys(httptest.NewRequest(http.MethodDelete, "/api/v1/exchanges/mockex/orders/42?symbol=BTC/USDT", nil)))
	require.Equal(t, http.StatusOK, code, env.Message)
	var canceled types.Order
	require.NoError(t, json.Unmarshal(env.Data, &canceled))
	assert.Equal(t, "canceled", canceled.Status)

	code, env = do(t, h, withKeys(httptest.NewRequest(http.MethodGet, "/api/v1/exchanges/mockex/orders/404?symbol=BTC/USDT", nil)))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, string(types.KindNotFound), env.Kind)

	code, _ = do(t, h, withKeys(httptest.NewRequest(http.MethodGet, "/api/v1/exchanges/mockex/orders/open", nil)))
	assert.Equal(t, http.StatusOK, code)
}

func TestPortfolio(t *testing.T) {
	h, _ := newTestRouter(t)

	code, env := do(t, h, withKeys(httptest.NewRequest(http.MethodGet, "/api/v1/exchanges/mockex/portfolio", nil)))
	require.Equal(t, http.StatusOK, code, env.Message)

	var p types.Portfolio
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.InDelta(t, 50250.0, p.TotalValue, 1e-6)

	code, env = do(t, h, withKeys(httptest.NewRequest(http.MethodGet, "/api/v1/exchanges/mockex/pnl", nil)))
	require.Equal(t, http.StatusOK, code, env.Message)
	var pnl types.ProfitLoss
	require.NoError(t, json.Unmarshal(env.Data, &pnl))
	assert.Equal(t, "ALL", pnl.Symbol)
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestRouter(t)

	code, env := get(t, h, "/api/v2/nothing")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind types.ErrorKind
		want int
	}{
		{types.KindUnsupportedVenue, http.StatusBadRequest},
		{types.KindUnsupportedOperation, http.StatusBadRequest},
		{types.KindVenueUnavailable, http.StatusServiceUnavailable},
		{types.KindAuthenticationRequired, http.StatusUnauthorized},
		{types.KindNotFound, http.StatusNotFound},
		{types.KindInvalidArgument, http.StatusBadRequest},
		{types.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.kind))
		})
	}
}

func TestCredentialsFromHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderAPIKey, " k ")
	req.Header.Set(HeaderAPISecret, "s")
	req.Header.Set(HeaderPassphrase, "p")
	req.Header.Set(HeaderSandbox, "true")

	creds := credentials(req)
	assert.Equal(t, types.Credentials{APIKey: "k", Secret: "s", Passphrase: "p", Sandbox: true}, creds)
}
