package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mselser95/venuehub/pkg/config"
	"github.com/mselser95/venuehub/pkg/types"
)

const exchangeInfoJSON = `{"symbols":[
 {"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT","filters":[]},
 {"symbol":"ETHUSDT","status":"TRADING","baseAsset":"ETH","quoteAsset":"USDT","filters":[]}
]}`

const tickersJSON = `[
 {"symbol":"BTCUSDT","lastPrice":"50000","bidPrice":"49999","askPrice":"50001","volume":"10","quoteVolume":"500000","closeTime":1700000000000},
 {"symbol":"ETHUSDT","lastPrice":"3000","bidPrice":"2999","askPrice":"3001","volume":"100","quoteVolume":"300000","closeTime":1700000000000}
]`

const ethTickerJSON = `{"symbol":"ETHUSDT","lastPrice":"3000","bidPrice":"2999","askPrice":"3001","volume":"100","quoteVolume":"300000","closeTime":1700000000000}`

func newFakeBinance(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/exchangeInfo", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(exchangeInfoJSON))
	})
	mux.HandleFunc("GET /api/v3/ticker/24hr", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "ETHUSDT" {
			_, _ = w.Write([]byte(ethTickerJSON))
			return
		}
		_, _ = w.Write([]byte(tickersJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(venueURL string) *config.Config {
	return &config.Config{
		LogLevel:            "info",
		LogFormat:           "json",
		HTTPPort:            "0",
		RedisOpTimeout:      250 * time.Millisecond,
		CacheShards:         4,
		CacheTTLExchanges:   time.Minute,
		CacheTTLRates:       30 * time.Second,
		CacheTTLOrderBook:   5 * time.Second,
		CacheTTLTrades:      10 * time.Second,
		CacheTTLTicker:      5 * time.Second,
		PoolBuildTimeout:    5 * time.Second,
		PoolMaxCredentialed: 10,
		PoolCredentialedTTL: time.Hour,
		GatewayTimeout:      2 * time.Second,
		BinanceBaseURL:      venueURL,
		BinanceUSBaseURL:    venueURL,
		RatesQuotes:         []string{"USDT"},
		RatesFallbackQuote:  "USDT",
		PortfolioQuote:      "USDT",
	}
}

func TestNew_WiresServices(t *testing.T) {
	srv := newFakeBinance(t)

	a, err := New(testConfig(srv.URL), zap.NewNop(), &Options{DisableHTTP: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })

	svc := a.Services()
	assert.Equal(t, []string{"binance", "binanceus"}, svc.Exchanges.ListExchanges())

	ctx := context.Background()
	ticker, err := svc.MarketData.GetTicker(ctx, "binanceus", "ETH/USDT")
	require.NoError(t, err)
	require.NotNil(t, ticker.Last)
	assert.InDelta(t, 3000.0, *ticker.Last, 1e-9)

	snapshot, err := svc.Rates.TopRates(ctx, "binance", nil, 5)
	require.NoError(t, err)
	require.Len(t, snapshot.Rates, 2)
	assert.Equal(t, "BTC", snapshot.Rates[0].Asset)

	// One public handle per venue, built once.
	assert.Equal(t, 2, a.pool.Size())

	_, err = svc.Trading.GetBalance(ctx, "binance", types.Credentials{})
	assert.ErrorIs(t, err, types.ErrAuthenticationRequired)
}

func TestNew_WithRedisTier(t *testing.T) {
	srv := newFakeBinance(t)
	mr := miniredis.RunT(t)

	cfg := testConfig(srv.URL)
	cfg.RedisURL = "redis://" + mr.Addr()

	a, err := New(cfg, zap.NewNop(), &Options{DisableHTTP: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })

	assert.True(t, a.store.HasRemote())

	_, err = a.Services().Rates.TopRates(context.Background(), "binance", nil, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, mr.Keys())
}

func TestNew_InvalidRedisURL(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.RedisURL = "redis://host:notaport"

	_, err := New(cfg, zap.NewNop(), nil)
	require.Error(t, err)
}

func TestRun_ReadyAndShutdown(t *testing.T) {
	srv := newFakeBinance(t)

	a, err := New(testConfig(srv.URL), zap.NewNop(), &Options{PurgeInterval: 10 * time.Millisecond})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	assert.Eventually(t, func() bool {
		w := httptest.NewRecorder()
		a.healthChecker.Ready()(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		return w.Code == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	a.cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	w := httptest.NewRecorder()
	a.healthChecker.Ready()(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
