package trading

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mselser95/venuehub/internal/gateway"
	"github.com/mselser95/venuehub/internal/pool"
	"github.com/mselser95/venuehub/internal/testutil"
	"github.com/mselser95/venuehub/pkg/types"
)

var keys = types.Credentials{APIKey: "key", Secret: "secret"}

func newTestService(g *testutil.MockGateway) (*Service, *testutil.MockFactory) {
	factory := testutil.StaticFactory(g)
	p := pool.New(pool.Config{
		Factory: factory,
		Venues:  testutil.Venues{"v"},
		Logger:  zap.NewNop(),
	})
	svc := New(Config{Pool: p, Logger: zap.NewNop()})
	return svc, factory
}

func authedGateway() *testutil.MockGateway {
	g := testutil.NewMockGateway("v")
	g.Auth = true
	return g
}

func TestAuthGating_NoNetworkCall(t *testing.T) {
	g := authedGateway()
	svc, factory := newTestService(g)
	ctx := context.Background()
	none := types.Credentials{}

	price := 100.0
	_, err := svc.CreateOrder(ctx, "v", none, types.OrderRequest{
		Symbol: "BTC/USDT", Type: types.OrderTypeLimit, Side: types.SideBuy, Amount: 1, Price: &price,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrAuthenticationRequired)

	_, err = svc.GetBalance(ctx, "v", none)
	assert.ErrorIs(t, err, types.ErrAuthenticationRequired)
	_, err = svc.CancelOrder(ctx, "v", none, "1", "BTC/USDT")
	assert.ErrorIs(t, err, types.ErrAuthenticationRequired)
	_, err = svc.GetMyTrades(ctx, "v", types.Credentials{APIKey: "only-key"}, "BTC/USDT", 10)
	assert.ErrorIs(t, err, types.ErrAuthenticationRequired)

	assert.Equal(t, int64(0), factory.Builds())
	assert.Equal(t, 0, g.TotalCalls())
}

func TestAuthGating_PublicHandle(t *testing.T) {
	g := testutil.NewMockGateway("v") // handle reports no keys
	svc, _ := newTestService(g)

	_, err := svc.GetBalance(context.Background(), "v", keys)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrAuthenticationRequired)
	assert.Equal(t, 0, g.TotalCalls())
}

func TestCreateOrder(t *testing.T) {
	g := authedGateway()
	svc, _ := newTestService(g)
	svc.orderID = func() string { return "generated-id" }

	price := 45000.0
	order, err := svc.CreateOrder(context.Background(), "v", keys, types.OrderRequest{
		Symbol: "btc/usdt",
		Type:   "LIMIT",
		Side:   "Buy",
		Amount: 0.5,
		Price:  &price,
		Params: map[string]any{"timeInForce": "IOC"},
	})
	require.NoError(t, err)

	assert.Equal(t, "BTC/USDT", order.Symbol)
	assert.Equal(t, "generated-id", order.ClientOrderID)
	require.NotNil(t, g.LastOrder)
	assert.Equal(t, types.OrderTypeLimit, g.LastOrder.Type)
	assert.Equal(t, types.SideBuy, g.LastOrder.Side)
	assert.Equal(t, "IOC", g.LastOrder.Params["timeInForce"])
}

func TestCreateOrder_KeepsClientOrderID(t *testing.T) {
	g := authedGateway()
	svc, _ := newTestService(g)

	order, err := svc.CreateOrder(context.Background(), "v", keys, types.OrderRequest{
		Symbol: "ETH/USDT", Type: types.OrderTypeMarket, Side: types.SideSell, Amount: 1, ClientOrderID: "mine",
	})
	require.NoError(t, err)
	assert.Equal(t, "mine", order.ClientOrderID)
}

func TestCreateOrder_GeneratesUUID(t *testing.T) {
	g := authedGateway()
	svc, _ := newTestService(g)

	order, err := svc.CreateOrder(context.Background(), "v", keys, types.OrderRequest{
		Symbol: "ETH/USDT", Type: types.OrderTypeMarket, Side: types.SideSell, Amount: 1,
	})
	require.NoError(t, err)
	assert.Len(t, order.ClientOrderID, 36)
}

func TestCreateOrder_Validation(t *testing.T) {
	price := 10.0
	zero := 0.0

	tests := []struct {
		name string
		req  types.OrderRequest
		want error
	}{
		{"bad-symbol", types.OrderRequest{Symbol: "BTCUSDT", Type: "market", Side: "buy", Amount: 1}, types.ErrInvalidArgument},
		{"bad-type", types.OrderRequest{Symbol: "BTC/USDT", Type: "iceberg", Side: "buy", Amount: 1}, types.ErrInvalidArgument},
		{"bad-side", types.OrderRequest{Symbol: "BTC/USDT", Type: "market", Side: "hold", Amount: 1}, types.ErrInvalidArgument},
		{"zero-amount", types.OrderRequest{Symbol: "BTC/USDT", Type: "market", Side: "buy"}, types.ErrInvalidArgument},
		{"zero-price", types.OrderRequest{Symbol: "BTC/USDT", Type: "limit", Side: "buy", Amount: 1, Price: &zero}, types.ErrInvalidArgument},
		{"limit-no-price", types.OrderRequest{Symbol: "BTC/USDT", Type: "limit", Side: "buy", Amount: 1}, types.ErrInvalidArgument},
		{"stop-limit-no-price", types.OrderRequest{Symbol: "BTC/USDT", Type: "stop-limit", Side: "sell", Amount: 1}, types.ErrInvalidArgument},
		{"unlisted", types.OrderRequest{Symbol: "DOGE/USDT", Type: "limit", Side: "buy", Amount: 1, Price: &price}, types.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := authedGateway()
			svc, _ := newTestService(g)

			_, err := svc.CreateOrder(context.Background(), "v", keys, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, g.Calls(gateway.OpCreateOrder))
		})
	}
}

func TestCreateOrder_VenueRejects(t *testing.T) {
	g := authedGateway()
	g.Errors = map[string]error{gateway.OpCreateOrder: fmt.Errorf("%w: insufficient balance", gateway.ErrRejected)}
	svc, _ := newTestService(g)

	_, err := svc.CreateOrder(context.Background(), "v", keys, types.OrderRequest{
		Symbol: "BTC/USDT", Type: types.OrderTypeMarket, Side: types.SideBuy, Amount: 1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	assert.ErrorIs(t, err, gateway.ErrRejected)
}

func TestOrderLifecycle(t *testing.T) {
	g := authedGateway()
	g.Orders["42"] = &types.Order{ID: "42", Symbol: "BTC/USDT", Status: "open", Amount: 2, Filled: 0.5, Remaining: 1.5}
	svc, _ := newTestService(g)
	ctx := context.Background()

	status, err := svc.GetOrderStatus(ctx, "v", keys, "42", "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, "open", status.Status)
	assert.InDelta(t, 1.5, status.Remaining, 1e-12)

	canceled, err := svc.CancelOrder(ctx, "v", keys, "42", "btc/usdt")
	require.NoError(t, err)
	assert.Equal(t, "canceled", canceled.Status)

	_, err = svc.GetOrder(ctx, "v", keys, "missing", "BTC/USDT")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = svc.CancelOrder(ctx, "v", keys, " ", "BTC/USDT")
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	orders, err := svc.GetOrders(ctx, "v", keys, "BTC/USDT", 10)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = svc.GetOrders(ctx, "v", keys, "", 5000)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestHistoryLimits(t *testing.T) {
	g := authedGateway()
	svc, _ := newTestService(g)
	ctx := context.Background()

	_, err := svc.GetOrders(ctx, "v", keys, "BTC/USDT", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, g.LastLimit)

	_, err = svc.GetMyTrades(ctx, "v", keys, "BTC/USDT", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, g.LastLimit)

	_, err = svc.GetMyTrades(ctx, "v", keys, "BTC/USDT", 25)
	require.NoError(t, err)
	assert.Equal(t, 25, g.LastLimit)

	_, err = svc.GetOrders(ctx, "v", keys, "", -1)
	require.ErrorIs(t, err, types.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "limit must be between 1 and 1000")
}

func TestUnsupportedOperation(t *testing.T) {
	g := authedGateway()
	g.Caps.FetchOpenOrders = false
	svc, _ := newTestService(g)

	_, err := svc.GetOpenOrders(context.Background(), "v", keys, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnsupportedOperation)
}
